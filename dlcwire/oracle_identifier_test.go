package dlcwire

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/dlcgo/dlcd/codec"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestOracleIdentifierVector decodes and re-encodes the identifier vector.
func TestOracleIdentifierVector(t *testing.T) {
	t.Parallel()

	var id OracleIdentifier
	r := codec.NewReader(mustHex(t, oracleIdentifierHex))
	require.NoError(t, id.Decode(r))
	require.True(t, r.EOF())

	require.Equal(t, "atomic", id.OracleName)
	require.Equal(t, oraclePubKeyHex, hex.EncodeToString(id.OraclePubKey[:]))
	require.NoError(t, id.Validate())

	var b bytes.Buffer
	require.NoError(t, id.Encode(&b))
	require.Equal(t, oracleIdentifierHex, hex.EncodeToString(b.Bytes()))

	// The announcement type is not an identifier.
	err := id.Decode(codec.NewReader(mustHex(t, "fdd824")))
	require.ErrorIs(t, err, codec.ErrTypeMismatch)
}

// TestOracleIdentifierValidate covers the rules on the oracle name.
func TestOracleIdentifierValidate(t *testing.T) {
	t.Parallel()

	require.ErrorIs(
		t, (&OracleIdentifier{}).Validate(), codec.ErrInvalidValue,
	)
	require.ErrorIs(
		t, (&OracleIdentifier{OracleName: "\xff"}).Validate(),
		codec.ErrInvalidValue,
	)

	rapid.Check(t, func(t *rapid.T) {
		id := RandOracleIdentifier(t)
		require.NoError(t, id.Validate())

		encoded, err := Serialize(id)
		require.NoError(t, err)

		var decoded OracleIdentifier
		r := codec.NewReader(encoded)
		require.NoError(t, decoded.Decode(r))
		require.True(t, r.EOF())
		require.Equal(t, *id, decoded)
	})
}
