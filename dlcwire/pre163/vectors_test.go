package pre163

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/stretchr/testify/require"
)

const (
	roundingIntervalsHex = "fda724" + "08" + "0001" + "fd1388" + "fd2710"

	negotiationV0Hex = "fdd826" + "00"
	negotiationV1Hex = "fdd828" + "0c" + roundingIntervalsHex
	negotiationV2Hex = "fdd832" + "15" + "02" + negotiationV1Hex +
		negotiationV0Hex

	oraclePubKeyHex = "5d1bcfab252c6dd9edd7aea4c5eeeef138f7ff7346061ea4" +
		"0143a9f5ae80baa9"
	oracleIdentifierHex = "fdf020" + "27" + "06" + "61746f6d6963" +
		oraclePubKeyHex

	witnessSigHex = "304402203812d7d194d44ec68f244cc3fd68507c563ec8c729" +
		"fdfa3f4a79395b98abe84f0220704ab3f3ffd9c50c2488e59f90a90465fc" +
		"cc2d924d67a1e98a133676bf52f37201"
	witnessKeyHex = "02dde41aa1f21671a2e28ad92155d2d66e0b5428de15d18db4" +
		"cbcf216bf00de919"
	fundingSignaturesHex = "fda718" + "70" + "0001" + "0002" + "0047" +
		witnessSigHex + "0021" + witnessKeyHex

	prevTxHex = "02000000000100c2eb0b000000001600149ea3bf2d6eb9c2ffa3" +
		"5e36f41e117403ed7fafe900000000"
	fundingInputHex = "fda714" + "3f" + "000000000000dae8" + "0029" +
		prevTxHex + "00000000" + "ffffffff" + "006b" + "0000"
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// encodeHex runs an encoder into a fresh buffer and returns the hex of the
// result.
func encodeHex(t *testing.T, encode func(*bytes.Buffer) error) string {
	t.Helper()

	var b bytes.Buffer
	require.NoError(t, encode(&b))

	return hex.EncodeToString(b.Bytes())
}

// TestNegotiationFieldsVectors decodes and re-encodes every negotiation
// record generation.
func TestNegotiationFieldsVectors(t *testing.T) {
	t.Parallel()

	interval := dlcwire.RoundingInterval{
		BeginInterval: 5000,
		RoundingMod:   10000,
	}

	tests := []struct {
		name   string
		hex    string
		verify func(*testing.T, *NegotiationFields)
	}{
		{
			name: "v0",
			hex:  negotiationV0Hex,
			verify: func(t *testing.T, n *NegotiationFields) {
				require.NotNil(t, n.V0)
				require.Nil(t, n.V1)
				require.Nil(t, n.V2)
			},
		},
		{
			name: "v1",
			hex:  negotiationV1Hex,
			verify: func(t *testing.T, n *NegotiationFields) {
				require.NotNil(t, n.V1)
				require.Equal(
					t, []dlcwire.RoundingInterval{interval},
					n.V1.RoundingIntervals.Intervals,
				)
			},
		},
		{
			name: "v2",
			hex:  negotiationV2Hex,
			verify: func(t *testing.T, n *NegotiationFields) {
				require.NotNil(t, n.V2)

				nested := n.V2.NegotiationFields
				require.Len(t, nested, 2)
				require.NotNil(t, nested[0].V1)
				require.NotNil(t, nested[1].V0)
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var fields NegotiationFields
			r := codec.NewReader(mustHex(t, tc.hex))
			require.NoError(t, fields.Decode(r))
			require.True(t, r.EOF())

			tc.verify(t, &fields)
			require.Equal(t, tc.hex, encodeHex(t, fields.Encode))
		})
	}
}

// TestNegotiationFieldsUnknownType asserts that a record of another type is
// not taken for negotiation fields.
func TestNegotiationFieldsUnknownType(t *testing.T) {
	t.Parallel()

	var fields NegotiationFields
	err := fields.Decode(codec.NewReader(mustHex(t, roundingIntervalsHex)))
	require.ErrorIs(t, err, codec.ErrUnknownRecord)
}

// TestOracleIdentifierVector decodes and re-encodes the framed oracle
// identifier.
func TestOracleIdentifierVector(t *testing.T) {
	t.Parallel()

	var id OracleIdentifier
	r := codec.NewReader(mustHex(t, oracleIdentifierHex))
	require.NoError(t, id.Decode(r))
	require.True(t, r.EOF())

	require.Equal(t, "atomic", id.OracleName)
	require.Equal(t, oraclePubKeyHex, hex.EncodeToString(id.OraclePubKey[:]))
	require.Equal(t, oracleIdentifierHex, encodeHex(t, id.Encode))

	// The upgraded identifier drops only the length.
	cur := OracleIdentifierFromPre163(&id)
	b, err := dlcwire.Serialize(cur)
	require.NoError(t, err)
	require.Equal(
		t, "fdf020"+"06"+"61746f6d6963"+oraclePubKeyHex,
		hex.EncodeToString(b),
	)
	require.Equal(t, id, *OracleIdentifierToPre163(cur))
}

// TestFundingSignaturesVector decodes and re-encodes the u16 witness list.
func TestFundingSignaturesVector(t *testing.T) {
	t.Parallel()

	var sigs FundingSignatures
	r := codec.NewReader(mustHex(t, fundingSignaturesHex))
	require.NoError(t, sigs.Decode(r))
	require.True(t, r.EOF())

	require.Equal(t, []wire.TxWitness{{
		mustHex(t, witnessSigHex), mustHex(t, witnessKeyHex),
	}}, sigs.Witnesses)
	require.Equal(t, fundingSignaturesHex, encodeHex(t, sigs.Encode))
}

// TestFundingInputVector decodes the framed funding input and checks that
// the previous transaction parses.
func TestFundingInputVector(t *testing.T) {
	t.Parallel()

	var in dlcwire.FundingInput
	r := codec.NewReader(mustHex(t, fundingInputHex))
	require.NoError(t, decodeFundingInput(r, &in))
	require.True(t, r.EOF())

	require.Equal(t, uint64(56040), in.InputSerialID)
	require.Equal(t, uint32(0), in.PrevTxVout)
	require.Equal(t, uint32(0xffffffff), in.Sequence)
	require.Equal(t, uint16(107), in.MaxWitnessLen)
	require.Empty(t, in.RedeemScript)

	out, err := in.PrevOut()
	require.NoError(t, err)
	require.Equal(t, int64(200000000), out.Value)

	require.Equal(t, fundingInputHex, encodeHex(t,
		func(w *bytes.Buffer) error {
			return encodeFundingInput(w, &in)
		},
	))

	// The current schema writes the same input without framing and with
	// a BigSize prefixed transaction.
	cur, err := dlcwire.Serialize(&in)
	require.NoError(t, err)
	require.Equal(
		t, "000000000000dae8"+"29"+prevTxHex+"00000000"+"ffffffff"+
			"006b"+"0000",
		hex.EncodeToString(cur),
	)
}

// TestDecodeMessageTrailingBytes asserts that a message must span its whole
// input.
func TestDecodeMessageTrailingBytes(t *testing.T) {
	t.Parallel()

	cancel := "cbcc" + "c1c79e1e9e2fa2840b2514902ea244f39eb3001a4037a52e" +
		"a43c797d4f841269" + "00"

	msg, err := DecodeMessage(mustHex(t, cancel))
	require.NoError(t, err)
	require.IsType(t, &dlcwire.DlcCancel{}, msg)

	_, err = DecodeMessage(mustHex(t, cancel+"00"))
	require.ErrorIs(t, err, codec.ErrInvalidValue)

	_, err = DecodeMessage(mustHex(t, "cbca"))
	require.ErrorIs(t, err, codec.ErrUnknownRecord)
}
