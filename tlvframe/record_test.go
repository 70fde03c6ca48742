package tlvframe

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/dlcgo/dlcd/codec"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// TestWriteDerivesLength asserts that the length prefix always reflects the
// body that was written, including the multi-byte BigSize forms.
func TestWriteDerivesLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		typ     Type
		bodyLen int
		prefix  string
	}{
		{"empty", 0xf020, 0, "fdf02000"},
		{"one byte", 42772, 0xfc, "fda714fc"},
		{"u16 length", 55332, 0xfd, "fdd824fd00fd"},
		{"u32 type", 0x10000, 1, "fe0001000001"},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			body := bytes.Repeat([]byte{0xab}, test.bodyLen)

			var buf bytes.Buffer
			err := Write(&buf, test.typ, func(w *bytes.Buffer) error {
				return codec.WriteBytes(w, body)
			})
			require.NoError(t, err)

			want := append(mustHex(t, test.prefix), body...)
			require.Equal(t, want, buf.Bytes())

			rec := Record{Type: test.typ, Body: body}
			require.Equal(t, len(want), rec.Size())
		})
	}
}

// TestWritePropagatesError makes sure nothing is written when the body
// encoder fails.
func TestWritePropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	var buf bytes.Buffer
	err := Write(&buf, 1, func(*bytes.Buffer) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Zero(t, buf.Len())
}

// TestDecodeExpected covers the expected type assertion.
func TestDecodeExpected(t *testing.T) {
	t.Parallel()

	// A 0xf020 record with a three byte body.
	raw := mustHex(t, "fdf02003616263")

	r := codec.NewReader(raw)
	_, err := DecodeExpected(r, 42772)

	var mismatch *codec.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.EqualValues(t, 42772, mismatch.Expected)
	require.EqualValues(t, 0xf020, mismatch.Actual)
	require.ErrorIs(t, err, codec.ErrTypeMismatch)

	// A mismatch consumes nothing.
	require.Equal(t, 0, r.Offset())

	rec, err := DecodeExpected(r, 0xf020)
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), rec.Body)
	require.True(t, r.EOF())
}

// TestPeekType asserts that peeking never moves the cursor.
func TestPeekType(t *testing.T) {
	t.Parallel()

	r := codec.NewReader(mustHex(t, "fe0001000000"))

	for i := 0; i < 3; i++ {
		typ, err := PeekType(r)
		require.NoError(t, err)
		require.EqualValues(t, 0x10000, typ)
		require.Equal(t, 0, r.Offset())
	}

	_, err := PeekType(codec.NewReader(mustHex(t, "fe0001")))
	require.ErrorIs(t, err, codec.ErrTruncatedInput)
}

// TestDecodeTruncated asserts that a length larger than the remaining input
// fails instead of returning a short body.
func TestDecodeTruncated(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "fd", "fdf020", "fdf02003", "fdf0200361"} {
		_, err := Decode(codec.NewReader(mustHex(t, s)))
		require.ErrorIs(t, err, codec.ErrTruncatedInput, "input %q", s)
	}
}

// TestReadExpected covers body consumption rules.
func TestReadExpected(t *testing.T) {
	t.Parallel()

	raw := mustHex(t, "fda7100400000007")

	var v uint32
	err := ReadExpected(codec.NewReader(raw), 42768,
		func(r *codec.Reader) error {
			var err error
			v, err = r.ReadUint32()
			return err
		},
	)
	require.NoError(t, err)
	require.EqualValues(t, 7, v)

	// Leaving bytes unread in the body is an error.
	err = ReadExpected(codec.NewReader(raw), 42768,
		func(r *codec.Reader) error {
			_, err := r.ReadUint16()
			return err
		},
	)
	require.ErrorIs(t, err, codec.ErrInvalidValue)

	// Reading past the body is truncation even if the outer buffer has
	// more bytes.
	outer := append(raw, 0xff, 0xff, 0xff, 0xff)
	err = ReadExpected(codec.NewReader(outer), 42768,
		func(r *codec.Reader) error {
			_, err := r.ReadUint64()
			return err
		},
	)
	require.ErrorIs(t, err, codec.ErrTruncatedInput)
}

// TestRecordRoundTrip checks Decode(Encode(r)) == r for arbitrary records.
func TestRecordRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		rec := Record{
			Type: Type(rapid.Uint64().Draw(t, "type")),
			Body: rapid.SliceOfN(rapid.Byte(), 0, 600).Draw(t, "body"),
		}

		var buf bytes.Buffer
		require.NoError(t, rec.Encode(&buf))
		require.Equal(t, rec.Size(), buf.Len())

		r := codec.NewReader(buf.Bytes())
		got, err := Decode(r)
		require.NoError(t, err)
		require.True(t, r.EOF())
		require.Equal(t, rec.Type, got.Type)
		require.Equal(t, rec.Body, got.Body)

		// Dropping the final byte must never yield a record.
		_, err = Decode(codec.NewReader(buf.Bytes()[:buf.Len()-1]))
		require.ErrorIs(t, err, codec.ErrTruncatedInput)
	})
}
