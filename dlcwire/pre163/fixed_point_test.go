package pre163

import (
	"math"
	"testing"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestFixedPointFromF64 checks the conversion of doubles to fixed point,
// including the inputs without an exact fixed point form.
func TestFixedPointFromF64(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    float64
		want  FixedPoint
		fails bool
	}{
		{
			name: "zero",
			in:   0,
			want: FixedPoint{},
		},
		{
			name: "negative zero",
			in:   math.Copysign(0, -1),
			want: FixedPoint{Negative: true},
		},
		{
			name: "one and a half",
			in:   1.5,
			want: FixedPoint{Whole: 1, Frac: 0x8000},
		},
		{
			name: "negative quarter",
			in:   -0.25,
			want: FixedPoint{Negative: true, Frac: 0x4000},
		},
		{
			name: "smallest fraction",
			in:   2 + 1.0/(1<<16),
			want: FixedPoint{Whole: 2, Frac: 1},
		},
		{
			name: "largest fraction",
			in:   -(6 + 65535.0/(1<<16)),
			want: FixedPoint{Negative: true, Whole: 6, Frac: 0xffff},
		},
		{
			name:  "fraction below the grid",
			in:    2 + 1.0/(1<<18),
			fails: true,
		},
		{
			name:  "tenth",
			in:    0.1,
			fails: true,
		},
		{
			name:  "fraction just below a whole",
			in:    6.9999999,
			fails: true,
		},
		{
			name: "largest whole",
			in:   math.Exp2(63),
			want: FixedPoint{Whole: 1 << 63},
		},
		{
			name:  "overflow",
			in:    math.Exp2(64),
			fails: true,
		},
		{
			name:  "nan",
			in:    math.NaN(),
			fails: true,
		},
		{
			name:  "infinity",
			in:    math.Inf(-1),
			fails: true,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fp, err := FixedPointFromF64(codec.F64FromFloat64(tc.in))
			if tc.fails {
				require.ErrorIs(t, err, codec.ErrInvalidValue)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, fp)
		})
	}
}

// TestFixedPointF64 checks the conversion back to doubles and the exact
// decimal value.
func TestFixedPointF64(t *testing.T) {
	t.Parallel()

	fp := FixedPoint{Whole: 3, Frac: 0x4000}
	require.Equal(t, 3.25, fp.F64().Float64())
	require.Equal(t, "3.25", fp.Decimal().String())

	fp = FixedPoint{Negative: true, Frac: 1}
	require.Equal(t, "-0.0000152587890625", fp.Decimal().String())
	require.Equal(t, -1.0/65536, fp.F64().Float64())

	negZero := FixedPoint{Negative: true}.F64()
	require.True(t, math.Signbit(negZero.Float64()))
	require.Zero(t, negZero.Float64())
	require.False(t, math.Signbit(FixedPoint{}.F64().Float64()))
}

// TestFixedPointEncoding checks the wire layout: a sign byte, a BigSize
// whole part and a u16 fraction.
func TestFixedPointEncoding(t *testing.T) {
	t.Parallel()

	fp := FixedPoint{Negative: true, Whole: 1000, Frac: 0x8000}
	const want = "01" + "fd03e8" + "8000"
	require.Equal(t, want, encodeHex(t, fp.encode))

	var decoded FixedPoint
	r := codec.NewReader(mustHex(t, want))
	require.NoError(t, decoded.decode(r))
	require.True(t, r.EOF())
	require.Equal(t, fp, decoded)
}

// TestFixedPointRoundTrip asserts that doubles with a 16-bit binary
// fraction survive a trip through fixed point bit for bit.
func TestFixedPointRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		f := dlcwire.RandF64(t, true, "param")

		fp, err := FixedPointFromF64(f)
		require.NoError(t, err)
		require.Equal(t, f.Bits(), fp.F64().Bits())
	})
}
