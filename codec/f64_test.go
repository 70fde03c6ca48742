package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestF64BitExact asserts that the literal set survives encode/decode with
// an identical bit pattern. Comparison is on hex, since NaN != NaN.
func TestF64BitExact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value float64
		hex   string
	}{
		{"zero", 0, "0000000000000000"},
		{"negative zero", math.Copysign(0, -1), "8000000000000000"},
		{"one", 1, "3ff0000000000000"},
		{"negative one", -1, "bff0000000000000"},
		{"nan", math.NaN(), "7ff8000000000001"},
		{"positive infinity", math.Inf(1), "7ff0000000000000"},
		{"negative infinity", math.Inf(-1), "fff0000000000000"},
		{"max safe integer", 9007199254740991, "433fffffffffffff"},
		{"smallest subnormal", 5e-324, "0000000000000001"},
		{"max double", math.MaxFloat64, "7fefffffffffffff"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := F64FromFloat64(test.value)

			var b bytes.Buffer
			require.NoError(t, WriteF64(&b, f))
			require.Equal(t, test.hex, hex.EncodeToString(b.Bytes()))

			got, err := NewReader(b.Bytes()).ReadF64()
			require.NoError(t, err)
			require.Equal(t, test.hex, hex.EncodeToString(got[:]))
		})
	}
}

// TestF64NaNPayload asserts that arbitrary NaN payloads are not normalized.
func TestF64NaNPayload(t *testing.T) {
	t.Parallel()

	raw, err := hex.DecodeString("fff4000000c0ffee")
	require.NoError(t, err)

	f, err := NewReader(raw).ReadF64()
	require.NoError(t, err)
	require.True(t, f.IsNaN())
	require.Equal(t, uint8(1), f.Sign())

	var b bytes.Buffer
	require.NoError(t, WriteF64(&b, f))
	require.Equal(t, raw, b.Bytes())
}

// TestF64Components checks the accessors and predicates.
func TestF64Components(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                           string
		f                              F64
		sign                           uint8
		exp                            uint16
		mantissa                       uint64
		isNaN, isInf, isFinite, isZero bool
	}{
		{
			name: "one", f: F64FromFloat64(1), exp: 0x3ff,
			isFinite: true,
		},
		{
			name: "negative zero", f: F64FromFloat64(math.Copysign(0, -1)),
			sign: 1, isFinite: true, isZero: true,
		},
		{
			name: "subnormal", f: F64FromFloat64(5e-324), mantissa: 1,
			isFinite: true,
		},
		{
			name: "negative infinity", f: F64FromFloat64(math.Inf(-1)),
			sign: 1, exp: 0x7ff, isInf: true,
		},
		{
			name: "quiet nan", f: F64FromBits(0x7ff8000000000000),
			exp: 0x7ff, mantissa: 1 << 51, isNaN: true,
		},
		{
			name: "max double", f: F64FromFloat64(math.MaxFloat64),
			exp: 0x7fe, mantissa: 1<<52 - 1, isFinite: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.sign, test.f.Sign())
			require.Equal(t, test.exp, test.f.Exponent())
			require.Equal(t, test.mantissa, test.f.Mantissa())
			require.Equal(t, test.isNaN, test.f.IsNaN())
			require.Equal(t, test.isInf, test.f.IsInfinite())
			require.Equal(t, test.isFinite, test.f.IsFinite())
			require.Equal(t, test.isZero, test.f.IsZero())
		})
	}
}

// TestF64FromString covers decimal parsing at the edges of the format.
func TestF64FromString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		bits uint64
	}{
		{"0", 0},
		{"-0", 0x8000000000000000},
		{"-0.000", 0x8000000000000000},
		{"1", 0x3ff0000000000000},
		{"0.1", 0x3fb999999999999a},
		{"5e-324", 1},
		{"2.4703282292062328e-324", 1},
		{"1.7976931348623157e308", 0x7fefffffffffffff},
		{"9007199254740993", 0x4340000000000000},
		{"9007199254740993.0000000000000000000001", 0x4340000000000001},
		{
			"0.1000000000000000055511151231257827021181583404541015625",
			0x3fb999999999999a,
		},
		{"-2.5", 0xc004000000000000},
		{"Infinity", 0x7ff0000000000000},
		{"-Infinity", 0xfff0000000000000},
	}
	for _, test := range tests {
		f, err := F64FromString(test.in)
		require.NoError(t, err, test.in)
		require.Equal(t, test.bits, f.Bits(), test.in)
	}

	f, err := F64FromString("NaN")
	require.NoError(t, err)
	require.True(t, f.IsNaN())

	for _, bad := range []string{"", "abc", "1.2.3", "2e400"} {
		_, err := F64FromString(bad)
		require.ErrorIs(t, err, ErrPrecisionOverflow, bad)
	}
}

// TestF64StringRoundTrip asserts that String output parses back to the same
// bits for any non-NaN pattern.
func TestF64StringRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		f := F64FromBits(rapid.Uint64().Draw(t, "bits"))
		// NaN has no text form that carries its payload.
		if f.IsNaN() {
			return
		}

		got, err := F64FromString(f.String())
		require.NoError(t, err)
		require.Equal(t, f, got)
	})
}

// TestF64JSON covers the number/string split of the JSON encoding.
func TestF64JSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value float64
		json  string
	}{
		{1.5, `1.5`},
		{-1, `-1`},
		{9007199254740991, `9007199254740991`},
		{9007199254740992, `"9007199254740992"`},
		{math.MaxFloat64, `"1.7976931348623157e+308"`},
		{math.Inf(1), `"Infinity"`},
	}
	for _, test := range tests {
		f := F64FromFloat64(test.value)

		b, err := json.Marshal(f)
		require.NoError(t, err)
		require.Equal(t, test.json, string(b))

		var got F64
		require.NoError(t, json.Unmarshal(b, &got))
		require.Equal(t, f, got)
	}
}

// TestF64Decimal checks that the decimal form carries every digit of the
// binary value rather than the shortest string that parses back.
func TestF64Decimal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want string
	}{
		{
			name: "tenth",
			in:   0.1,
			want: "0.1000000000000000055511151231257827021181583404541015625",
		},
		{
			name: "negative quarter",
			in:   -0.25,
			want: "-0.25",
		},
		{
			name: "negative zero",
			in:   math.Copysign(0, -1),
			want: "0",
		},
		{
			name: "large integer",
			in:   math.Exp2(60),
			want: "1152921504606846976",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d, err := F64FromFloat64(tc.in).Decimal()
			require.NoError(t, err)
			require.Equal(t, tc.want, d.String())
		})
	}

	// The smallest subnormal is exactly 2^-1074.
	d, err := F64FromBits(1).Decimal()
	require.NoError(t, err)
	scale := new(big.Int).Lsh(big.NewInt(1), 1074)
	require.True(t, d.Mul(decimal.NewFromBigInt(scale, 0)).Equal(
		decimal.NewFromInt(1),
	))

	_, err = F64FromFloat64(math.Inf(1)).Decimal()
	require.ErrorIs(t, err, ErrInvalidValue)

	rapid.Check(t, func(t *rapid.T) {
		f := F64FromBits(rapid.Uint64().Draw(t, "bits"))
		if !f.IsFinite() || f.IsZero() {
			t.Skip("no exact decimal round trip")
		}

		d, err := f.Decimal()
		require.NoError(t, err)

		back, _ := d.Float64()
		require.Equal(t, f.Bits(), math.Float64bits(back))
	})
}
