package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// f64ExpMask selects the 11 exponent bits once shifted down.
	f64ExpMask = 0x7ff

	// f64MantissaMask selects the 52 mantissa bits.
	f64MantissaMask = (uint64(1) << 52) - 1

	// f64ExpBias is the exponent bias of a double.
	f64ExpBias = 1023

	// maxSafeInteger is the largest integer n such that n and n+1 are both
	// exactly representable as a double.
	maxSafeInteger = 1<<53 - 1
)

// F64 holds the raw big endian IEEE-754 encoding of a 64-bit float. Keeping
// the bytes rather than a float64 preserves NaN payloads and signed zero
// across a decode/encode cycle.
type F64 [8]byte

// F64FromFloat64 returns the encoding of v.
func F64FromFloat64(v float64) F64 {
	var f F64
	binary.BigEndian.PutUint64(f[:], math.Float64bits(v))

	return f
}

// F64FromBits returns the F64 with the given bit pattern.
func F64FromBits(bits uint64) F64 {
	var f F64
	binary.BigEndian.PutUint64(f[:], bits)

	return f
}

// F64FromBytes copies an 8 byte big endian encoding.
func F64FromBytes(b []byte) (F64, error) {
	var f F64
	if len(b) != len(f) {
		return f, Invalid("f64 needs 8 bytes, got %d", len(b))
	}
	copy(f[:], b)

	return f, nil
}

// F64FromString parses a decimal literal into the nearest double. The literal
// is parsed exactly first and then rounded once, so long expansions and
// boundary values land on the correctly rounded result. "NaN", "Infinity"
// and "-Infinity" (and their Go spellings) are accepted as well.
func F64FromString(s string) (F64, error) {
	s = strings.TrimSpace(s)

	switch strings.ToLower(s) {
	case "nan":
		return F64FromFloat64(math.NaN()), nil
	case "infinity", "+infinity", "inf", "+inf":
		return F64FromFloat64(math.Inf(1)), nil
	case "-infinity", "-inf":
		return F64FromFloat64(math.Inf(-1)), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return F64{}, fmt.Errorf("%w: %q: %v", ErrPrecisionOverflow, s,
			err)
	}

	v, _ := d.Float64()
	if math.IsInf(v, 0) {
		return F64{}, fmt.Errorf("%w: %q exceeds the float64 range",
			ErrPrecisionOverflow, s)
	}

	// The decimal type has no negative zero.
	if v == 0 && strings.HasPrefix(s, "-") {
		v = math.Copysign(0, -1)
	}

	return F64FromFloat64(v), nil
}

// Bits returns the raw 64-bit pattern.
func (f F64) Bits() uint64 {
	return binary.BigEndian.Uint64(f[:])
}

// Float64 returns the value as a native float.
func (f F64) Float64() float64 {
	return math.Float64frombits(f.Bits())
}

// Sign returns the sign bit: 1 for negative values (including -0 and
// negative NaNs), 0 otherwise.
func (f F64) Sign() uint8 {
	return uint8(f.Bits() >> 63)
}

// Exponent returns the 11-bit biased exponent field.
func (f F64) Exponent() uint16 {
	return uint16((f.Bits() >> 52) & f64ExpMask)
}

// Mantissa returns the 52-bit fraction field.
func (f F64) Mantissa() uint64 {
	return f.Bits() & f64MantissaMask
}

// IsNaN reports whether f is any NaN.
func (f F64) IsNaN() bool {
	return f.Exponent() == f64ExpMask && f.Mantissa() != 0
}

// IsInfinite reports whether f is +Inf or -Inf.
func (f F64) IsInfinite() bool {
	return f.Exponent() == f64ExpMask && f.Mantissa() == 0
}

// IsFinite reports whether f is neither NaN nor infinite.
func (f F64) IsFinite() bool {
	return f.Exponent() != f64ExpMask
}

// IsZero reports whether f is +0 or -0.
func (f F64) IsZero() bool {
	return f.Exponent() == 0 && f.Mantissa() == 0
}

// Decimal returns the exact decimal expansion of a finite f, with every
// digit of its binary fraction. Negative zero becomes zero.
func (f F64) Decimal() (decimal.Decimal, error) {
	if !f.IsFinite() {
		return decimal.Decimal{}, Invalid("%v has no decimal value", f)
	}

	// f is mant * 2^exp, subnormals lacking the implicit leading bit.
	mant := new(big.Int).SetUint64(f.Mantissa())
	exp := int(f.Exponent()) - f64ExpBias - 52
	if f.Exponent() == 0 {
		exp = 1 - f64ExpBias - 52
	} else {
		mant.SetBit(mant, 52, 1)
	}
	if f.Sign() == 1 {
		mant.Neg(mant)
	}

	if exp >= 0 {
		return decimal.NewFromBigInt(mant.Lsh(mant, uint(exp)), 0), nil
	}

	// mant * 2^-k == mant * 5^k * 10^-k.
	k := int64(-exp)
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(k), nil)

	return decimal.NewFromBigInt(mant.Mul(mant, five), int32(exp)), nil
}

// String returns the shortest representation that parses back to the same
// value. Plain notation is used between 1e-6 and 1e21, exponent notation
// outside of it.
func (f F64) String() string {
	switch {
	case f.IsNaN():
		return "NaN"
	case f.IsInfinite() && f.Sign() == 1:
		return "-Infinity"
	case f.IsInfinite():
		return "Infinity"
	}

	v := f.Float64()
	if abs := math.Abs(v); abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}

// MarshalJSON encodes f as a JSON number when it lies within the exactly
// representable integer range, and as a decimal string otherwise.
func (f F64) MarshalJSON() ([]byte, error) {
	if f.IsFinite() && math.Abs(f.Float64()) <= maxSafeInteger {
		return []byte(f.String()), nil
	}

	return json.Marshal(f.String())
}

// UnmarshalJSON accepts either a JSON number or a string.
func (f *F64) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}

	v, err := F64FromString(s)
	if err != nil {
		return err
	}
	*f = v

	return nil
}
