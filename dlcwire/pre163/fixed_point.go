package pre163

import (
	"bytes"
	"math"
	"math/big"

	"github.com/dlcgo/dlcd/codec"
	"github.com/shopspring/decimal"
)

// fracDenominator is the scale of the fractional part of a FixedPoint.
const fracDenominator = 1 << 16

// FixedPoint is a signed number with a 64-bit whole part and a 16-bit binary
// fraction, the representation the older schema uses for hyperbola
// parameters. Its value is (-1)^Negative * (Whole + Frac/65536).
type FixedPoint struct {
	Negative bool   `json:"negative"`
	Whole    uint64 `json:"whole"`
	Frac     uint16 `json:"extraPrecision"`
}

func (f *FixedPoint) decode(r *codec.Reader) error {
	var err error
	if f.Negative, err = r.ReadBool(); err != nil {
		return err
	}
	if f.Whole, err = r.ReadBigSize(); err != nil {
		return err
	}
	f.Frac, err = r.ReadUint16()

	return err
}

func (f *FixedPoint) encode(w *bytes.Buffer) error {
	if err := codec.WriteBool(w, f.Negative); err != nil {
		return err
	}
	if err := codec.WriteBigSize(w, f.Whole); err != nil {
		return err
	}

	return codec.WriteUint16(w, f.Frac)
}

// Decimal returns the exact value of f.
func (f FixedPoint) Decimal() decimal.Decimal {
	whole := decimal.NewFromBigInt(new(big.Int).SetUint64(f.Whole), 0)
	frac := decimal.New(int64(f.Frac), 0).Div(
		decimal.New(fracDenominator, 0),
	)

	v := whole.Add(frac)
	if f.Negative {
		v = v.Neg()
	}

	return v
}

// F64 returns the double nearest to f. A negative zero keeps its sign.
func (f FixedPoint) F64() codec.F64 {
	if f.Whole == 0 && f.Frac == 0 {
		if f.Negative {
			return codec.F64FromFloat64(math.Copysign(0, -1))
		}

		return codec.F64FromFloat64(0)
	}

	v, _ := f.Decimal().Float64()

	return codec.F64FromFloat64(v)
}

// FixedPointFromF64 converts a double to a FixedPoint. Only doubles whose
// fraction is a whole multiple of 1/65536 have an exact fixed point form;
// all others are rejected, as are values that are not finite or whose whole
// part does not fit in 64 bits.
func FixedPointFromF64(f codec.F64) (FixedPoint, error) {
	if !f.IsFinite() {
		return FixedPoint{}, codec.Invalid("%v has no fixed point form",
			f)
	}

	v := f.Float64()
	abs := math.Abs(v)
	if abs >= math.Exp2(64) {
		return FixedPoint{}, codec.Invalid("%v overflows a 64-bit "+
			"whole part", f)
	}

	whole := math.Floor(abs)

	// Scaling by a power of two is exact, so the fraction is on the grid
	// iff the scaled value is integral.
	frac := (abs - whole) * fracDenominator
	if frac != math.Trunc(frac) {
		return FixedPoint{}, codec.Invalid("%v is not a multiple of "+
			"1/%d", f, fracDenominator)
	}

	return FixedPoint{
		Negative: math.Signbit(v),
		Whole:    uint64(whole),
		Frac:     uint16(frac),
	}, nil
}
