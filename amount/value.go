package amount

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
)

// ErrNegativeValue is returned when an operation would take a Value below
// zero.
var ErrNegativeValue = errors.New("value cannot be negative")

// Value is an unsigned quantity of picosatoshis. The zero value is not usable;
// construct one with ZeroValue or one of the From functions.
type Value struct {
	pico *big.Int
}

// newValue wraps pico, rejecting negative quantities.
func newValue(pico *big.Int) (*Value, error) {
	if pico.Sign() < 0 {
		return nil, fmt.Errorf("%w: %v picosats", ErrNegativeValue, pico)
	}

	return &Value{pico: pico}, nil
}

// ZeroValue returns a Value of zero.
func ZeroValue() *Value {
	return &Value{pico: new(big.Int)}
}

// ValueFromBitcoin converts a bitcoin amount, rounded to the nearest
// satoshi.
func ValueFromBitcoin(btc float64) (*Value, error) {
	return newValue(btcFloatToPico(btc))
}

// ValueFromBitcoinString parses an exact decimal bitcoin amount.
func ValueFromBitcoinString(s string) (*Value, error) {
	pico, err := parseBTC(s)
	if err != nil {
		return nil, err
	}

	return newValue(pico)
}

// ValueFromSats converts a satoshi count.
func ValueFromSats(sats uint64) *Value {
	return &Value{pico: scaleU(sats, bigPicoPerSat)}
}

// ValueFromAmount converts a btcutil.Amount, which must not be negative.
func ValueFromAmount(a btcutil.Amount) (*Value, error) {
	return newValue(scale(int64(a), bigPicoPerSat))
}

// ValueFromMilliSats converts a millisatoshi count.
func ValueFromMilliSats(msats uint64) *Value {
	return &Value{pico: scaleU(msats, bigPicoPerMsat)}
}

// ValueFromMicroSats converts a microsatoshi count.
func ValueFromMicroSats(usats uint64) *Value {
	return &Value{pico: scaleU(usats, bigPicoPerUsat)}
}

// ValueFromPicoSats copies a picosatoshi count.
func ValueFromPicoSats(pico *big.Int) (*Value, error) {
	return newValue(new(big.Int).Set(pico))
}

// Clone returns an independent copy of v.
func (v *Value) Clone() *Value {
	return &Value{pico: new(big.Int).Set(v.pico)}
}

// PicoSats returns a copy of the underlying picosatoshi count.
func (v *Value) PicoSats() *big.Int {
	return new(big.Int).Set(v.pico)
}

// BigSats returns the satoshi count, truncating any remainder.
func (v *Value) BigSats() *big.Int {
	return truncDiv(v.pico, bigPicoPerSat)
}

// Sats returns the satoshi count, truncating any remainder. Values above
// MaxUint64 satoshis do not occur in bitcoin and are not representable here.
func (v *Value) Sats() uint64 {
	return v.BigSats().Uint64()
}

// MilliSats returns the millisatoshi count, truncating any remainder.
func (v *Value) MilliSats() uint64 {
	return truncDiv(v.pico, bigPicoPerMsat).Uint64()
}

// MicroSats returns the microsatoshi count, truncating any remainder.
func (v *Value) MicroSats() uint64 {
	return truncDiv(v.pico, bigPicoPerUsat).Uint64()
}

// Bitcoin returns the whole-satoshi part of v in bitcoin. It is for display
// only; comparisons must use the picosatoshi methods.
func (v *Value) Bitcoin() float64 {
	btc := satsToBTC(v.BigSats())
	if btc < 0 {
		return 0
	}

	return btc
}

// BtcutilAmount returns the truncated satoshi count as a btcutil.Amount.
func (v *Value) BtcutilAmount() btcutil.Amount {
	return btcutil.Amount(v.BigSats().Int64())
}

// Amount returns a signed copy of v.
func (v *Value) Amount() *Amount {
	return &Amount{pico: new(big.Int).Set(v.pico)}
}

// Add adds o to v in place and returns v.
func (v *Value) Add(o *Value) *Value {
	v.pico.Add(v.pico, o.pico)
	return v
}

// AddN returns v + o without modifying v.
func (v *Value) AddN(o *Value) *Value {
	return &Value{pico: new(big.Int).Add(v.pico, o.pico)}
}

// Sub subtracts o from v in place and returns v. If the result would be
// negative v is left untouched and ErrNegativeValue is returned.
func (v *Value) Sub(o *Value) (*Value, error) {
	if v.pico.Cmp(o.pico) < 0 {
		return nil, fmt.Errorf("%w: %v - %v", ErrNegativeValue, v, o)
	}
	v.pico.Sub(v.pico, o.pico)

	return v, nil
}

// SubN returns v - o without modifying v, failing with ErrNegativeValue if
// the result would be negative.
func (v *Value) SubN(o *Value) (*Value, error) {
	return v.Clone().Sub(o)
}

// Eq reports whether v == o.
func (v *Value) Eq(o *Value) bool { return v.pico.Cmp(o.pico) == 0 }

// Gt reports whether v > o.
func (v *Value) Gt(o *Value) bool { return v.pico.Cmp(o.pico) > 0 }

// Gte reports whether v >= o.
func (v *Value) Gte(o *Value) bool { return v.pico.Cmp(o.pico) >= 0 }

// Lt reports whether v < o.
func (v *Value) Lt(o *Value) bool { return v.pico.Cmp(o.pico) < 0 }

// Lte reports whether v <= o.
func (v *Value) Lte(o *Value) bool { return v.pico.Cmp(o.pico) <= 0 }

// IsZero reports whether v is zero.
func (v *Value) IsZero() bool { return v.pico.Sign() == 0 }

// String renders v in bitcoin with exactly eight decimals. Sub-satoshi
// remainders are truncated.
func (v *Value) String() string {
	return formatSats(v.BigSats())
}

// MarshalJSON encodes v in satoshis.
func (v *Value) MarshalJSON() ([]byte, error) {
	return marshalPico(v.pico)
}

// UnmarshalJSON decodes a satoshi quantity written by MarshalJSON.
func (v *Value) UnmarshalJSON(b []byte) error {
	pico, err := unmarshalPico(b)
	if err != nil {
		return err
	}

	val, err := newValue(pico)
	if err != nil {
		return err
	}
	*v = *val

	return nil
}
