package amount

import (
	"math/big"

	"github.com/btcsuite/btcd/btcutil"
)

// Amount is a signed quantity of picosatoshis. It may go negative and is meant
// for display and profit/loss accounting, never for values that end up in a
// transaction.
type Amount struct {
	pico *big.Int
}

// Zero returns an Amount of zero.
func Zero() *Amount {
	return &Amount{pico: new(big.Int)}
}

// FromBitcoin converts a bitcoin amount, rounded to the nearest satoshi.
func FromBitcoin(btc float64) *Amount {
	return &Amount{pico: btcFloatToPico(btc)}
}

// FromBitcoinString parses an exact decimal bitcoin amount.
func FromBitcoinString(s string) (*Amount, error) {
	pico, err := parseBTC(s)
	if err != nil {
		return nil, err
	}

	return &Amount{pico: pico}, nil
}

// FromSats converts a satoshi count.
func FromSats(sats int64) *Amount {
	return &Amount{pico: scale(sats, bigPicoPerSat)}
}

// FromBtcutil converts a btcutil.Amount.
func FromBtcutil(a btcutil.Amount) *Amount {
	return FromSats(int64(a))
}

// FromMilliSats converts a millisatoshi count.
func FromMilliSats(msats int64) *Amount {
	return &Amount{pico: scale(msats, bigPicoPerMsat)}
}

// FromMicroSats converts a microsatoshi count.
func FromMicroSats(usats int64) *Amount {
	return &Amount{pico: scale(usats, bigPicoPerUsat)}
}

// FromPicoSats copies a picosatoshi count.
func FromPicoSats(pico *big.Int) *Amount {
	return &Amount{pico: new(big.Int).Set(pico)}
}

// Clone returns an independent copy of a.
func (a *Amount) Clone() *Amount {
	return &Amount{pico: new(big.Int).Set(a.pico)}
}

// PicoSats returns a copy of the underlying picosatoshi count.
func (a *Amount) PicoSats() *big.Int {
	return new(big.Int).Set(a.pico)
}

// BigSats returns the satoshi count, truncated toward zero.
func (a *Amount) BigSats() *big.Int {
	return truncDiv(a.pico, bigPicoPerSat)
}

// Sats returns the satoshi count, truncated toward zero.
func (a *Amount) Sats() int64 {
	return a.BigSats().Int64()
}

// MilliSats returns the millisatoshi count, truncated toward zero.
func (a *Amount) MilliSats() int64 {
	return truncDiv(a.pico, bigPicoPerMsat).Int64()
}

// MicroSats returns the microsatoshi count, truncated toward zero.
func (a *Amount) MicroSats() int64 {
	return truncDiv(a.pico, bigPicoPerUsat).Int64()
}

// Bitcoin returns the whole-satoshi part of a in bitcoin, for display.
func (a *Amount) Bitcoin() float64 {
	return satsToBTC(a.BigSats())
}

// Value converts a to an unsigned Value, failing if a is negative.
func (a *Amount) Value() (*Value, error) {
	return newValue(new(big.Int).Set(a.pico))
}

// Add adds o to a in place and returns a.
func (a *Amount) Add(o *Amount) *Amount {
	a.pico.Add(a.pico, o.pico)
	return a
}

// AddN returns a + o without modifying a.
func (a *Amount) AddN(o *Amount) *Amount {
	return &Amount{pico: new(big.Int).Add(a.pico, o.pico)}
}

// Sub subtracts o from a in place and returns a.
func (a *Amount) Sub(o *Amount) *Amount {
	a.pico.Sub(a.pico, o.pico)
	return a
}

// SubN returns a - o without modifying a.
func (a *Amount) SubN(o *Amount) *Amount {
	return &Amount{pico: new(big.Int).Sub(a.pico, o.pico)}
}

// Neg negates a in place and returns a.
func (a *Amount) Neg() *Amount {
	a.pico.Neg(a.pico)
	return a
}

// Eq reports whether a == o.
func (a *Amount) Eq(o *Amount) bool { return a.pico.Cmp(o.pico) == 0 }

// Gt reports whether a > o.
func (a *Amount) Gt(o *Amount) bool { return a.pico.Cmp(o.pico) > 0 }

// Gte reports whether a >= o.
func (a *Amount) Gte(o *Amount) bool { return a.pico.Cmp(o.pico) >= 0 }

// Lt reports whether a < o.
func (a *Amount) Lt(o *Amount) bool { return a.pico.Cmp(o.pico) < 0 }

// Lte reports whether a <= o.
func (a *Amount) Lte(o *Amount) bool { return a.pico.Cmp(o.pico) <= 0 }

// IsZero reports whether a is zero.
func (a *Amount) IsZero() bool { return a.pico.Sign() == 0 }

// IsNegative reports whether a is below zero.
func (a *Amount) IsNegative() bool { return a.pico.Sign() < 0 }

// String renders a in bitcoin with exactly eight decimals, truncating
// sub-satoshi remainders toward zero.
func (a *Amount) String() string {
	return formatSats(a.BigSats())
}

// MarshalJSON encodes a in satoshis.
func (a *Amount) MarshalJSON() ([]byte, error) {
	return marshalPico(a.pico)
}

// UnmarshalJSON decodes a satoshi quantity written by MarshalJSON.
func (a *Amount) UnmarshalJSON(b []byte) error {
	pico, err := unmarshalPico(b)
	if err != nil {
		return err
	}
	a.pico = pico

	return nil
}
