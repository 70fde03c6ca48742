// Package amount implements exact monetary quantities denominated in
// picosatoshis (1e-12 satoshi). Value is the unsigned variant used for
// transaction amounts, Amount the signed variant used for display and PnL
// accounting.
//
// Neither type is safe for concurrent mutation.
package amount

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/dlcgo/dlcd/codec"
	"github.com/shopspring/decimal"
)

const (
	// SatsPerBitcoin is the number of satoshis in one bitcoin.
	SatsPerBitcoin = 100_000_000

	// PicoSatsPerSat is the number of picosatoshis in one satoshi.
	PicoSatsPerSat = 1_000_000_000_000

	// PicoSatsPerMilliSat is the number of picosatoshis in one
	// millisatoshi.
	PicoSatsPerMilliSat = 1_000_000_000

	// PicoSatsPerMicroSat is the number of picosatoshis in one
	// microsatoshi.
	PicoSatsPerMicroSat = 1_000_000

	// displayDecimals is the number of fractional digits used by String.
	displayDecimals = 8
)

var (
	bigPicoPerSat  = big.NewInt(PicoSatsPerSat)
	bigPicoPerMsat = big.NewInt(PicoSatsPerMilliSat)
	bigPicoPerUsat = big.NewInt(PicoSatsPerMicroSat)
	bigSatsPerBTC  = big.NewInt(SatsPerBitcoin)
	bigPicoPerBTC  = new(big.Int).Mul(bigPicoPerSat, bigSatsPerBTC)
	decPicoPerBTC  = decimal.NewFromBigInt(bigPicoPerBTC, 0)
	decSatsPerBTC  = decimal.NewFromInt(SatsPerBitcoin)
	decPicoPerSat  = decimal.NewFromInt(PicoSatsPerSat)
	maxSafeSats    = big.NewInt(1<<53 - 1)
)

// scale returns n * unit as a new big.Int.
func scale(n int64, unit *big.Int) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), unit)
}

// scaleU returns n * unit as a new big.Int.
func scaleU(n uint64, unit *big.Int) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(n), unit)
}

// truncDiv divides toward zero, which is the conversion policy for every
// coarser unit accessor.
func truncDiv(pico, unit *big.Int) *big.Int {
	return new(big.Int).Quo(pico, unit)
}

// btcFloatToPico converts a bitcoin float to picosats by rounding to the
// nearest satoshi first, matching how wallets enter amounts.
func btcFloatToPico(btc float64) *big.Int {
	sats := decimal.NewFromFloat(btc).Mul(decSatsPerBTC).Round(0)
	return new(big.Int).Mul(sats.BigInt(), bigPicoPerSat)
}

// parseBTC parses a decimal bitcoin string exactly. Digits below one
// picosatoshi cannot be represented and are rejected.
func parseBTC(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", codec.ErrPrecisionOverflow,
			s, err)
	}

	pico := d.Mul(decPicoPerBTC)
	if !pico.Equal(pico.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has sub-picosatoshi digits",
			codec.ErrPrecisionOverflow, s)
	}

	return pico.BigInt(), nil
}

// formatSats renders a satoshi count as bitcoin with exactly eight decimals.
func formatSats(sats *big.Int) string {
	return decimal.NewFromBigInt(sats, -displayDecimals).
		StringFixed(displayDecimals)
}

// satsToBTC returns the display float for a satoshi count.
func satsToBTC(sats *big.Int) float64 {
	return decimal.NewFromBigInt(sats, -displayDecimals).InexactFloat64()
}

// marshalPico encodes a picosat quantity as satoshis: a JSON integer when it
// is a whole number of satoshis inside the exactly representable range, and
// an exact decimal string otherwise.
func marshalPico(pico *big.Int) ([]byte, error) {
	sats, rem := new(big.Int).QuoRem(pico, bigPicoPerSat, new(big.Int))
	if rem.Sign() == 0 && new(big.Int).Abs(sats).Cmp(maxSafeSats) <= 0 {
		return []byte(sats.String()), nil
	}

	return json.Marshal(decimal.NewFromBigInt(pico, -12).String())
}

// unmarshalPico decodes the output of marshalPico.
func unmarshalPico(b []byte) (*big.Int, error) {
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", codec.ErrPrecisionOverflow,
			s, err)
	}

	pico := d.Mul(decPicoPerSat)
	if !pico.Equal(pico.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has sub-picosatoshi digits",
			codec.ErrPrecisionOverflow, s)
	}

	return pico.BigInt(), nil
}
