package amount

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestValueSubUnderflow asserts that Value refuses to go negative and leaves
// the receiver untouched when it does.
func TestValueSubUnderflow(t *testing.T) {
	t.Parallel()

	v := ValueFromSats(100)

	_, err := v.Sub(ValueFromSats(101))
	require.ErrorIs(t, err, ErrNegativeValue)
	require.EqualValues(t, 100, v.Sats())

	_, err = v.SubN(ValueFromSats(101))
	require.ErrorIs(t, err, ErrNegativeValue)

	got, err := v.Sub(ValueFromSats(100))
	require.NoError(t, err)
	require.Same(t, v, got)
	require.True(t, v.IsZero())
}

// TestValueSubN asserts that SubN leaves the receiver unmodified.
func TestValueSubN(t *testing.T) {
	t.Parallel()

	v := ValueFromSats(1000)
	rest, err := v.SubN(ValueFromSats(400))
	require.NoError(t, err)

	require.EqualValues(t, 1000, v.Sats())
	require.EqualValues(t, 600, rest.Sats())
}

// TestValueConstructors covers the unit constructors and accessors.
func TestValueConstructors(t *testing.T) {
	t.Parallel()

	require.EqualValues(t, 1, ValueFromMilliSats(1000).Sats())
	require.EqualValues(t, 1, ValueFromMicroSats(1_000_000).Sats())
	require.EqualValues(t, 1_000, ValueFromMicroSats(1_000_000).MilliSats())
	require.EqualValues(t, 5, ValueFromSats(5).MilliSats()/1000)

	v, err := ValueFromBitcoin(0.00000001)
	require.NoError(t, err)
	require.EqualValues(t, 1, v.Sats())

	_, err = ValueFromBitcoin(-1)
	require.ErrorIs(t, err, ErrNegativeValue)

	_, err = ValueFromPicoSats(big.NewInt(-1))
	require.ErrorIs(t, err, ErrNegativeValue)

	v, err = ValueFromBitcoinString("2.5")
	require.NoError(t, err)
	require.EqualValues(t, 250_000_000, v.Sats())
	require.Equal(t, 2.5, v.Bitcoin())
	require.Equal(t, "2.50000000", v.String())

	v, err = ValueFromAmount(btcutil.Amount(99999999))
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(99999999), v.BtcutilAmount())

	_, err = ValueFromAmount(btcutil.Amount(-1))
	require.ErrorIs(t, err, ErrNegativeValue)
}

// TestValueAddChaining covers in-place and copying addition.
func TestValueAddChaining(t *testing.T) {
	t.Parallel()

	v := ZeroValue().Add(ValueFromSats(1000)).Add(ValueFromSats(400))
	require.EqualValues(t, 1400, v.Sats())

	w := v.AddN(ValueFromSats(1))
	require.EqualValues(t, 1400, v.Sats())
	require.EqualValues(t, 1401, w.Sats())

	require.True(t, w.Gt(v))
	require.True(t, w.Gte(v))
	require.True(t, v.Lt(w))
	require.True(t, v.Lte(w))
	require.True(t, v.Eq(v.Clone()))
}

// TestValueJSON round trips values through JSON.
func TestValueJSON(t *testing.T) {
	t.Parallel()

	v := ValueFromSats(200_000_000)

	b, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `200000000`, string(b))

	got := ZeroValue()
	require.NoError(t, json.Unmarshal(b, got))
	require.True(t, v.Eq(got))

	require.ErrorIs(t, json.Unmarshal([]byte(`-1`), got), ErrNegativeValue)
}

// TestValueAmountProperties asserts that Value and Amount agree wherever
// both are defined.
func TestValueAmountProperties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		x := rapid.Uint64Range(0, 21_000_000*SatsPerBitcoin).Draw(t, "x")
		y := rapid.Uint64Range(0, 21_000_000*SatsPerBitcoin).Draw(t, "y")

		vx, vy := ValueFromSats(x), ValueFromSats(y)
		diff := vx.Amount().SubN(vy.Amount())

		res, err := vx.SubN(vy)
		if x < y {
			require.ErrorIs(t, err, ErrNegativeValue)
			require.True(t, diff.IsNegative())

			return
		}

		require.NoError(t, err)
		require.Equal(t, diff.Sats(), int64(res.Sats()))
		require.Equal(t, diff.String(), res.String())
	})
}
