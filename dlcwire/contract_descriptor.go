package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/codec"
)

const (
	contractDescriptorEnumerated uint64 = 0
	contractDescriptorNumeric    uint64 = 1
)

// ContractDescriptor is a tagged union describing how the contract pays out
// for each outcome. Exactly one variant is set.
type ContractDescriptor struct {
	Enumerated *EnumeratedContractDescriptor `json:"enumeratedContractDescriptor,omitempty"`
	Numeric    *NumericContractDescriptor    `json:"numericOutcomeContractDescriptor,omitempty"`
}

// ContractOutcome is the offerer's payout for one enumerated outcome.
type ContractOutcome struct {
	Outcome     string         `json:"outcome"`
	LocalPayout btcutil.Amount `json:"localPayout"`
}

// EnumeratedContractDescriptor lists a payout for every outcome of an enum
// event.
type EnumeratedContractDescriptor struct {
	Outcomes []ContractOutcome `json:"payouts"`
}

// NumericContractDescriptor pays out along a curve over the numeric outcome
// of a digit decomposition event.
type NumericContractDescriptor struct {
	NumDigits         uint16            `json:"numDigits"`
	PayoutFunction    PayoutFunction    `json:"payoutFunction"`
	RoundingIntervals RoundingIntervals `json:"roundingIntervals"`
}

// Decode reads the descriptor sub-type and its body.
func (c *ContractDescriptor) Decode(r *codec.Reader) error {
	variant, err := r.ReadBigSize()
	if err != nil {
		return err
	}

	switch variant {
	case contractDescriptorEnumerated:
		c.Enumerated = &EnumeratedContractDescriptor{}

		n, err := r.ReadBigSizeLen()
		if err != nil {
			return err
		}
		c.Enumerated.Outcomes = make([]ContractOutcome, n)
		for i := range c.Enumerated.Outcomes {
			outcome, err := r.ReadVarBytes()
			if err != nil {
				return err
			}
			payout, err := r.ReadUint64()
			if err != nil {
				return err
			}

			c.Enumerated.Outcomes[i] = ContractOutcome{
				Outcome:     string(outcome),
				LocalPayout: btcutil.Amount(payout),
			}
		}

		return nil

	case contractDescriptorNumeric:
		c.Numeric = &NumericContractDescriptor{}

		c.Numeric.NumDigits, err = r.ReadUint16()
		if err != nil {
			return err
		}
		if err := c.Numeric.PayoutFunction.Decode(r); err != nil {
			return fmt.Errorf("payout function: %w", err)
		}

		return c.Numeric.RoundingIntervals.Decode(r)

	default:
		return fmt.Errorf("contract descriptor: %w",
			&codec.UnknownRecordError{Type: variant})
	}
}

// Encode writes the descriptor sub-type and its body.
func (c *ContractDescriptor) Encode(w *bytes.Buffer) error {
	switch {
	case c.Enumerated != nil:
		err := codec.WriteBigSize(w, contractDescriptorEnumerated)
		if err != nil {
			return err
		}

		outcomes := c.Enumerated.Outcomes
		if err := codec.WriteBigSize(w, uint64(len(outcomes))); err != nil {
			return err
		}
		for _, o := range outcomes {
			if err := codec.WriteVarBytes(w, []byte(o.Outcome)); err != nil {
				return err
			}
			err := codec.WriteUint64(w, uint64(o.LocalPayout))
			if err != nil {
				return err
			}
		}

		return nil

	case c.Numeric != nil:
		err := codec.WriteBigSize(w, contractDescriptorNumeric)
		if err != nil {
			return err
		}
		if err := codec.WriteUint16(w, c.Numeric.NumDigits); err != nil {
			return err
		}
		if err := c.Numeric.PayoutFunction.Encode(w); err != nil {
			return err
		}

		return c.Numeric.RoundingIntervals.Encode(w)

	default:
		return codec.Invalid("empty contract descriptor")
	}
}

// Validate checks the set variant against the total collateral of the
// contract it belongs to.
func (c *ContractDescriptor) Validate(totalCollateral btcutil.Amount) error {
	switch {
	case c.Enumerated != nil && c.Numeric != nil:
		return codec.Invalid("contract descriptor has two variants")

	case c.Enumerated != nil:
		if len(c.Enumerated.Outcomes) == 0 {
			return codec.Invalid("enumerated descriptor has no " +
				"outcomes")
		}
		for _, o := range c.Enumerated.Outcomes {
			if o.LocalPayout < 0 || o.LocalPayout > totalCollateral {
				return codec.Invalid("payout %v for outcome %q "+
					"outside [0, %v]", o.LocalPayout, o.Outcome,
					totalCollateral)
			}
		}

		return nil

	case c.Numeric != nil:
		if c.Numeric.NumDigits == 0 {
			return codec.Invalid("numeric descriptor has no digits")
		}
		if err := c.Numeric.PayoutFunction.Validate(); err != nil {
			return err
		}

		return c.Numeric.RoundingIntervals.Validate()

	default:
		return codec.Invalid("empty contract descriptor")
	}
}
