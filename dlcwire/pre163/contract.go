package pre163

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/tlvframe"
)

// ContractInfo is the framed contract info of the older schema. Exactly one
// variant is set.
type ContractInfo struct {
	V0 *ContractInfoV0 `json:"contractInfoV0,omitempty"`
	V1 *ContractInfoV1 `json:"contractInfoV1,omitempty"`
}

// ContractInfoV0 is a contract settled by a single descriptor.
type ContractInfoV0 struct {
	TotalCollateral btcutil.Amount     `json:"totalCollateral"`
	Pair            ContractOraclePair `json:"contractInfo"`
}

// ContractInfoV1 is a disjoint contract.
type ContractInfoV1 struct {
	TotalCollateral btcutil.Amount       `json:"totalCollateral"`
	Pairs           []ContractOraclePair `json:"contractOraclePairs"`
}

// ContractOraclePair binds a descriptor to the oracle that settles it.
type ContractOraclePair struct {
	ContractDescriptor ContractDescriptor `json:"contractDescriptor"`
	OracleInfo         OracleInfoV0       `json:"oracleInfo"`
}

func (p *ContractOraclePair) decode(r *codec.Reader) error {
	if err := p.ContractDescriptor.Decode(r); err != nil {
		return err
	}

	return p.OracleInfo.Decode(r)
}

func (p *ContractOraclePair) encode(w *bytes.Buffer) error {
	if err := p.ContractDescriptor.Encode(w); err != nil {
		return err
	}

	return p.OracleInfo.Encode(w)
}

// Decode reads whichever contract info record comes next.
func (c *ContractInfo) Decode(r *codec.Reader) error {
	typ, err := tlvframe.PeekType(r)
	if err != nil {
		return err
	}

	switch typ {
	case dlcwire.TypeContractInfoV0:
		c.V0 = &ContractInfoV0{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			total, err := body.ReadUint64()
			if err != nil {
				return err
			}
			c.V0.TotalCollateral = btcutil.Amount(total)

			return c.V0.Pair.decode(body)
		})

	case dlcwire.TypeContractInfoV1:
		c.V1 = &ContractInfoV1{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			total, err := body.ReadUint64()
			if err != nil {
				return err
			}
			c.V1.TotalCollateral = btcutil.Amount(total)

			n, err := body.ReadBigSizeLen()
			if err != nil {
				return err
			}
			c.V1.Pairs = make([]ContractOraclePair, n)
			for i := range c.V1.Pairs {
				if err := c.V1.Pairs[i].decode(body); err != nil {
					return fmt.Errorf("contract info %d: %w", i,
						err)
				}
			}

			return nil
		})

	default:
		return fmt.Errorf("contract info: %w",
			&codec.UnknownRecordError{Type: uint64(typ)})
	}
}

// Encode writes the set variant as a framed record.
func (c *ContractInfo) Encode(w *bytes.Buffer) error {
	switch {
	case c.V0 != nil:
		return tlvframe.Write(w, dlcwire.TypeContractInfoV0,
			func(body *bytes.Buffer) error {
				err := codec.WriteUint64(
					body, uint64(c.V0.TotalCollateral),
				)
				if err != nil {
					return err
				}

				return c.V0.Pair.encode(body)
			},
		)

	case c.V1 != nil:
		return tlvframe.Write(w, dlcwire.TypeContractInfoV1,
			func(body *bytes.Buffer) error {
				err := codec.WriteUint64(
					body, uint64(c.V1.TotalCollateral),
				)
				if err != nil {
					return err
				}

				n := uint64(len(c.V1.Pairs))
				if err := codec.WriteBigSize(body, n); err != nil {
					return err
				}
				for i := range c.V1.Pairs {
					if err := c.V1.Pairs[i].encode(body); err != nil {
						return err
					}
				}

				return nil
			},
		)

	default:
		return codec.Invalid("empty contract info")
	}
}

// OutcomeHash is the sha256 of an enumerated outcome, which is how the
// older schema names outcomes.
type OutcomeHash [32]byte

// String returns the hex encoding of the hash.
func (h OutcomeHash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText encodes the hash as hex.
func (h OutcomeHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText decodes a hex encoded hash.
func (h *OutcomeHash) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil || len(b) != len(h) {
		return codec.Invalid("outcome hash %q", text)
	}
	copy(h[:], b)

	return nil
}

// OutcomePayout is the offerer's payout for one hashed outcome.
type OutcomePayout struct {
	Outcome     OutcomeHash    `json:"outcome"`
	LocalPayout btcutil.Amount `json:"localPayout"`
}

// ContractDescriptor is the framed descriptor of the older schema. Exactly
// one variant is set.
type ContractDescriptor struct {
	V0 *ContractDescriptorV0 `json:"contractDescriptorV0,omitempty"`
	V1 *ContractDescriptorV1 `json:"contractDescriptorV1,omitempty"`
}

// ContractDescriptorV0 pays out per hashed enumerated outcome.
type ContractDescriptorV0 struct {
	Outcomes []OutcomePayout `json:"outcomes"`
}

// ContractDescriptorV1 pays out along a curve over a numeric outcome.
type ContractDescriptorV1 struct {
	NumDigits         uint16            `json:"numDigits"`
	PayoutFunction    PayoutFunction    `json:"payoutFunction"`
	RoundingIntervals RoundingIntervals `json:"roundingIntervals"`
}

// Decode reads whichever descriptor record comes next.
func (c *ContractDescriptor) Decode(r *codec.Reader) error {
	typ, err := tlvframe.PeekType(r)
	if err != nil {
		return err
	}

	switch typ {
	case dlcwire.TypeContractDescriptorV0:
		c.V0 = &ContractDescriptorV0{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			n, err := body.ReadBigSizeLen()
			if err != nil {
				return err
			}

			c.V0.Outcomes = make([]OutcomePayout, n)
			for i := range c.V0.Outcomes {
				o := &c.V0.Outcomes[i]
				if err := body.ReadFixed(o.Outcome[:]); err != nil {
					return err
				}
				payout, err := body.ReadUint64()
				if err != nil {
					return err
				}
				o.LocalPayout = btcutil.Amount(payout)
			}

			return nil
		})

	case dlcwire.TypeContractDescriptorV1:
		c.V1 = &ContractDescriptorV1{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			c.V1.NumDigits, err = body.ReadUint16()
			if err != nil {
				return err
			}
			if err := c.V1.PayoutFunction.Decode(body); err != nil {
				return err
			}

			return c.V1.RoundingIntervals.Decode(body)
		})

	default:
		return fmt.Errorf("contract descriptor: %w",
			&codec.UnknownRecordError{Type: uint64(typ)})
	}
}

// Encode writes the set variant as a framed record.
func (c *ContractDescriptor) Encode(w *bytes.Buffer) error {
	switch {
	case c.V0 != nil:
		return tlvframe.Write(w, dlcwire.TypeContractDescriptorV0,
			func(body *bytes.Buffer) error {
				n := uint64(len(c.V0.Outcomes))
				if err := codec.WriteBigSize(body, n); err != nil {
					return err
				}
				for _, o := range c.V0.Outcomes {
					err := codec.WriteBytes(body, o.Outcome[:])
					if err != nil {
						return err
					}
					err = codec.WriteUint64(
						body, uint64(o.LocalPayout),
					)
					if err != nil {
						return err
					}
				}

				return nil
			},
		)

	case c.V1 != nil:
		return tlvframe.Write(w, dlcwire.TypeContractDescriptorV1,
			func(body *bytes.Buffer) error {
				err := codec.WriteUint16(body, c.V1.NumDigits)
				if err != nil {
					return err
				}
				if err := c.V1.PayoutFunction.Encode(body); err != nil {
					return err
				}

				return c.V1.RoundingIntervals.Encode(body)
			},
		)

	default:
		return codec.Invalid("empty contract descriptor")
	}
}

// OracleInfoV0 is the only oracle info of the older schema: a single
// announcement.
type OracleInfoV0 struct {
	Announcement dlcwire.OracleAnnouncement `json:"oracleAnnouncement"`
}

// Decode reads a framed oracle info.
func (o *OracleInfoV0) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, dlcwire.TypeOracleInfoV0,
		o.Announcement.Decode)
}

// Encode writes a framed oracle info.
func (o *OracleInfoV0) Encode(w *bytes.Buffer) error {
	return tlvframe.Write(w, dlcwire.TypeOracleInfoV0, o.Announcement.Encode)
}
