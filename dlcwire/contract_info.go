package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/codec"
)

const (
	contractInfoSingle   uint64 = 0
	contractInfoDisjoint uint64 = 1
)

// ContractOraclePair binds a contract descriptor to the oracle(s) that will
// attest to its outcome.
type ContractOraclePair struct {
	ContractDescriptor ContractDescriptor `json:"contractDescriptor"`
	OracleInfo         OracleInfo         `json:"oracleInfo"`
}

func (p *ContractOraclePair) decode(r *codec.Reader) error {
	if err := p.ContractDescriptor.Decode(r); err != nil {
		return err
	}
	if err := p.OracleInfo.Decode(r); err != nil {
		return fmt.Errorf("oracle info: %w", err)
	}

	return nil
}

func (p *ContractOraclePair) encode(w *bytes.Buffer) error {
	if err := p.ContractDescriptor.Encode(w); err != nil {
		return err
	}

	return p.OracleInfo.Encode(w)
}

// Validate checks the pair. Enumerated payouts are bounded by the given
// total collateral.
func (p *ContractOraclePair) Validate(total btcutil.Amount) error {
	if err := p.ContractDescriptor.Validate(total); err != nil {
		return fmt.Errorf("contract descriptor: %w", err)
	}
	if err := p.OracleInfo.Validate(); err != nil {
		return fmt.Errorf("oracle info: %w", err)
	}

	return nil
}

// SingleContractInfo is a contract settled by a single descriptor.
type SingleContractInfo struct {
	TotalCollateral btcutil.Amount     `json:"totalCollateral"`
	ContractInfo    ContractOraclePair `json:"contractInfo"`
}

// DisjointContractInfo is a contract whose outcome is decided by whichever
// of several independent events gets attested.
type DisjointContractInfo struct {
	TotalCollateral btcutil.Amount       `json:"totalCollateral"`
	ContractInfos   []ContractOraclePair `json:"contractInfos"`
}

// ContractInfo is a tagged union of the contract shapes. Exactly one variant
// is set.
type ContractInfo struct {
	Single   *SingleContractInfo   `json:"singleContractInfo,omitempty"`
	Disjoint *DisjointContractInfo `json:"disjointContractInfo,omitempty"`
}

// Decode reads the contract info sub-type and its body.
func (c *ContractInfo) Decode(r *codec.Reader) error {
	variant, err := r.ReadBigSize()
	if err != nil {
		return err
	}

	if variant != contractInfoSingle && variant != contractInfoDisjoint {
		return fmt.Errorf("contract info: %w",
			&codec.UnknownRecordError{Type: variant})
	}

	total, err := r.ReadUint64()
	if err != nil {
		return err
	}

	if variant == contractInfoSingle {
		c.Single = &SingleContractInfo{
			TotalCollateral: btcutil.Amount(total),
		}

		return c.Single.ContractInfo.decode(r)
	}

	c.Disjoint = &DisjointContractInfo{
		TotalCollateral: btcutil.Amount(total),
	}

	n, err := r.ReadBigSizeLen()
	if err != nil {
		return err
	}
	c.Disjoint.ContractInfos = make([]ContractOraclePair, n)
	for i := range c.Disjoint.ContractInfos {
		if err := c.Disjoint.ContractInfos[i].decode(r); err != nil {
			return fmt.Errorf("contract info %d: %w", i, err)
		}
	}

	return nil
}

// Encode writes the contract info sub-type and its body.
func (c *ContractInfo) Encode(w *bytes.Buffer) error {
	switch {
	case c.Single != nil:
		if err := codec.WriteBigSize(w, contractInfoSingle); err != nil {
			return err
		}
		err := codec.WriteUint64(w, uint64(c.Single.TotalCollateral))
		if err != nil {
			return err
		}

		return c.Single.ContractInfo.encode(w)

	case c.Disjoint != nil:
		if err := codec.WriteBigSize(w, contractInfoDisjoint); err != nil {
			return err
		}
		err := codec.WriteUint64(w, uint64(c.Disjoint.TotalCollateral))
		if err != nil {
			return err
		}

		pairs := c.Disjoint.ContractInfos
		if err := codec.WriteBigSize(w, uint64(len(pairs))); err != nil {
			return err
		}
		for i := range pairs {
			if err := pairs[i].encode(w); err != nil {
				return err
			}
		}

		return nil

	default:
		return codec.Invalid("empty contract info")
	}
}

// TotalCollateral returns the combined collateral of both parties.
func (c *ContractInfo) TotalCollateral() btcutil.Amount {
	switch {
	case c.Single != nil:
		return c.Single.TotalCollateral
	case c.Disjoint != nil:
		return c.Disjoint.TotalCollateral
	default:
		return 0
	}
}

// SetTotalCollateral overwrites the total collateral of the set variant.
func (c *ContractInfo) SetTotalCollateral(total btcutil.Amount) {
	switch {
	case c.Single != nil:
		c.Single.TotalCollateral = total
	case c.Disjoint != nil:
		c.Disjoint.TotalCollateral = total
	}
}

// Pairs returns every descriptor/oracle pair of the contract.
func (c *ContractInfo) Pairs() []ContractOraclePair {
	switch {
	case c.Single != nil:
		return []ContractOraclePair{c.Single.ContractInfo}
	case c.Disjoint != nil:
		return c.Disjoint.ContractInfos
	default:
		return nil
	}
}

// Validate checks that exactly one variant is set, that the total
// collateral is positive and that every pair is sound.
func (c *ContractInfo) Validate() error {
	if c.Single != nil && c.Disjoint != nil {
		return codec.Invalid("contract info has two variants")
	}
	if c.Single == nil && c.Disjoint == nil {
		return codec.Invalid("empty contract info")
	}

	total := c.TotalCollateral()
	if total <= 0 {
		return codec.Invalid("total collateral %v must be positive",
			total)
	}

	pairs := c.Pairs()
	if len(pairs) == 0 {
		return codec.Invalid("disjoint contract info has no contracts")
	}
	for i := range pairs {
		if err := pairs[i].Validate(total); err != nil {
			return fmt.Errorf("contract info %d: %w", i, err)
		}
	}

	return nil
}
