package dlcwire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/dlcgo/dlcd/codec"
)

// CetAdaptorSignature is an adaptor signature for one contract execution
// transaction together with the proof that it was built correctly.
type CetAdaptorSignature struct {
	EncryptedSig AdaptorSig `json:"encryptedSig"`
	DleqProof    DleqProof  `json:"dleqProof"`
}

// CetAdaptorSignatures holds one adaptor signature per contract execution
// transaction, in outcome order.
type CetAdaptorSignatures struct {
	Sigs []CetAdaptorSignature `json:"ecdsaAdaptorSignatures"`
}

// Decode reads a BigSize count followed by the signatures.
func (c *CetAdaptorSignatures) Decode(r *codec.Reader) error {
	n, err := r.ReadBigSizeLen()
	if err != nil {
		return err
	}

	c.Sigs = make([]CetAdaptorSignature, n)
	for i := range c.Sigs {
		if err := r.ReadFixed(c.Sigs[i].EncryptedSig[:]); err != nil {
			return err
		}
		if err := r.ReadFixed(c.Sigs[i].DleqProof[:]); err != nil {
			return err
		}
	}

	return nil
}

// Encode writes a BigSize count followed by the signatures.
func (c *CetAdaptorSignatures) Encode(w *bytes.Buffer) error {
	if err := codec.WriteBigSize(w, uint64(len(c.Sigs))); err != nil {
		return err
	}
	for _, sig := range c.Sigs {
		if err := codec.WriteBytes(w, sig.EncryptedSig[:]); err != nil {
			return err
		}
		if err := codec.WriteBytes(w, sig.DleqProof[:]); err != nil {
			return err
		}
	}

	return nil
}

// FundingSignatures holds the witness for every funding input of the
// sender, in input order.
type FundingSignatures struct {
	Witnesses []wire.TxWitness
}

type witnessElementJSON struct {
	Witness HexBytes `json:"witness"`
}

type witnessJSON struct {
	WitnessElements []witnessElementJSON `json:"witnessElements"`
}

type fundingSignaturesJSON struct {
	FundingSignatures []witnessJSON `json:"fundingSignatures"`
}

// MarshalJSON encodes every witness element as a hex string.
func (f FundingSignatures) MarshalJSON() ([]byte, error) {
	j := fundingSignaturesJSON{
		FundingSignatures: make([]witnessJSON, len(f.Witnesses)),
	}
	for i, witness := range f.Witnesses {
		elems := make([]witnessElementJSON, len(witness))
		for k, elem := range witness {
			elems[k] = witnessElementJSON{Witness: elem}
		}
		j.FundingSignatures[i] = witnessJSON{WitnessElements: elems}
	}

	return json.Marshal(j)
}

// UnmarshalJSON decodes the output of MarshalJSON.
func (f *FundingSignatures) UnmarshalJSON(b []byte) error {
	var j fundingSignaturesJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}

	f.Witnesses = make([]wire.TxWitness, len(j.FundingSignatures))
	for i, witness := range j.FundingSignatures {
		f.Witnesses[i] = make(wire.TxWitness, len(witness.WitnessElements))
		for k, elem := range witness.WitnessElements {
			f.Witnesses[i][k] = elem.Witness
		}
	}

	return nil
}

// Decode reads a BigSize witness count, then for each witness a BigSize
// element count and BigSize length prefixed elements.
func (f *FundingSignatures) Decode(r *codec.Reader) error {
	n, err := r.ReadBigSizeLen()
	if err != nil {
		return err
	}

	f.Witnesses = make([]wire.TxWitness, n)
	for i := range f.Witnesses {
		elems, err := r.ReadBigSizeLen()
		if err != nil {
			return err
		}

		f.Witnesses[i] = make(wire.TxWitness, elems)
		for k := range f.Witnesses[i] {
			if f.Witnesses[i][k], err = r.ReadVarBytes(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Encode writes the witnesses with BigSize counts and lengths.
func (f *FundingSignatures) Encode(w *bytes.Buffer) error {
	if err := codec.WriteBigSize(w, uint64(len(f.Witnesses))); err != nil {
		return err
	}
	for _, witness := range f.Witnesses {
		err := codec.WriteBigSize(w, uint64(len(witness)))
		if err != nil {
			return err
		}
		for _, elem := range witness {
			if err := codec.WriteVarBytes(w, elem); err != nil {
				return err
			}
		}
	}

	return nil
}

// Validate checks that every witness stack has at least one element.
func (f *FundingSignatures) Validate() error {
	for i, witness := range f.Witnesses {
		if len(witness) == 0 {
			return fmt.Errorf("funding signature %d: %w", i,
				codec.Invalid("empty witness stack"))
		}
	}

	return nil
}
