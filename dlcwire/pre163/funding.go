package pre163

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/tlvframe"
)

// decodeFundingInput reads a framed funding input. Its previous transaction
// carries a u16 length prefix.
func decodeFundingInput(r *codec.Reader, in *dlcwire.FundingInput) error {
	return tlvframe.ReadExpected(r, dlcwire.TypeFundingInput, in.DecodeU16)
}

func encodeFundingInput(w *bytes.Buffer, in *dlcwire.FundingInput) error {
	return tlvframe.Write(w, dlcwire.TypeFundingInput, in.EncodeU16)
}

// readFundingInputs reads a u16 count followed by that many framed inputs.
func readFundingInputs(r *codec.Reader) ([]dlcwire.FundingInput, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	inputs := make([]dlcwire.FundingInput, n)
	for i := range inputs {
		if err := decodeFundingInput(r, &inputs[i]); err != nil {
			return nil, fmt.Errorf("funding input %d: %w", i, err)
		}
	}

	return inputs, nil
}

func writeFundingInputs(w *bytes.Buffer,
	inputs []dlcwire.FundingInput) error {

	if len(inputs) > 0xffff {
		return codec.ErrLengthOverflow
	}
	if err := codec.WriteUint16(w, uint16(len(inputs))); err != nil {
		return err
	}
	for i := range inputs {
		if err := encodeFundingInput(w, &inputs[i]); err != nil {
			return err
		}
	}

	return nil
}

// decodeCetSignatures reads the framed adaptor signatures. The body is laid
// out as in the current schema.
func decodeCetSignatures(r *codec.Reader,
	sigs *dlcwire.CetAdaptorSignatures) error {

	return tlvframe.ReadExpected(r, dlcwire.TypeCetAdaptorSignatures,
		sigs.Decode)
}

func encodeCetSignatures(w *bytes.Buffer,
	sigs *dlcwire.CetAdaptorSignatures) error {

	return tlvframe.Write(w, dlcwire.TypeCetAdaptorSignatures, sigs.Encode)
}

// FundingSignatures is the framed witness list of the older schema, where
// every count and length is a u16.
type FundingSignatures struct {
	Witnesses []wire.TxWitness
}

// MarshalJSON encodes the witnesses in the same shape as the current
// schema.
func (f FundingSignatures) MarshalJSON() ([]byte, error) {
	return json.Marshal(dlcwire.FundingSignatures{Witnesses: f.Witnesses})
}

// UnmarshalJSON decodes the output of MarshalJSON.
func (f *FundingSignatures) UnmarshalJSON(b []byte) error {
	var sigs dlcwire.FundingSignatures
	if err := json.Unmarshal(b, &sigs); err != nil {
		return err
	}
	f.Witnesses = sigs.Witnesses

	return nil
}

// Decode reads framed funding signatures.
func (f *FundingSignatures) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, dlcwire.TypeFundingSignatures,
		func(body *codec.Reader) error {
			n, err := body.ReadUint16()
			if err != nil {
				return err
			}

			f.Witnesses = make([]wire.TxWitness, n)
			for i := range f.Witnesses {
				elems, err := body.ReadUint16()
				if err != nil {
					return err
				}

				f.Witnesses[i] = make(wire.TxWitness, elems)
				for k := range f.Witnesses[i] {
					f.Witnesses[i][k], err = body.ReadU16Bytes()
					if err != nil {
						return err
					}
				}
			}

			return nil
		},
	)
}

// Encode writes framed funding signatures.
func (f *FundingSignatures) Encode(w *bytes.Buffer) error {
	if len(f.Witnesses) > 0xffff {
		return codec.ErrLengthOverflow
	}

	return tlvframe.Write(w, dlcwire.TypeFundingSignatures,
		func(body *bytes.Buffer) error {
			n := uint16(len(f.Witnesses))
			if err := codec.WriteUint16(body, n); err != nil {
				return err
			}
			for _, witness := range f.Witnesses {
				if len(witness) > 0xffff {
					return codec.ErrLengthOverflow
				}
				err := codec.WriteUint16(body, uint16(len(witness)))
				if err != nil {
					return err
				}
				for _, elem := range witness {
					err := codec.WriteU16Bytes(body, elem)
					if err != nil {
						return err
					}
				}
			}

			return nil
		},
	)
}
