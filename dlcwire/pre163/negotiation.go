package pre163

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/tlvframe"
)

// NegotiationFields is the framed negotiation record that ends an older
// accept message. It is always present; V0 stands for no request. Exactly
// one variant is set.
type NegotiationFields struct {
	V0 *NegotiationFieldsV0 `json:"negotiationFieldsV0,omitempty"`
	V1 *NegotiationFieldsV1 `json:"negotiationFieldsV1,omitempty"`
	V2 *NegotiationFieldsV2 `json:"negotiationFieldsV2,omitempty"`
}

// NegotiationFieldsV0 carries nothing.
type NegotiationFieldsV0 struct{}

// NegotiationFieldsV1 requests the given rounding for a single contract.
type NegotiationFieldsV1 struct {
	RoundingIntervals RoundingIntervals `json:"roundingIntervals"`
}

// NegotiationFieldsV2 holds one negotiation record per disjoint contract.
type NegotiationFieldsV2 struct {
	NegotiationFields []NegotiationFields `json:"negotiationFieldsList"`
}

// Decode reads whichever negotiation record comes next.
func (n *NegotiationFields) Decode(r *codec.Reader) error {
	typ, err := tlvframe.PeekType(r)
	if err != nil {
		return err
	}

	switch typ {
	case dlcwire.TypeNegotiationFieldsV0:
		n.V0 = &NegotiationFieldsV0{}

		return tlvframe.ReadExpected(r, typ, func(*codec.Reader) error {
			return nil
		})

	case dlcwire.TypeNegotiationFieldsV1:
		n.V1 = &NegotiationFieldsV1{}

		return tlvframe.ReadExpected(r, typ, n.V1.RoundingIntervals.Decode)

	case dlcwire.TypeNegotiationFieldsV2:
		n.V2 = &NegotiationFieldsV2{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			count, err := body.ReadBigSizeLen()
			if err != nil {
				return err
			}

			n.V2.NegotiationFields = make([]NegotiationFields, count)
			for i := range n.V2.NegotiationFields {
				err := n.V2.NegotiationFields[i].Decode(body)
				if err != nil {
					return fmt.Errorf("negotiation fields %d: %w",
						i, err)
				}
			}

			return nil
		})

	default:
		return fmt.Errorf("negotiation fields: %w",
			&codec.UnknownRecordError{Type: uint64(typ)})
	}
}

// Encode writes the set variant as a framed record.
func (n *NegotiationFields) Encode(w *bytes.Buffer) error {
	switch {
	case n.V0 != nil:
		return tlvframe.Write(w, dlcwire.TypeNegotiationFieldsV0,
			func(*bytes.Buffer) error {
				return nil
			},
		)

	case n.V1 != nil:
		return tlvframe.Write(w, dlcwire.TypeNegotiationFieldsV1,
			n.V1.RoundingIntervals.Encode)

	case n.V2 != nil:
		return tlvframe.Write(w, dlcwire.TypeNegotiationFieldsV2,
			func(body *bytes.Buffer) error {
				fields := n.V2.NegotiationFields
				err := codec.WriteBigSize(body, uint64(len(fields)))
				if err != nil {
					return err
				}
				for i := range fields {
					if err := fields[i].Encode(body); err != nil {
						return err
					}
				}

				return nil
			},
		)

	default:
		return codec.Invalid("empty negotiation fields")
	}
}
