package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
)

const (
	negotiationFieldsSingle   uint64 = 0
	negotiationFieldsDisjoint uint64 = 1
)

// NegotiationFields carries the accepter's counter proposal for the rounding
// of payouts. Exactly one variant is set.
type NegotiationFields struct {
	Single   *SingleNegotiationFields   `json:"singleNegotiationFields,omitempty"`
	Disjoint *DisjointNegotiationFields `json:"disjointNegotiationFields,omitempty"`
}

// SingleNegotiationFields applies to a single contract.
type SingleNegotiationFields struct {
	RoundingIntervals RoundingIntervals `json:"roundingIntervals"`
}

// DisjointNegotiationFields holds one set of fields per disjoint contract.
type DisjointNegotiationFields struct {
	NegotiationFields []NegotiationFields `json:"negotiationFields"`
}

// Decode reads the negotiation fields sub-type and its body.
func (n *NegotiationFields) Decode(r *codec.Reader) error {
	variant, err := r.ReadBigSize()
	if err != nil {
		return err
	}

	switch variant {
	case negotiationFieldsSingle:
		n.Single = &SingleNegotiationFields{}
		return n.Single.RoundingIntervals.Decode(r)

	case negotiationFieldsDisjoint:
		n.Disjoint = &DisjointNegotiationFields{}

		count, err := r.ReadBigSizeLen()
		if err != nil {
			return err
		}
		n.Disjoint.NegotiationFields = make([]NegotiationFields, count)
		for i := range n.Disjoint.NegotiationFields {
			err := n.Disjoint.NegotiationFields[i].Decode(r)
			if err != nil {
				return err
			}
		}

		return nil

	default:
		return fmt.Errorf("negotiation fields: %w",
			&codec.UnknownRecordError{Type: variant})
	}
}

// Encode writes the negotiation fields sub-type and its body.
func (n *NegotiationFields) Encode(w *bytes.Buffer) error {
	switch {
	case n.Single != nil:
		err := codec.WriteBigSize(w, negotiationFieldsSingle)
		if err != nil {
			return err
		}

		return n.Single.RoundingIntervals.Encode(w)

	case n.Disjoint != nil:
		err := codec.WriteBigSize(w, negotiationFieldsDisjoint)
		if err != nil {
			return err
		}

		fields := n.Disjoint.NegotiationFields
		if err := codec.WriteBigSize(w, uint64(len(fields))); err != nil {
			return err
		}
		for i := range fields {
			if err := fields[i].Encode(w); err != nil {
				return err
			}
		}

		return nil

	default:
		return codec.Invalid("empty negotiation fields")
	}
}

// Validate checks that exactly one variant is set and that every rounding
// interval set it holds is sound.
func (n *NegotiationFields) Validate() error {
	switch {
	case n.Single != nil && n.Disjoint != nil:
		return codec.Invalid("negotiation fields have two variants")

	case n.Single != nil:
		return n.Single.RoundingIntervals.Validate()

	case n.Disjoint != nil:
		for i := range n.Disjoint.NegotiationFields {
			err := n.Disjoint.NegotiationFields[i].Validate()
			if err != nil {
				return fmt.Errorf("negotiation fields %d: %w", i,
					err)
			}
		}

		return nil

	default:
		return codec.Invalid("empty negotiation fields")
	}
}
