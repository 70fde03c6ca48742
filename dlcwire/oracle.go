package dlcwire

import (
	"bytes"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/tlvframe"
)

// OracleAnnouncement is an oracle's signed commitment to attest to a future
// event. It is framed as a TLV record in both schema generations.
type OracleAnnouncement struct {
	AnnouncementSignature Sig         `json:"announcementSignature"`
	OraclePublicKey       XOnlyPubKey `json:"oraclePublicKey"`
	OracleEvent           OracleEvent `json:"oracleEvent"`
}

// Decode reads a framed oracle announcement.
func (o *OracleAnnouncement) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, TypeOracleAnnouncement,
		func(body *codec.Reader) error {
			err := body.ReadFixed(o.AnnouncementSignature[:])
			if err != nil {
				return err
			}
			err = body.ReadFixed(o.OraclePublicKey[:])
			if err != nil {
				return err
			}

			return o.OracleEvent.Decode(body)
		},
	)
}

// Encode writes a framed oracle announcement.
func (o *OracleAnnouncement) Encode(w *bytes.Buffer) error {
	return tlvframe.Write(w, TypeOracleAnnouncement,
		func(body *bytes.Buffer) error {
			err := codec.WriteBytes(body, o.AnnouncementSignature[:])
			if err != nil {
				return err
			}
			err = codec.WriteBytes(body, o.OraclePublicKey[:])
			if err != nil {
				return err
			}

			return o.OracleEvent.Encode(body)
		},
	)
}

// Validate checks the announced event.
func (o *OracleAnnouncement) Validate() error {
	return o.OracleEvent.Validate()
}

// OracleEvent describes the event an oracle will attest to.
type OracleEvent struct {
	OracleNonces       []XOnlyPubKey   `json:"oracleNonces"`
	EventMaturityEpoch uint32          `json:"eventMaturityEpoch"`
	EventDescriptor    EventDescriptor `json:"eventDescriptor"`
	EventID            string          `json:"eventId"`
}

// Decode reads a framed oracle event.
func (e *OracleEvent) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, TypeOracleEvent,
		func(body *codec.Reader) error {
			n, err := body.ReadUint16()
			if err != nil {
				return err
			}
			if int(n)*32 > body.Len() {
				return codec.ErrTruncatedInput
			}

			e.OracleNonces = make([]XOnlyPubKey, n)
			for i := range e.OracleNonces {
				err := body.ReadFixed(e.OracleNonces[i][:])
				if err != nil {
					return err
				}
			}

			e.EventMaturityEpoch, err = body.ReadUint32()
			if err != nil {
				return err
			}
			if err := e.EventDescriptor.Decode(body); err != nil {
				return err
			}

			id, err := body.ReadVarBytes()
			if err != nil {
				return err
			}
			e.EventID = string(id)

			return nil
		},
	)
}

// Encode writes a framed oracle event.
func (e *OracleEvent) Encode(w *bytes.Buffer) error {
	if len(e.OracleNonces) > 0xffff {
		return codec.ErrLengthOverflow
	}

	return tlvframe.Write(w, TypeOracleEvent, func(body *bytes.Buffer) error {
		err := codec.WriteUint16(body, uint16(len(e.OracleNonces)))
		if err != nil {
			return err
		}
		for _, nonce := range e.OracleNonces {
			if err := codec.WriteBytes(body, nonce[:]); err != nil {
				return err
			}
		}
		if err := codec.WriteUint32(body, e.EventMaturityEpoch); err != nil {
			return err
		}
		if err := e.EventDescriptor.Encode(body); err != nil {
			return err
		}

		return codec.WriteVarBytes(body, []byte(e.EventID))
	})
}

// Validate checks that the event commits to at least one nonce and that its
// descriptor is sound.
func (e *OracleEvent) Validate() error {
	if len(e.OracleNonces) == 0 {
		return codec.Invalid("oracle event %q has no nonces", e.EventID)
	}

	return e.EventDescriptor.Validate()
}

// EventDescriptor is a tagged union of the kinds of event an oracle can
// announce. Exactly one variant is set.
type EventDescriptor struct {
	Enum               *EnumEventDescriptor               `json:"enumEvent,omitempty"`
	DigitDecomposition *DigitDecompositionEventDescriptor `json:"digitDecompositionEvent,omitempty"`
}

// Decode reads whichever framed descriptor comes next.
func (d *EventDescriptor) Decode(r *codec.Reader) error {
	typ, err := tlvframe.PeekType(r)
	if err != nil {
		return err
	}

	switch typ {
	case TypeEnumEventDescriptor:
		d.Enum = &EnumEventDescriptor{}
		return d.Enum.Decode(r)

	case TypeDigitDecompositionEvent:
		d.DigitDecomposition = &DigitDecompositionEventDescriptor{}
		return d.DigitDecomposition.Decode(r)

	default:
		return &codec.UnknownRecordError{Type: uint64(typ)}
	}
}

// Encode writes the set variant.
func (d *EventDescriptor) Encode(w *bytes.Buffer) error {
	switch {
	case d.Enum != nil:
		return d.Enum.Encode(w)
	case d.DigitDecomposition != nil:
		return d.DigitDecomposition.Encode(w)
	default:
		return codec.Invalid("empty event descriptor")
	}
}

// Validate checks that exactly one variant is set and that it is sound.
func (d *EventDescriptor) Validate() error {
	switch {
	case d.Enum != nil && d.DigitDecomposition != nil:
		return codec.Invalid("event descriptor has two variants")
	case d.Enum != nil:
		return d.Enum.Validate()
	case d.DigitDecomposition != nil:
		return d.DigitDecomposition.Validate()
	default:
		return codec.Invalid("empty event descriptor")
	}
}

// EnumEventDescriptor lists the outcomes of an event with a finite set of
// results.
type EnumEventDescriptor struct {
	Outcomes []string `json:"outcomes"`
}

// Decode reads a framed enum event descriptor.
func (d *EnumEventDescriptor) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, TypeEnumEventDescriptor,
		func(body *codec.Reader) error {
			n, err := body.ReadUint16()
			if err != nil {
				return err
			}
			if int(n) > body.Len() {
				return codec.ErrTruncatedInput
			}

			d.Outcomes = make([]string, n)
			for i := range d.Outcomes {
				outcome, err := body.ReadVarBytes()
				if err != nil {
					return err
				}
				d.Outcomes[i] = string(outcome)
			}

			return nil
		},
	)
}

// Encode writes a framed enum event descriptor.
func (d *EnumEventDescriptor) Encode(w *bytes.Buffer) error {
	if len(d.Outcomes) > 0xffff {
		return codec.ErrLengthOverflow
	}

	return tlvframe.Write(w, TypeEnumEventDescriptor,
		func(body *bytes.Buffer) error {
			err := codec.WriteUint16(body, uint16(len(d.Outcomes)))
			if err != nil {
				return err
			}
			for _, outcome := range d.Outcomes {
				err := codec.WriteVarBytes(body, []byte(outcome))
				if err != nil {
					return err
				}
			}

			return nil
		},
	)
}

// Validate checks that there is at least one outcome and no duplicates.
func (d *EnumEventDescriptor) Validate() error {
	if len(d.Outcomes) == 0 {
		return codec.Invalid("enum event has no outcomes")
	}

	seen := make(map[string]struct{}, len(d.Outcomes))
	for _, outcome := range d.Outcomes {
		if _, ok := seen[outcome]; ok {
			return codec.Invalid("duplicate event outcome %q", outcome)
		}
		seen[outcome] = struct{}{}
	}

	return nil
}

// DigitDecompositionEventDescriptor describes a numeric event whose outcome
// is attested digit by digit.
type DigitDecompositionEventDescriptor struct {
	Base      uint16 `json:"base"`
	IsSigned  bool   `json:"isSigned"`
	Unit      string `json:"unit"`
	Precision int32  `json:"precision"`
	NbDigits  uint16 `json:"nbDigits"`
}

// Decode reads a framed digit decomposition descriptor.
func (d *DigitDecompositionEventDescriptor) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, TypeDigitDecompositionEvent,
		func(body *codec.Reader) error {
			var err error
			if d.Base, err = body.ReadUint16(); err != nil {
				return err
			}
			if d.IsSigned, err = body.ReadBool(); err != nil {
				return err
			}

			unit, err := body.ReadVarBytes()
			if err != nil {
				return err
			}
			d.Unit = string(unit)

			if d.Precision, err = body.ReadInt32(); err != nil {
				return err
			}
			d.NbDigits, err = body.ReadUint16()

			return err
		},
	)
}

// Encode writes a framed digit decomposition descriptor.
func (d *DigitDecompositionEventDescriptor) Encode(w *bytes.Buffer) error {
	return tlvframe.Write(w, TypeDigitDecompositionEvent,
		func(body *bytes.Buffer) error {
			if err := codec.WriteUint16(body, d.Base); err != nil {
				return err
			}
			if err := codec.WriteBool(body, d.IsSigned); err != nil {
				return err
			}
			err := codec.WriteVarBytes(body, []byte(d.Unit))
			if err != nil {
				return err
			}
			if err := codec.WriteInt32(body, d.Precision); err != nil {
				return err
			}

			return codec.WriteUint16(body, d.NbDigits)
		},
	)
}

// Validate checks the base and digit count.
func (d *DigitDecompositionEventDescriptor) Validate() error {
	if d.Base < 2 {
		return codec.Invalid("digit decomposition base %d", d.Base)
	}
	if d.NbDigits == 0 {
		return codec.Invalid("digit decomposition has no digits")
	}

	return nil
}

// EventOutcomes returns the outcomes of an enum event, or nil for any other
// kind of event.
func (o *OracleAnnouncement) EventOutcomes() []string {
	if o.OracleEvent.EventDescriptor.Enum == nil {
		return nil
	}

	return o.OracleEvent.EventDescriptor.Enum.Outcomes
}
