package pre163

import (
	"bytes"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
)

// DlcSign is the sign message of the older schema.
type DlcSign struct {
	ContractID           dlcwire.ContractID           `json:"contractId"`
	CetAdaptorSignatures dlcwire.CetAdaptorSignatures `json:"cetAdaptorSignatures"`
	RefundSignature      dlcwire.Sig                  `json:"refundSignature"`
	FundingSignatures    FundingSignatures            `json:"fundingSignatures"`
}

// A compile time check to ensure DlcSign implements the dlcwire.Message
// interface.
var _ dlcwire.Message = (*DlcSign)(nil)

// Decode deserializes a pre-163 sign message, including its type tag.
//
// This is part of the dlcwire.Message interface.
func (s *DlcSign) Decode(r *codec.Reader) error {
	if err := readMsgType(r, dlcwire.MsgDlcSign); err != nil {
		return err
	}

	if err := r.ReadFixed(s.ContractID[:]); err != nil {
		return err
	}
	err := decodeCetSignatures(r, &s.CetAdaptorSignatures)
	if err != nil {
		return err
	}
	if err := r.ReadFixed(s.RefundSignature[:]); err != nil {
		return err
	}

	return s.FundingSignatures.Decode(r)
}

// Encode serializes the sign message in the older layout.
//
// This is part of the dlcwire.Message interface.
func (s *DlcSign) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(s.MsgType())); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, s.ContractID[:]); err != nil {
		return err
	}
	err := encodeCetSignatures(w, &s.CetAdaptorSignatures)
	if err != nil {
		return err
	}
	if err := codec.WriteBytes(w, s.RefundSignature[:]); err != nil {
		return err
	}

	return s.FundingSignatures.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the dlcwire.Message interface.
func (s *DlcSign) MsgType() dlcwire.MessageType {
	return dlcwire.MsgDlcSign
}

// Validate upgrades the sign message and validates the result.
//
// This is part of the dlcwire.Message interface.
func (s *DlcSign) Validate() error {
	return SignFromPre163(s).Validate()
}
