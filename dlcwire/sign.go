package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
)

// DlcSign completes the negotiation. The offerer returns its own adaptor
// signatures, its refund signature and the witnesses for its funding
// inputs, after which either party can broadcast the funding transaction.
type DlcSign struct {
	ProtocolVersion uint32 `json:"protocolVersion"`

	// ContractID is the final id derived with ComputeContractID.
	ContractID ContractID `json:"contractId"`

	CetAdaptorSignatures CetAdaptorSignatures `json:"cetAdaptorSignatures"`
	RefundSignature      Sig                  `json:"refundSignature"`
	FundingSignatures    FundingSignatures    `json:"fundingSignatures"`

	// ExtraData is the trailing TLV stream.
	ExtraData ExtraOpaqueData `json:"tlvs,omitempty"`
}

// A compile time check to ensure DlcSign implements the Message interface.
var _ Message = (*DlcSign)(nil)

// Decode deserializes a DlcSign, including its type tag.
//
// This is part of the Message interface.
func (s *DlcSign) Decode(r *codec.Reader) error {
	if err := readMsgType(r, MsgDlcSign); err != nil {
		return err
	}

	var err error
	if s.ProtocolVersion, err = r.ReadUint32(); err != nil {
		return err
	}
	if err := r.ReadFixed(s.ContractID[:]); err != nil {
		return err
	}
	if err := s.CetAdaptorSignatures.Decode(r); err != nil {
		return fmt.Errorf("cet adaptor signatures: %w", err)
	}
	if err := r.ReadFixed(s.RefundSignature[:]); err != nil {
		return err
	}
	if err := s.FundingSignatures.Decode(r); err != nil {
		return fmt.Errorf("funding signatures: %w", err)
	}

	s.ExtraData, err = DecodeExtraData(r)

	return err
}

// Encode serializes the target DlcSign into the passed buffer.
//
// This is part of the Message interface.
func (s *DlcSign) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(MsgDlcSign)); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, s.ProtocolVersion); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, s.ContractID[:]); err != nil {
		return err
	}
	if err := s.CetAdaptorSignatures.Encode(w); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, s.RefundSignature[:]); err != nil {
		return err
	}
	if err := s.FundingSignatures.Encode(w); err != nil {
		return err
	}

	return s.ExtraData.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the Message interface.
func (s *DlcSign) MsgType() MessageType {
	return MsgDlcSign
}

// Validate checks the protocol version and the funding witnesses.
//
// This is part of the Message interface.
func (s *DlcSign) Validate() error {
	if err := checkProtocolVersion(s.ProtocolVersion); err != nil {
		return err
	}

	return s.FundingSignatures.Validate()
}
