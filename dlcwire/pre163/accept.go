package pre163

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
)

// DlcAccept is the accept message of the older schema. Unlike its
// successor it always ends in a negotiation record.
type DlcAccept struct {
	TemporaryContractID  dlcwire.ContractID           `json:"temporaryContractId"`
	AcceptCollateral     btcutil.Amount               `json:"acceptCollateral"`
	FundingPubKey        dlcwire.PubKey               `json:"fundingPubkey"`
	PayoutSPK            dlcwire.HexBytes             `json:"payoutSpk"`
	PayoutSerialID       uint64                       `json:"payoutSerialId"`
	FundingInputs        []dlcwire.FundingInput       `json:"fundingInputs"`
	ChangeSPK            dlcwire.HexBytes             `json:"changeSpk"`
	ChangeSerialID       uint64                       `json:"changeSerialId"`
	CetAdaptorSignatures dlcwire.CetAdaptorSignatures `json:"cetAdaptorSignatures"`
	RefundSignature      dlcwire.Sig                  `json:"refundSignature"`
	NegotiationFields    NegotiationFields            `json:"negotiationFields"`
}

// A compile time check to ensure DlcAccept implements the dlcwire.Message
// interface.
var _ dlcwire.Message = (*DlcAccept)(nil)

// Decode deserializes a pre-163 accept, including its type tag.
//
// This is part of the dlcwire.Message interface.
func (a *DlcAccept) Decode(r *codec.Reader) error {
	if err := readMsgType(r, dlcwire.MsgDlcAccept); err != nil {
		return err
	}

	if err := r.ReadFixed(a.TemporaryContractID[:]); err != nil {
		return err
	}
	collateral, err := r.ReadUint64()
	if err != nil {
		return err
	}
	a.AcceptCollateral = btcutil.Amount(collateral)

	if err := r.ReadFixed(a.FundingPubKey[:]); err != nil {
		return err
	}
	if a.PayoutSPK, err = r.ReadU16Bytes(); err != nil {
		return err
	}
	if a.PayoutSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	if a.FundingInputs, err = readFundingInputs(r); err != nil {
		return err
	}
	if a.ChangeSPK, err = r.ReadU16Bytes(); err != nil {
		return err
	}
	if a.ChangeSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	err = decodeCetSignatures(r, &a.CetAdaptorSignatures)
	if err != nil {
		return err
	}
	if err := r.ReadFixed(a.RefundSignature[:]); err != nil {
		return err
	}

	return a.NegotiationFields.Decode(r)
}

// Encode serializes the accept in the older layout.
//
// This is part of the dlcwire.Message interface.
func (a *DlcAccept) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(a.MsgType())); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, a.TemporaryContractID[:]); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, uint64(a.AcceptCollateral)); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, a.FundingPubKey[:]); err != nil {
		return err
	}
	if err := codec.WriteU16Bytes(w, a.PayoutSPK); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, a.PayoutSerialID); err != nil {
		return err
	}
	if err := writeFundingInputs(w, a.FundingInputs); err != nil {
		return err
	}
	if err := codec.WriteU16Bytes(w, a.ChangeSPK); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, a.ChangeSerialID); err != nil {
		return err
	}
	err := encodeCetSignatures(w, &a.CetAdaptorSignatures)
	if err != nil {
		return err
	}
	if err := codec.WriteBytes(w, a.RefundSignature[:]); err != nil {
		return err
	}

	return a.NegotiationFields.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the dlcwire.Message interface.
func (a *DlcAccept) MsgType() dlcwire.MessageType {
	return dlcwire.MsgDlcAccept
}

// Validate upgrades the accept and validates the result.
//
// This is part of the dlcwire.Message interface.
func (a *DlcAccept) Validate() error {
	accept, err := AcceptFromPre163(a)
	if err != nil {
		return err
	}

	return accept.Validate()
}
