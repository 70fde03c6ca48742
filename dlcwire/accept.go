package dlcwire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/amount"
	"github.com/dlcgo/dlcd/codec"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// DlcAccept answers a DlcOffer. The accepter commits its own collateral and
// funding inputs and hands over its adaptor signatures for every contract
// execution transaction, plus a signature on the refund transaction.
type DlcAccept struct {
	ProtocolVersion     uint32     `json:"protocolVersion"`
	TemporaryContractID ContractID `json:"temporaryContractId"`

	AcceptCollateral btcutil.Amount `json:"acceptCollateral"`
	FundingPubKey    PubKey         `json:"fundingPubkey"`
	PayoutSPK        HexBytes       `json:"payoutSpk"`
	PayoutSerialID   uint64         `json:"payoutSerialId"`
	FundingInputs    []FundingInput `json:"fundingInputs"`
	ChangeSPK        HexBytes       `json:"changeSpk"`
	ChangeSerialID   uint64         `json:"changeSerialId"`

	CetAdaptorSignatures CetAdaptorSignatures `json:"cetAdaptorSignatures"`
	RefundSignature      Sig                  `json:"refundSignature"`

	// NegotiationFields is set when the accepter asks for coarser
	// rounding than the offer proposed.
	NegotiationFields fn.Option[NegotiationFields] `json:"-"`

	// ExtraData is the trailing TLV stream.
	ExtraData ExtraOpaqueData `json:"tlvs,omitempty"`
}

// A compile time check to ensure DlcAccept implements the Message interface.
var _ Message = (*DlcAccept)(nil)

// acceptAlias drops the JSON methods of DlcAccept so the fields can be
// marshalled by the default encoder.
type acceptAlias DlcAccept

// MarshalJSON encodes the message with the negotiation fields omitted when
// absent.
func (a DlcAccept) MarshalJSON() ([]byte, error) {
	j := struct {
		acceptAlias
		NegotiationFields *NegotiationFields `json:"negotiationFields,omitempty"`
	}{
		acceptAlias: acceptAlias(a),
	}
	a.NegotiationFields.WhenSome(func(n NegotiationFields) {
		j.NegotiationFields = &n
	})

	return json.Marshal(j)
}

// UnmarshalJSON decodes the output of MarshalJSON.
func (a *DlcAccept) UnmarshalJSON(b []byte) error {
	j := struct {
		*acceptAlias
		NegotiationFields *NegotiationFields `json:"negotiationFields"`
	}{
		acceptAlias: (*acceptAlias)(a),
	}
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}

	a.NegotiationFields = fn.None[NegotiationFields]()
	if j.NegotiationFields != nil {
		a.NegotiationFields = fn.Some(*j.NegotiationFields)
	}

	return nil
}

// Decode deserializes a DlcAccept, including its type tag.
//
// This is part of the Message interface.
func (a *DlcAccept) Decode(r *codec.Reader) error {
	if err := readMsgType(r, MsgDlcAccept); err != nil {
		return err
	}

	var err error
	if a.ProtocolVersion, err = r.ReadUint32(); err != nil {
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
	if err := a.CetAdaptorSignatures.Decode(r); err != nil {
		return fmt.Errorf("cet adaptor signatures: %w", err)
	}
	if err := r.ReadFixed(a.RefundSignature[:]); err != nil {
		return err
	}

	hasFields, err := r.ReadBool()
	if err != nil {
		return err
	}
	a.NegotiationFields = fn.None[NegotiationFields]()
	if hasFields {
		var fields NegotiationFields
		if err := fields.Decode(r); err != nil {
			return err
		}
		a.NegotiationFields = fn.Some(fields)
	}

	a.ExtraData, err = DecodeExtraData(r)

	return err
}

// Encode serializes the target DlcAccept into the passed buffer.
//
// This is part of the Message interface.
func (a *DlcAccept) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(MsgDlcAccept)); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, a.ProtocolVersion); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, a.TemporaryContractID[:]); err != nil {
		return err
	}
	err := codec.WriteUint64(w, uint64(a.AcceptCollateral))
	if err != nil {
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
	if err := a.CetAdaptorSignatures.Encode(w); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, a.RefundSignature[:]); err != nil {
		return err
	}

	err = codec.WriteBool(w, a.NegotiationFields.IsSome())
	if err != nil {
		return err
	}
	err = fn.MapOptionZ(
		a.NegotiationFields,
		func(fields NegotiationFields) error {
			return fields.Encode(w)
		},
	)
	if err != nil {
		return err
	}

	return a.ExtraData.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the Message interface.
func (a *DlcAccept) MsgType() MessageType {
	return MsgDlcAccept
}

// Validate checks the accepter's keys, scripts and inputs.
//
// This is part of the Message interface.
func (a *DlcAccept) Validate() error {
	if err := checkProtocolVersion(a.ProtocolVersion); err != nil {
		return err
	}
	if err := checkFundingPubKey(a.FundingPubKey); err != nil {
		return err
	}
	if a.AcceptCollateral < 0 {
		return codec.Invalid("negative accept collateral %v",
			a.AcceptCollateral)
	}
	if err := checkStandardScript("payout spk", a.PayoutSPK); err != nil {
		return err
	}
	if err := checkStandardScript("change spk", a.ChangeSPK); err != nil {
		return err
	}
	if err := checkUniqueSerialIDs(a.FundingInputs); err != nil {
		return err
	}
	for i := range a.FundingInputs {
		if err := a.FundingInputs[i].Validate(); err != nil {
			return err
		}
	}

	return fn.MapOptionZ(
		a.NegotiationFields,
		func(fields NegotiationFields) error {
			return fields.Validate()
		},
	)
}

// TotalFunding returns the combined value of the outputs spent by the
// accepter's funding inputs.
func (a *DlcAccept) TotalFunding() (*amount.Value, error) {
	return totalFunding(a.FundingInputs)
}
