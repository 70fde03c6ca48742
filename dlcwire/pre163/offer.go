package pre163

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
)

// DlcOffer is the offer message of the older schema. It has no protocol
// version and no temporary contract id; the latter is derived from the
// message itself by TemporaryContractID.
type DlcOffer struct {
	ContractFlags      uint8                  `json:"contractFlags"`
	ChainHash          dlcwire.ChainHash      `json:"chainHash"`
	ContractInfo       ContractInfo           `json:"contractInfo"`
	FundingPubKey      dlcwire.PubKey         `json:"fundingPubkey"`
	PayoutSPK          dlcwire.HexBytes       `json:"payoutSpk"`
	PayoutSerialID     uint64                 `json:"payoutSerialId"`
	OfferCollateral    btcutil.Amount         `json:"offerCollateral"`
	FundingInputs      []dlcwire.FundingInput `json:"fundingInputs"`
	ChangeSPK          dlcwire.HexBytes       `json:"changeSpk"`
	ChangeSerialID     uint64                 `json:"changeSerialId"`
	FundOutputSerialID uint64                 `json:"fundOutputSerialId"`
	FeeRatePerVb       uint64                 `json:"feeRatePerVb"`
	CetLocktime        uint32                 `json:"cetLocktime"`
	RefundLocktime     uint32                 `json:"refundLocktime"`

	// ExtraData holds the optional order records that may trail the
	// offer, kept raw.
	ExtraData dlcwire.ExtraOpaqueData `json:"tlvs,omitempty"`
}

// A compile time check to ensure DlcOffer implements the dlcwire.Message
// interface.
var _ dlcwire.Message = (*DlcOffer)(nil)

// Decode deserializes a pre-163 offer, including its type tag.
//
// This is part of the dlcwire.Message interface.
func (o *DlcOffer) Decode(r *codec.Reader) error {
	if err := readMsgType(r, dlcwire.MsgDlcOffer); err != nil {
		return err
	}

	var err error
	if o.ContractFlags, err = r.ReadUint8(); err != nil {
		return err
	}
	if err := r.ReadFixed(o.ChainHash[:]); err != nil {
		return err
	}
	if err := o.ContractInfo.Decode(r); err != nil {
		return err
	}
	if err := r.ReadFixed(o.FundingPubKey[:]); err != nil {
		return err
	}
	if o.PayoutSPK, err = r.ReadU16Bytes(); err != nil {
		return err
	}
	if o.PayoutSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	collateral, err := r.ReadUint64()
	if err != nil {
		return err
	}
	o.OfferCollateral = btcutil.Amount(collateral)

	if o.FundingInputs, err = readFundingInputs(r); err != nil {
		return err
	}
	if o.ChangeSPK, err = r.ReadU16Bytes(); err != nil {
		return err
	}
	if o.ChangeSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	if o.FundOutputSerialID, err = r.ReadUint64(); err != nil {
		return err
	}
	if o.FeeRatePerVb, err = r.ReadUint64(); err != nil {
		return err
	}
	if o.CetLocktime, err = r.ReadUint32(); err != nil {
		return err
	}
	if o.RefundLocktime, err = r.ReadUint32(); err != nil {
		return err
	}

	o.ExtraData, err = dlcwire.DecodeExtraData(r)

	return err
}

// Encode serializes the offer in the older layout.
//
// This is part of the dlcwire.Message interface.
func (o *DlcOffer) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(o.MsgType())); err != nil {
		return err
	}
	if err := codec.WriteUint8(w, o.ContractFlags); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, o.ChainHash[:]); err != nil {
		return err
	}
	if err := o.ContractInfo.Encode(w); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, o.FundingPubKey[:]); err != nil {
		return err
	}
	if err := codec.WriteU16Bytes(w, o.PayoutSPK); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, o.PayoutSerialID); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, uint64(o.OfferCollateral)); err != nil {
		return err
	}
	if err := writeFundingInputs(w, o.FundingInputs); err != nil {
		return err
	}
	if err := codec.WriteU16Bytes(w, o.ChangeSPK); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, o.ChangeSerialID); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, o.FundOutputSerialID); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, o.FeeRatePerVb); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, o.CetLocktime); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, o.RefundLocktime); err != nil {
		return err
	}

	return o.ExtraData.Encode(w)
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the dlcwire.Message interface.
func (o *DlcOffer) MsgType() dlcwire.MessageType {
	return dlcwire.MsgDlcOffer
}

// Validate upgrades the offer and validates the result.
//
// This is part of the dlcwire.Message interface.
func (o *DlcOffer) Validate() error {
	tempID, err := TemporaryContractID(o)
	if err != nil {
		return err
	}

	offer, err := OfferFromPre163(o, tempID)
	if err != nil {
		return err
	}

	return offer.Validate()
}

// TemporaryContractID derives the temporary contract id of an older offer:
// the sha256 of its encoding.
func TemporaryContractID(o *DlcOffer) (dlcwire.ContractID, error) {
	b, err := dlcwire.Serialize(o)
	if err != nil {
		return dlcwire.ContractID{}, err
	}

	return dlcwire.ContractID(chainhash.HashH(b)), nil
}
