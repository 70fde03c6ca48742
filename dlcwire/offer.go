package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/dlcgo/dlcd/amount"
	"github.com/dlcgo/dlcd/codec"
)

// DlcOffer is the first message of the negotiation. The offerer proposes the
// contract terms, commits to its funding inputs and names its payout and
// change outputs.
type DlcOffer struct {
	// ProtocolVersion must be ProtocolVersion.
	ProtocolVersion uint32 `json:"protocolVersion"`

	// ContractFlags is reserved and currently always zero.
	ContractFlags uint8 `json:"contractFlags"`

	// ChainHash identifies the chain the contract is funded on.
	ChainHash ChainHash `json:"chainHash"`

	// TemporaryContractID identifies the contract until the funding
	// transaction is known.
	TemporaryContractID ContractID `json:"temporaryContractId"`

	ContractInfo ContractInfo `json:"contractInfo"`

	// FundingPubKey is the offerer's key in the 2-of-2 funding output.
	FundingPubKey PubKey `json:"fundingPubkey"`

	PayoutSPK       HexBytes       `json:"payoutSpk"`
	PayoutSerialID  uint64         `json:"payoutSerialId"`
	OfferCollateral btcutil.Amount `json:"offerCollateral"`
	FundingInputs   []FundingInput `json:"fundingInputs"`
	ChangeSPK       HexBytes       `json:"changeSpk"`
	ChangeSerialID  uint64         `json:"changeSerialId"`

	// FundOutputSerialID orders the funding output among the outputs of
	// the funding transaction.
	FundOutputSerialID uint64 `json:"fundOutputSerialId"`

	FeeRatePerVb   uint64 `json:"feeRatePerVb"`
	CetLocktime    uint32 `json:"cetLocktime"`
	RefundLocktime uint32 `json:"refundLocktime"`

	// ExtraData is the trailing TLV stream.
	ExtraData ExtraOpaqueData `json:"tlvs,omitempty"`
}

// A compile time check to ensure DlcOffer implements the Message interface.
var _ Message = (*DlcOffer)(nil)

// Decode deserializes a DlcOffer, including its type tag.
//
// This is part of the Message interface.
func (o *DlcOffer) Decode(r *codec.Reader) error {
	if err := readMsgType(r, MsgDlcOffer); err != nil {
		return err
	}

	var err error
	if o.ProtocolVersion, err = r.ReadUint32(); err != nil {
		return err
	}
	if o.ContractFlags, err = r.ReadUint8(); err != nil {
		return err
	}
	if err := r.ReadFixed(o.ChainHash[:]); err != nil {
		return err
	}
	if err := r.ReadFixed(o.TemporaryContractID[:]); err != nil {
		return err
	}
	if err := o.ContractInfo.Decode(r); err != nil {
		return fmt.Errorf("contract info: %w", err)
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

	o.ExtraData, err = DecodeExtraData(r)

	return err
}

// Encode serializes the target DlcOffer into the passed buffer.
//
// This is part of the Message interface.
func (o *DlcOffer) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(MsgDlcOffer)); err != nil {
		return err
	}
	if err := codec.WriteUint32(w, o.ProtocolVersion); err != nil {
		return err
	}
	if err := codec.WriteUint8(w, o.ContractFlags); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, o.ChainHash[:]); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, o.TemporaryContractID[:]); err != nil {
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
// This is part of the Message interface.
func (o *DlcOffer) MsgType() MessageType {
	return MsgDlcOffer
}

// Validate checks the offer against the rules an accepter would apply before
// answering it.
//
// This is part of the Message interface.
func (o *DlcOffer) Validate() error {
	if err := checkProtocolVersion(o.ProtocolVersion); err != nil {
		return err
	}
	if err := checkStandardScript("payout spk", o.PayoutSPK); err != nil {
		return err
	}
	if err := checkStandardScript("change spk", o.ChangeSPK); err != nil {
		return err
	}
	if err := checkFundingPubKey(o.FundingPubKey); err != nil {
		return err
	}
	if o.OfferCollateral < MinOfferCollateral {
		return codec.Invalid("offer collateral %v below minimum %v",
			o.OfferCollateral, MinOfferCollateral)
	}
	if err := checkLocktimes(o.CetLocktime, o.RefundLocktime); err != nil {
		return err
	}
	if err := checkUniqueSerialIDs(o.FundingInputs); err != nil {
		return err
	}
	if o.ChangeSerialID == o.FundOutputSerialID {
		return codec.Invalid("change serial id equals fund output "+
			"serial id %d", o.ChangeSerialID)
	}

	if err := o.ContractInfo.Validate(); err != nil {
		return fmt.Errorf("contract info: %w", err)
	}
	total := o.ContractInfo.TotalCollateral()
	if total <= o.OfferCollateral {
		return codec.Invalid("total collateral %v must exceed offer "+
			"collateral %v", total, o.OfferCollateral)
	}

	for i := range o.FundingInputs {
		if err := o.FundingInputs[i].Validate(); err != nil {
			return err
		}
	}

	funding, err := o.TotalFunding()
	if err != nil {
		return err
	}
	collateral, err := amount.ValueFromAmount(o.OfferCollateral)
	if err != nil {
		return err
	}
	if funding.Lt(collateral) {
		return codec.Invalid("funding inputs total %v, less than offer "+
			"collateral %v", funding, collateral)
	}

	return nil
}

// TotalFunding returns the combined value of the outputs spent by the
// offerer's funding inputs.
func (o *DlcOffer) TotalFunding() (*amount.Value, error) {
	return totalFunding(o.FundingInputs)
}

// OfferAddresses are the addresses of the offerer's outputs.
type OfferAddresses struct {
	// Funding is the P2WPKH address of the funding public key.
	Funding btcutil.Address

	Change btcutil.Address
	Payout btcutil.Address
}

// Addresses renders the offerer's funding, change and payout addresses for
// the given network.
func (o *DlcOffer) Addresses(params *chaincfg.Params) (*OfferAddresses,
	error) {

	key, err := o.FundingPubKey.Parse()
	if err != nil {
		return nil, fmt.Errorf("funding pubkey: %w", err)
	}
	funding, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(key.SerializeCompressed()), params,
	)
	if err != nil {
		return nil, err
	}

	change, err := scriptAddress(o.ChangeSPK, params)
	if err != nil {
		return nil, fmt.Errorf("change spk: %w", err)
	}
	payout, err := scriptAddress(o.PayoutSPK, params)
	if err != nil {
		return nil, fmt.Errorf("payout spk: %w", err)
	}

	return &OfferAddresses{
		Funding: funding,
		Change:  change,
		Payout:  payout,
	}, nil
}

// scriptAddress returns the single address paid by spk.
func scriptAddress(spk []byte, params *chaincfg.Params) (btcutil.Address,
	error) {

	_, addrs, _, err := txscript.ExtractPkScriptAddrs(spk, params)
	if err != nil {
		return nil, codec.Invalid("%v", err)
	}
	if len(addrs) != 1 {
		return nil, codec.Invalid("script %x pays %d addresses", spk,
			len(addrs))
	}

	return addrs[0], nil
}
