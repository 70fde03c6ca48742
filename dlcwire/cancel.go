package dlcwire

import (
	"bytes"

	"github.com/dlcgo/dlcd/codec"
)

// CancelType describes why a negotiation was abandoned.
type CancelType uint8

const (
	// CancelUnknown is sent when no better reason applies.
	CancelUnknown CancelType = 0

	// CancelMarket is sent when market conditions moved too far for the
	// sender to continue.
	CancelMarket CancelType = 1

	// CancelError is sent after a local failure.
	CancelError CancelType = 2
)

// String returns a human readable name of the cancel type.
func (c CancelType) String() string {
	switch c {
	case CancelUnknown:
		return "Unknown"
	case CancelMarket:
		return "Market"
	case CancelError:
		return "Error"
	default:
		return "<unknown>"
	}
}

// DlcCancel tells the counterparty that a pending contract will not be
// completed. Its layout is identical in both schema generations.
type DlcCancel struct {
	// ContractID is the temporary or final id of the abandoned
	// contract.
	ContractID ContractID `json:"contractId"`

	// CancelType is the reason for the cancellation.
	CancelType CancelType `json:"cancelType"`
}

// A compile time check to ensure DlcCancel implements the Message interface.
var _ Message = (*DlcCancel)(nil)

// Decode deserializes a DlcCancel message from the cursor.
//
// This is part of the Message interface.
func (c *DlcCancel) Decode(r *codec.Reader) error {
	if err := readMsgType(r, MsgDlcCancel); err != nil {
		return err
	}
	if err := r.ReadFixed(c.ContractID[:]); err != nil {
		return err
	}

	cancelType, err := r.ReadUint8()
	if err != nil {
		return err
	}
	c.CancelType = CancelType(cancelType)

	return nil
}

// Encode serializes the DlcCancel message into the buffer.
//
// This is part of the Message interface.
func (c *DlcCancel) Encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, uint16(MsgDlcCancel)); err != nil {
		return err
	}
	if err := codec.WriteBytes(w, c.ContractID[:]); err != nil {
		return err
	}

	return codec.WriteUint8(w, uint8(c.CancelType))
}

// MsgType returns the integer uniquely identifying this message type on the
// wire.
//
// This is part of the Message interface.
func (c *DlcCancel) MsgType() MessageType {
	return MsgDlcCancel
}

// Validate checks that the cancel type is one we know.
//
// This is part of the Message interface.
func (c *DlcCancel) Validate() error {
	if c.CancelType > CancelError {
		return codec.Invalid("cancel type %d", c.CancelType)
	}

	return nil
}
