// Package pre163 implements the negotiation messages as they were encoded
// before the schema revision that introduced protocol versions, untagged
// sub-records and BigSize counts, together with lossless converters to and
// from the current schema in package dlcwire.
package pre163

import (
	"fmt"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
)

// readMsgType consumes the leading u16 type tag and asserts that it matches
// the expected message type.
func readMsgType(r *codec.Reader, expected dlcwire.MessageType) error {
	actual, err := r.ReadUint16()
	if err != nil {
		return err
	}

	return codec.NewTypeMismatch(uint64(expected), uint64(actual))
}

// makeEmptyMessage creates a new empty message of the proper concrete type
// based on the passed message type. Cancel messages did not change and are
// decoded as dlcwire.DlcCancel.
func makeEmptyMessage(msgType dlcwire.MessageType) (dlcwire.Message, error) {
	var msg dlcwire.Message

	switch msgType {
	case dlcwire.MsgDlcOffer:
		msg = &DlcOffer{}
	case dlcwire.MsgDlcAccept:
		msg = &DlcAccept{}
	case dlcwire.MsgDlcSign:
		msg = &DlcSign{}
	case dlcwire.MsgDlcCancel:
		msg = &dlcwire.DlcCancel{}
	default:
		return nil, &codec.UnknownRecordError{Type: uint64(msgType)}
	}

	return msg, nil
}

// ReadMessage peeks the type tag of the next message, then decodes it with
// the older layout of that message.
func ReadMessage(r *codec.Reader) (dlcwire.Message, error) {
	tag, err := r.PeekUint16()
	if err != nil {
		return nil, err
	}
	msgType := dlcwire.MessageType(tag)

	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}

	if err := msg.Decode(r); err != nil {
		return nil, fmt.Errorf("unable to decode pre-163 %v: %w",
			msgType, err)
	}

	return msg, nil
}

// DecodeMessage decodes a single pre-163 message that must span all of b.
func DecodeMessage(b []byte) (dlcwire.Message, error) {
	r := codec.NewReader(b)

	msg, err := ReadMessage(r)
	if err != nil {
		return nil, err
	}
	if !r.EOF() {
		return nil, codec.Invalid("%d trailing bytes after pre-163 %v",
			r.Len(), msg.MsgType())
	}

	return msg, nil
}
