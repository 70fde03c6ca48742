// Package dlcwire implements the peer-to-peer negotiation messages used to
// set up Discreet Log Contracts: offers, acceptances, signatures and
// cancellations, together with every sub-record they carry.
package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/tlvframe"
)

// ProtocolVersion is the only protocol version this package speaks.
const ProtocolVersion uint32 = 1

// MessageType is the unique 2 byte big-endian integer that indicates the type
// of message on the wire. As with lightning messages there is no length or
// checksum in the header; the transport is expected to frame messages.
type MessageType uint16

// The currently defined top-level DLC message types.
const (
	MsgDlcOffer  MessageType = 42778
	MsgDlcAccept MessageType = 42780
	MsgDlcSign   MessageType = 42782

	// MsgDlcClose is reserved for the cooperative close message, which is
	// not handled by this package.
	MsgDlcClose  MessageType = 52170
	MsgDlcCancel MessageType = 52172
)

// String return the string representation of message type.
func (t MessageType) String() string {
	switch t {
	case MsgDlcOffer:
		return "DlcOffer"
	case MsgDlcAccept:
		return "DlcAccept"
	case MsgDlcSign:
		return "DlcSign"
	case MsgDlcClose:
		return "DlcClose"
	case MsgDlcCancel:
		return "DlcCancel"
	default:
		return "<unknown>"
	}
}

// The BigSize types of the nested sub-records. Several are only used in
// their framed form by the pre-163 schema but the numbers are shared.
const (
	TypeContractInfoV0          tlvframe.Type = 55342
	TypeContractInfoV1          tlvframe.Type = 55344
	TypeContractDescriptorV0    tlvframe.Type = 42768
	TypeContractDescriptorV1    tlvframe.Type = 42784
	TypeOracleInfoV0            tlvframe.Type = 42770
	TypeOracleAnnouncement      tlvframe.Type = 55332
	TypeOracleEvent             tlvframe.Type = 55330
	TypeEnumEventDescriptor     tlvframe.Type = 55302
	TypeDigitDecompositionEvent tlvframe.Type = 55306
	TypeNegotiationFieldsV0     tlvframe.Type = 55334
	TypeNegotiationFieldsV1     tlvframe.Type = 55336
	TypeNegotiationFieldsV2     tlvframe.Type = 55346
	TypeFundingInput            tlvframe.Type = 42772
	TypeCetAdaptorSignatures    tlvframe.Type = 42774
	TypeFundingSignatures       tlvframe.Type = 42776
	TypePayoutFunction          tlvframe.Type = 42790
	TypePolynomialPiece         tlvframe.Type = 42792
	TypeHyperbolaPiece          tlvframe.Type = 42794
	TypeRoundingIntervals       tlvframe.Type = 42788
	TypeOracleIdentifier        tlvframe.Type = 61472
)

// Serializable is an interface which defines a DLC wire serializable object.
type Serializable interface {
	// Decode reads the object from the cursor, including any type tag
	// that leads it.
	Decode(*codec.Reader) error

	// Encode writes the object, including its type tag, to the buffer.
	Encode(*bytes.Buffer) error
}

// Message is an interface that defines a top-level DLC negotiation message.
type Message interface {
	Serializable

	// MsgType returns the type tag that leads the message on the wire.
	MsgType() MessageType

	// Validate checks the structural invariants of the message that do
	// not depend on its serialization.
	Validate() error
}

// makeEmptyMessage creates a new empty message of the proper concrete type
// based on the passed message type.
func makeEmptyMessage(msgType MessageType) (Message, error) {
	var msg Message

	switch msgType {
	case MsgDlcOffer:
		msg = &DlcOffer{}
	case MsgDlcAccept:
		msg = &DlcAccept{}
	case MsgDlcSign:
		msg = &DlcSign{}
	case MsgDlcCancel:
		msg = &DlcCancel{}
	default:
		return nil, &codec.UnknownRecordError{Type: uint64(msgType)}
	}

	return msg, nil
}

// readMsgType consumes the leading u16 type tag and asserts that it matches
// the expected message type.
func readMsgType(r *codec.Reader, expected MessageType) error {
	actual, err := r.ReadUint16()
	if err != nil {
		return err
	}

	return codec.NewTypeMismatch(uint64(expected), uint64(actual))
}

// ReadMessage peeks the type tag of the next message, then decodes it into
// the matching concrete type.
func ReadMessage(r *codec.Reader) (Message, error) {
	tag, err := r.PeekUint16()
	if err != nil {
		return nil, err
	}
	msgType := MessageType(tag)

	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}

	if err := msg.Decode(r); err != nil {
		return nil, fmt.Errorf("unable to decode %v: %w", msgType, err)
	}

	log.Tracef("Decoded %v message, cursor at offset %d", msgType,
		r.Offset())

	return msg, nil
}

// DecodeMessage decodes a single message that must span all of b.
func DecodeMessage(b []byte) (Message, error) {
	r := codec.NewReader(b)

	msg, err := ReadMessage(r)
	if err != nil {
		return nil, err
	}
	if !r.EOF() {
		return nil, codec.Invalid("%d trailing bytes after %v",
			r.Len(), msg.MsgType())
	}

	return msg, nil
}

// WriteMessage writes a DLC Message to a buffer and returns the number of
// bytes written. If any error is encountered the buffer is reset to its
// original state, so either all or none of the message bytes are written.
//
// NOTE: this method is not concurrent safe.
func WriteMessage(buf *bytes.Buffer, msg Message) (int, error) {
	oldByteSize := buf.Len()

	cleanBrokenBytes := func(b *bytes.Buffer) int {
		b.Truncate(oldByteSize)
		return 0
	}

	if err := msg.Encode(buf); err != nil {
		return cleanBrokenBytes(buf), fmt.Errorf("failed to encode "+
			"%v to buffer, got %w", msg.MsgType(), err)
	}

	return buf.Len() - oldByteSize, nil
}

// Serialize returns the wire encoding of msg.
func Serialize(msg Serializable) ([]byte, error) {
	var b bytes.Buffer
	if err := msg.Encode(&b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}
