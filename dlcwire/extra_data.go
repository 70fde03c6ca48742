package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/tlvframe"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/tlv"
)

// ExtraOpaqueData is the TLV stream that trails a negotiation message. Its
// records are kept as raw bytes so that a message carrying extensions this
// package does not understand still re-encodes byte for byte.
type ExtraOpaqueData HexBytes

// DecodeExtraData consumes the rest of the cursor as a TLV stream. Each
// record must be well framed, but its contents are not interpreted.
func DecodeExtraData(r *codec.Reader) (ExtraOpaqueData, error) {
	raw := r.ReadRemaining()
	if len(raw) == 0 {
		return nil, nil
	}

	stream := codec.NewReader(raw)
	for !stream.EOF() {
		if _, err := tlvframe.Decode(stream); err != nil {
			return nil, fmt.Errorf("extra data: %w", err)
		}
	}

	return ExtraOpaqueData(raw), nil
}

// Encode appends the raw stream.
func (e ExtraOpaqueData) Encode(w *bytes.Buffer) error {
	return codec.WriteBytes(w, e)
}

// MarshalText encodes the stream as hex.
func (e ExtraOpaqueData) MarshalText() ([]byte, error) {
	return HexBytes(e).MarshalText()
}

// UnmarshalText decodes a hex stream.
func (e *ExtraOpaqueData) UnmarshalText(text []byte) error {
	return (*HexBytes)(e).UnmarshalText(text)
}

// PackRecords replaces the stream with the encoding of the given records,
// sorted by type.
func (e *ExtraOpaqueData) PackRecords(producers ...tlv.RecordProducer) error {
	records := fn.Map(producers, func(p tlv.RecordProducer) tlv.Record {
		return p.Record()
	})
	tlv.SortRecords(records)

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}

	var b bytes.Buffer
	if err := stream.Encode(&b); err != nil {
		return err
	}

	*e = ExtraOpaqueData(b.Bytes())
	if len(*e) == 0 {
		*e = nil
	}

	return nil
}

// ExtractRecords decodes the stream into the given records. Records present
// in the stream but not requested are returned raw in the type map.
func (e ExtraOpaqueData) ExtractRecords(
	producers ...tlv.RecordProducer) (tlv.TypeMap, error) {

	records := fn.Map(producers, func(p tlv.RecordProducer) tlv.Record {
		return p.Record()
	})
	tlv.SortRecords(records)

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return nil, err
	}

	return stream.DecodeWithParsedTypes(bytes.NewReader(e))
}

// Records returns every record of the stream keyed by type.
func (e ExtraOpaqueData) Records() (map[uint64][]byte, error) {
	parsed, err := e.ExtractRecords()
	if err != nil {
		return nil, err
	}

	records := make(map[uint64][]byte, len(parsed))
	for typ, value := range parsed {
		records[uint64(typ)] = value
	}

	return records, nil
}

// ExtraDataFromRecords packs a map of raw records, as returned by Records,
// into a stream.
func ExtraDataFromRecords(records map[uint64][]byte) (ExtraOpaqueData, error) {
	tlvRecords := tlv.MapToRecords(records)

	producers := make([]tlv.RecordProducer, len(tlvRecords))
	for i := range tlvRecords {
		producers[i] = &tlvRecords[i]
	}

	var e ExtraOpaqueData
	if err := e.PackRecords(producers...); err != nil {
		return nil, err
	}

	return e, nil
}
