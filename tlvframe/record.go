// Package tlvframe implements the type-length-value framing shared by every
// nested DLC sub-record: a BigSize type, a BigSize length and exactly length
// bytes of body.
package tlvframe

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
)

// Type is the 64-bit identifier of a TLV record.
type Type uint64

// Record is a single framed TLV record. The length on the wire is always
// len(Body); it is never stored separately.
type Record struct {
	Type Type
	Body []byte
}

// Size returns the number of bytes the encoded record occupies.
func (r *Record) Size() int {
	return codec.BigSizeLen(uint64(r.Type)) +
		codec.BigSizeLen(uint64(len(r.Body))) + len(r.Body)
}

// Encode writes the framed record to buf.
func (r *Record) Encode(buf *bytes.Buffer) error {
	if err := codec.WriteBigSize(buf, uint64(r.Type)); err != nil {
		return err
	}

	return codec.WriteVarBytes(buf, r.Body)
}

// Reader returns a cursor over the record body.
func (r *Record) Reader() *codec.Reader {
	return codec.NewReader(r.Body)
}

// PeekType returns the type of the next record without consuming any input.
func PeekType(r *codec.Reader) (Type, error) {
	typ, _, err := r.PeekBigSize()
	if err != nil {
		return 0, err
	}

	return Type(typ), nil
}

// Decode reads the next record of any type.
func Decode(r *codec.Reader) (*Record, error) {
	typ, err := r.ReadBigSize()
	if err != nil {
		return nil, err
	}

	body, err := r.ReadVarBytes()
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", typ, err)
	}

	return &Record{Type: Type(typ), Body: body}, nil
}

// DecodeExpected reads the next record and fails with a TypeMismatchError if
// its type is not typ. Nothing is consumed on a mismatch.
func DecodeExpected(r *codec.Reader, typ Type) (*Record, error) {
	actual, err := PeekType(r)
	if err != nil {
		return nil, err
	}
	if err := codec.NewTypeMismatch(uint64(typ), uint64(actual)); err != nil {
		return nil, err
	}

	return Decode(r)
}

// ReadExpected decodes the next record, asserts its type and hands a cursor
// over its body to decode. The body must be consumed exactly.
func ReadExpected(r *codec.Reader, typ Type,
	decode func(*codec.Reader) error) error {

	rec, err := DecodeExpected(r, typ)
	if err != nil {
		return err
	}

	body := rec.Reader()
	if err := decode(body); err != nil {
		return fmt.Errorf("record %d: %w", typ, err)
	}
	if !body.EOF() {
		return fmt.Errorf("record %d: %w", typ, codec.Invalid(
			"%d trailing bytes in body", body.Len()))
	}

	return nil
}

// Write frames the bytes produced by encode as a record of the given type.
// The length prefix is derived from what encode actually wrote.
func Write(buf *bytes.Buffer, typ Type, encode func(*bytes.Buffer) error) error {
	var body bytes.Buffer
	if err := encode(&body); err != nil {
		return err
	}

	rec := Record{Type: typ, Body: body.Bytes()}

	return rec.Encode(buf)
}
