package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
)

// ErrLengthOverflow is returned when a length prefixed field does not fit in
// its prefix.
var ErrLengthOverflow = errors.New("field too long for its length prefix")

// WriteBytes appends the given bytes to the provided buffer.
func WriteBytes(buf *bytes.Buffer, b []byte) error {
	_, err := buf.Write(b)
	return err
}

// WriteUint8 appends the uint8 to the provided buffer.
func WriteUint8(buf *bytes.Buffer, n uint8) error {
	return buf.WriteByte(n)
}

// WriteBool appends 0x01 for true and 0x00 for false.
func WriteBool(buf *bytes.Buffer, b bool) error {
	if b {
		return WriteUint8(buf, 1)
	}

	return WriteUint8(buf, 0)
}

// WriteUint16 appends the uint16 to the provided buffer. It encodes the
// integer using big endian byte order.
func WriteUint16(buf *bytes.Buffer, n uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], n)
	_, err := buf.Write(b[:])
	return err
}

// WriteUint32 appends the uint32 to the provided buffer. It encodes the
// integer using big endian byte order.
func WriteUint32(buf *bytes.Buffer, n uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	_, err := buf.Write(b[:])
	return err
}

// WriteInt32 appends the two's complement big endian encoding of n.
func WriteInt32(buf *bytes.Buffer, n int32) error {
	return WriteUint32(buf, uint32(n))
}

// WriteUint64 appends the uint64 to the provided buffer. It encodes the
// integer using big endian byte order.
func WriteUint64(buf *bytes.Buffer, n uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	_, err := buf.Write(b[:])
	return err
}

// WriteVarBytes appends a BigSize length followed by b.
func WriteVarBytes(buf *bytes.Buffer, b []byte) error {
	if err := WriteBigSize(buf, uint64(len(b))); err != nil {
		return err
	}

	return WriteBytes(buf, b)
}

// WriteU16Bytes appends a big endian uint16 length followed by b.
func WriteU16Bytes(buf *bytes.Buffer, b []byte) error {
	if len(b) > math.MaxUint16 {
		return ErrLengthOverflow
	}
	if err := WriteUint16(buf, uint16(len(b))); err != nil {
		return err
	}

	return WriteBytes(buf, b)
}

// WriteF64 appends the 8 raw bytes of f.
func WriteF64(buf *bytes.Buffer, f F64) error {
	return WriteBytes(buf, f[:])
}
