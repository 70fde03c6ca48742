package codec

import (
	"encoding/binary"
	"io"
	"math"
)

// Reader is a read cursor over an immutable byte slice. Every successful read
// advances the offset by exactly the number of bytes consumed. A read that
// would run past the end fails with ErrTruncatedInput and leaves the offset
// untouched.
type Reader struct {
	buf []byte
	off int
}

// A compile time check to ensure Reader implements the io.Reader interface.
var _ io.Reader = (*Reader)(nil)

// NewReader returns a cursor positioned at the start of b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// EOF reports whether every byte has been consumed.
func (r *Reader) EOF() bool {
	return r.Len() == 0
}

// Read implements io.Reader so that the cursor can feed decoders which expect
// a stream, such as lnd's tlv.Stream.
func (r *Reader) Read(p []byte) (int, error) {
	if r.EOF() {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}

	n := copy(p, r.buf[r.off:])
	r.off += n

	return n, nil
}

// PeekBytes returns the next n bytes without consuming them. The returned
// slice aliases the underlying buffer and must not be modified.
func (r *Reader) PeekBytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrTruncatedInput
	}

	return r.buf[r.off : r.off+n], nil
}

// ReadBytes consumes n bytes and returns a copy of them.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.PeekBytes(n)
	if err != nil {
		return nil, err
	}
	r.off += n

	out := make([]byte, n)
	copy(out, b)

	return out, nil
}

// ReadRemaining consumes and returns a copy of every unread byte.
func (r *Reader) ReadRemaining() []byte {
	b, _ := r.ReadBytes(r.Len())
	return b
}

// ReadFixed fills dst entirely from the cursor.
func (r *Reader) ReadFixed(dst []byte) error {
	b, err := r.PeekBytes(len(dst))
	if err != nil {
		return err
	}
	copy(dst, b)
	r.off += len(dst)

	return nil
}

// ReadUint8 consumes a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.PeekBytes(1)
	if err != nil {
		return 0, err
	}
	r.off++

	return b[0], nil
}

// ReadBool consumes a single flag byte. Only 0 and 1 are accepted, so that
// a decoded flag always encodes back to the byte it was read from.
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	if err != nil {
		return false, err
	}

	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, Invalid("flag byte %#02x is neither 0 nor 1", v)
	}
}

// PeekUint16 returns the next big endian uint16 without consuming it.
func (r *Reader) PeekUint16() (uint16, error) {
	b, err := r.PeekBytes(2)
	if err != nil {
		return 0, err
	}

	return binary.BigEndian.Uint16(b), nil
}

// ReadUint16 consumes a big endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.PeekUint16()
	if err != nil {
		return 0, err
	}
	r.off += 2

	return v, nil
}

// ReadUint32 consumes a big endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.PeekBytes(4)
	if err != nil {
		return 0, err
	}
	r.off += 4

	return binary.BigEndian.Uint32(b), nil
}

// ReadInt32 consumes a big endian two's complement int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 consumes a big endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.PeekBytes(8)
	if err != nil {
		return 0, err
	}
	r.off += 8

	return binary.BigEndian.Uint64(b), nil
}

// PeekBigSize decodes the next BigSize integer without consuming it. It
// returns the value and the number of bytes the encoding occupies.
//
// Non-minimal encodings are accepted: a value of 1 written as 0xfd0001
// decodes to 1 with a width of 3.
func (r *Reader) PeekBigSize() (uint64, int, error) {
	prefix, err := r.PeekBytes(1)
	if err != nil {
		return 0, 0, err
	}

	width := bigSizeWidth(prefix[0])
	if width == 1 {
		return uint64(prefix[0]), 1, nil
	}

	b, err := r.PeekBytes(width)
	if err != nil {
		return 0, 0, err
	}

	var v uint64
	switch width {
	case 3:
		v = uint64(binary.BigEndian.Uint16(b[1:]))
	case 5:
		v = uint64(binary.BigEndian.Uint32(b[1:]))
	default:
		v = binary.BigEndian.Uint64(b[1:])
	}

	return v, width, nil
}

// ReadBigSize consumes a BigSize integer.
func (r *Reader) ReadBigSize() (uint64, error) {
	v, width, err := r.PeekBigSize()
	if err != nil {
		return 0, err
	}
	r.off += width

	return v, nil
}

// ReadBigSizeLen consumes a BigSize length prefix and checks that it can be
// satisfied by the remaining input, so that callers never allocate for a
// length the buffer cannot hold.
func (r *Reader) ReadBigSizeLen() (int, error) {
	v, err := r.ReadBigSize()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 || int(v) > r.Len() {
		return 0, ErrTruncatedInput
	}

	return int(v), nil
}

// ReadVarBytes consumes a BigSize length followed by that many bytes.
func (r *Reader) ReadVarBytes() ([]byte, error) {
	n, err := r.ReadBigSizeLen()
	if err != nil {
		return nil, err
	}

	return r.ReadBytes(n)
}

// ReadU16Bytes consumes a big endian uint16 length followed by that many
// bytes.
func (r *Reader) ReadU16Bytes() ([]byte, error) {
	n, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	return r.ReadBytes(int(n))
}

// ReadF64 consumes an 8 byte IEEE-754 big endian double.
func (r *Reader) ReadF64() (F64, error) {
	var f F64
	if err := r.ReadFixed(f[:]); err != nil {
		return F64{}, err
	}

	return f, nil
}
