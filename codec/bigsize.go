package codec

import (
	"bytes"

	"github.com/lightningnetwork/lnd/tlv"
)

const (
	// bigSizeU16 prefixes a two byte BigSize payload.
	bigSizeU16 = 0xfd

	// bigSizeU32 prefixes a four byte BigSize payload.
	bigSizeU32 = 0xfe

	// bigSizeU64 prefixes an eight byte BigSize payload.
	bigSizeU64 = 0xff
)

// bigSizeWidth returns the total encoded width implied by a BigSize prefix.
func bigSizeWidth(prefix byte) int {
	switch prefix {
	case bigSizeU16:
		return 3
	case bigSizeU32:
		return 5
	case bigSizeU64:
		return 9
	default:
		return 1
	}
}

// BigSizeLen returns the number of bytes the canonical encoding of v takes.
func BigSizeLen(v uint64) int {
	return int(tlv.VarIntSize(v))
}

// WriteBigSize appends the canonical (minimal width) BigSize encoding of v.
func WriteBigSize(buf *bytes.Buffer, v uint64) error {
	var scratch [8]byte
	return tlv.WriteVarInt(buf, v, &scratch)
}

// EncodeBigSize returns the canonical BigSize encoding of v.
func EncodeBigSize(v uint64) []byte {
	var b bytes.Buffer
	_ = WriteBigSize(&b, v)

	return b.Bytes()
}
