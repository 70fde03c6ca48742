package dlcwire

import (
	"testing"

	"github.com/dlcgo/dlcd/codec"
	"github.com/lightningnetwork/lnd/tlv"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestExtraDataPackExtract packs typed records and reads them back,
// leaving records nobody asked for in the returned type map.
func TestExtraDataPackExtract(t *testing.T) {
	t.Parallel()

	var (
		feeRate  uint64   = 253
		flag     uint8    = 1
		unknown  []byte   = []byte{0xca, 0xfe}
		unknownT tlv.Type = 77
	)

	feeRecord := tlv.MakePrimitiveRecord(5, &feeRate)
	flagRecord := tlv.MakePrimitiveRecord(3, &flag)
	rawRecord := tlv.MakePrimitiveRecord(unknownT, &unknown)

	var extra ExtraOpaqueData
	require.NoError(t, extra.PackRecords(&feeRecord, &flagRecord, &rawRecord))

	records, err := extra.Records()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, unknown, records[uint64(unknownT)])

	var (
		gotFee  uint64
		gotFlag uint8
	)
	gotFeeRecord := tlv.MakePrimitiveRecord(5, &gotFee)
	gotFlagRecord := tlv.MakePrimitiveRecord(3, &gotFlag)

	parsed, err := extra.ExtractRecords(&gotFeeRecord, &gotFlagRecord)
	require.NoError(t, err)
	require.Equal(t, feeRate, gotFee)
	require.Equal(t, flag, gotFlag)
	require.Contains(t, parsed, tlv.Type(5))
	require.Nil(t, parsed[tlv.Type(5)])
	require.Equal(t, unknown, parsed[unknownT])

	// Packing nothing leaves no stream at all.
	require.NoError(t, extra.PackRecords())
	require.Nil(t, extra)
}

// TestExtraDataFromRecords checks that raw records survive the trip
// through a packed stream and the framing check of the decoder.
func TestExtraDataFromRecords(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		extra := RandExtraData(t, GenOptions{})

		decoded, err := DecodeExtraData(codec.NewReader(extra))
		require.NoError(t, err)
		require.Equal(t, extra, decoded)

		records, err := decoded.Records()
		require.NoError(t, err)

		repacked, err := ExtraDataFromRecords(records)
		require.NoError(t, err)
		require.Equal(t, extra, repacked)
	})
}

// TestExtraDataJSON checks the hex form of the stream.
func TestExtraDataJSON(t *testing.T) {
	t.Parallel()

	extra := ExtraOpaqueData{0x01, 0x01, 0xff}
	text, err := extra.MarshalText()
	require.NoError(t, err)
	require.Equal(t, "0101ff", string(text))

	var decoded ExtraOpaqueData
	require.NoError(t, decoded.UnmarshalText(text))
	require.Equal(t, extra, decoded)
}
