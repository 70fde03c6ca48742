package dlcwire

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/dlcgo/dlcd/codec"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestOfferVector checks that the offer vector decodes into the expected
// fields and encodes back to the same bytes.
func TestOfferVector(t *testing.T) {
	t.Parallel()

	offer := decodeOffer(t)

	require.Equal(t, uint32(1), offer.ProtocolVersion)
	require.Equal(t, uint8(0), offer.ContractFlags)
	require.Equal(t, uint64(11555292), offer.PayoutSerialID)
	require.Equal(t, btcutil.Amount(99999999), offer.OfferCollateral)
	require.Equal(t, uint64(2008045), offer.ChangeSerialID)
	require.Equal(t, uint64(5411962), offer.FundOutputSerialID)
	require.Equal(t, uint64(1), offer.FeeRatePerVb)
	require.Equal(t, uint32(100), offer.CetLocktime)
	require.Equal(t, uint32(200), offer.RefundLocktime)
	require.Empty(t, offer.ExtraData)

	require.NotNil(t, offer.ContractInfo.Single)
	require.Equal(
		t, btcutil.Amount(200000000), offer.ContractInfo.TotalCollateral(),
	)
	descriptor := offer.ContractInfo.Single.ContractInfo.ContractDescriptor
	require.NotNil(t, descriptor.Enumerated)
	require.Equal(t, []ContractOutcome{
		{Outcome: "1", LocalPayout: 0},
		{Outcome: "2", LocalPayout: 153314211},
		{Outcome: "3", LocalPayout: 200000000},
	}, descriptor.Enumerated.Outcomes)

	oracle := offer.ContractInfo.Single.ContractInfo.OracleInfo
	require.NotNil(t, oracle.Single)
	event := oracle.Single.Announcement.OracleEvent
	require.Equal(t, "dummy", event.EventID)
	require.Len(t, event.OracleNonces, 1)
	require.Equal(
		t, []string{"dummy1", "dummy2"},
		oracle.Single.Announcement.EventOutcomes(),
	)

	require.Len(t, offer.FundingInputs, 1)
	require.Equal(t, uint64(0xfa51), offer.FundingInputs[0].InputSerialID)
	require.Equal(t, uint16(0x6b), offer.FundingInputs[0].MaxWitnessLen)

	encoded, err := Serialize(offer)
	require.NoError(t, err)
	require.Equal(t, offerHex, hex.EncodeToString(encoded))

	var b bytes.Buffer
	require.NoError(t, offer.ContractInfo.Encode(&b))
	require.Equal(t, contractInfoHex, hex.EncodeToString(b.Bytes()))

	b.Reset()
	require.NoError(t, offer.FundingInputs[0].Encode(&b))
	require.Equal(t, fundingInputHex, hex.EncodeToString(b.Bytes()))
}

// TestCancelVector checks the cancel message against its vector.
func TestCancelVector(t *testing.T) {
	t.Parallel()

	msg, err := DecodeMessage(mustHex(t, cancelHex))
	require.NoError(t, err)

	cancel, ok := msg.(*DlcCancel)
	require.True(t, ok)
	require.Equal(t, CancelUnknown, cancel.CancelType)
	require.Equal(
		t, "c1c79e1e9e2fa2840b2514902ea244f39eb3001a4037a52ea43c797d4f841269",
		cancel.ContractID.String(),
	)
	require.NoError(t, cancel.Validate())

	encoded, err := Serialize(cancel)
	require.NoError(t, err)
	require.Equal(t, cancelHex, hex.EncodeToString(encoded))

	cancel.CancelType = 3
	require.ErrorIs(t, cancel.Validate(), codec.ErrInvalidValue)
}

// TestDecodeWrongType asserts that every message refuses a foreign tag.
func TestDecodeWrongType(t *testing.T) {
	t.Parallel()

	msgs := []Message{
		&DlcOffer{}, &DlcAccept{}, &DlcSign{}, &DlcCancel{},
	}
	for _, msg := range msgs {
		t.Run(msg.MsgType().String(), func(t *testing.T) {
			err := msg.Decode(codec.NewReader([]byte{0x01, 0x23, 0x00}))

			var mismatch *codec.TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			require.Equal(t, uint64(msg.MsgType()), mismatch.Expected)
			require.Equal(t, uint64(0x0123), mismatch.Actual)
			require.ErrorIs(t, err, codec.ErrTypeMismatch)
		})
	}
}

// TestReadMessageUnknownType checks the dispatcher on tags it has no
// decoder for, including the reserved close message.
func TestReadMessageUnknownType(t *testing.T) {
	t.Parallel()

	for _, tag := range []string{"0123", "cbca"} {
		_, err := ReadMessage(codec.NewReader(mustHex(t, tag+"00")))
		require.ErrorIs(t, err, codec.ErrUnknownRecord)
	}

	_, err := ReadMessage(codec.NewReader([]byte{0xa7}))
	require.ErrorIs(t, err, codec.ErrTruncatedInput)
}

// TestDecodeMessageTrailingBytes makes sure that bytes after a message that
// has no trailing TLV stream are rejected.
func TestDecodeMessageTrailingBytes(t *testing.T) {
	t.Parallel()

	_, err := DecodeMessage(mustHex(t, cancelHex+"00"))
	require.ErrorIs(t, err, codec.ErrInvalidValue)
}

// TestOfferExtraData checks that a trailing TLV stream is kept verbatim and
// that a malformed one is rejected.
func TestOfferExtraData(t *testing.T) {
	t.Parallel()

	withExtra := offerHex + "0102aabb" + "fd01000100"
	msg, err := DecodeMessage(mustHex(t, withExtra))
	require.NoError(t, err)

	offer := msg.(*DlcOffer)
	require.Equal(t, "0102aabbfd01000100", hex.EncodeToString(offer.ExtraData))

	records, err := offer.ExtraData.Records()
	require.NoError(t, err)
	require.Equal(t, map[uint64][]byte{
		1:   {0xaa, 0xbb},
		256: {0x00},
	}, records)

	encoded, err := Serialize(offer)
	require.NoError(t, err)
	require.Equal(t, withExtra, hex.EncodeToString(encoded))

	// A record whose length runs past the end of the message.
	_, err = DecodeMessage(mustHex(t, offerHex+"0105aabb"))
	require.ErrorIs(t, err, codec.ErrTruncatedInput)
}

// TestWriteMessageResetsBuffer asserts that a failed encode leaves the
// buffer as it was.
func TestWriteMessageResetsBuffer(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	b.WriteString("keep")

	offer := decodeOffer(t)
	offer.ContractInfo = ContractInfo{}

	n, err := WriteMessage(&b, offer)
	require.ErrorIs(t, err, codec.ErrInvalidValue)
	require.Zero(t, n)
	require.Equal(t, "keep", b.String())

	n, err = WriteMessage(&b, decodeOffer(t))
	require.NoError(t, err)
	require.Equal(t, len(offerHex)/2, n)
	require.Equal(t, "keep", b.String()[:4])
}

// TestMessageRoundTrip checks that every generated message decodes back to
// the bytes it was encoded from.
func TestMessageRoundTrip(t *testing.T) {
	t.Parallel()

	msgs := []TestMessage{
		&DlcOffer{}, &DlcAccept{}, &DlcSign{}, &DlcCancel{},
	}
	for _, testMsg := range msgs {
		testMsg := testMsg
		t.Run(testMsg.MsgType().String(), func(t *testing.T) {
			t.Parallel()

			rapid.Check(t, func(t *rapid.T) {
				msg := testMsg.RandTestMessage(t)

				var b bytes.Buffer
				_, err := WriteMessage(&b, msg)
				require.NoError(t, err)
				encoded := append([]byte(nil), b.Bytes()...)

				decoded, err := DecodeMessage(encoded)
				require.NoError(t, err)
				require.Equal(t, msg.MsgType(), decoded.MsgType())

				reencoded, err := Serialize(decoded)
				require.NoError(t, err)
				require.Equal(t, encoded, reencoded)
			})
		})
	}
}

// TestMessageTruncation asserts that dropping the last byte of any message
// without a trailing TLV stream makes it undecodable for lack of input.
func TestMessageTruncation(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		msg := RandMessage(t, GenOptions{Legacy: true})

		encoded, err := Serialize(msg)
		require.NoError(t, err)

		_, err = DecodeMessage(encoded[:len(encoded)-1])
		require.ErrorIs(t, err, codec.ErrTruncatedInput)
	})
}

// TestGeneratedOffersValidate checks that legacy offers from the generator
// pass validation once their collateral is covered by their inputs.
func TestGeneratedOffersValidate(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		offer := RandOffer(t, GenOptions{Legacy: true})
		offer.ChangeSerialID = offer.FundOutputSerialID + 1

		funding, err := offer.TotalFunding()
		require.NoError(t, err)
		if funding.BtcutilAmount() < offer.OfferCollateral {
			require.ErrorIs(t, offer.Validate(), codec.ErrInvalidValue)

			offer.OfferCollateral = funding.BtcutilAmount()
		}
		if offer.OfferCollateral < MinOfferCollateral {
			return
		}

		require.NoError(t, offer.Validate())
	})
}
