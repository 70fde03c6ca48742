package dlcwire

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test vectors shared by the tests of this package. Each one is built from
// commented fragments so that a failing comparison can be traced to a field.
var (
	contractInfoHex = strings.Join([]string{
		"00",               // single contract info
		"000000000bebc200", // total collateral
		"00",               // enumerated contract descriptor
		"03",               // num outcomes
		"01", "31", "0000000000000000",
		"01", "32", "00000000092363a3",
		"01", "33", "000000000bebc200",
		"00", // single oracle info
		announcementHex,
	}, "")

	announcementHex = strings.Join([]string{
		"fdd824", "a4", // oracle announcement type and length
		"fab22628f6e2602e1671c286a2f63a9246794008627a1749639217f4214cb4a9",
		"494c93d1a852221080f44f697adb4355df59eb339f6ba0f9b01ba661a8b108d4",
		"da078bbb1d34e7729e38e2ae34236e776da121af442626fa31e31ae55a279a0b",
		"fdd822", "40", // oracle event type and length
		"0001", // nonce count
		"3cfba011378411b20a5ab773cb95daab93e9bcd1e4cce44986a7dda84e01841b",
		"00000000",     // maturity
		"fdd806", "10", // enum event descriptor type and length
		"0002",
		"06", "64756d6d7931",
		"06", "64756d6d7932",
		"05", "64756d6d79", // event id
	}, "")

	fundingInputHex = strings.Join([]string{
		"000000000000fa51", // input serial id
		"29",               // prev tx length
		"02000000000100c2eb0b00000000160014369d63a82ed846f4d47ad55045e5" +
			"94ab95539d6000000000",
		"00000000", // prev tx vout
		"ffffffff", // sequence
		"006b",     // max witness length
		"0000",     // redeem script length
	}, "")

	offerHex = strings.Join([]string{
		"a71a",     // type
		"00000001", // protocol version
		"00",       // contract flags
		"06226e46111a0b59caaf126043eb5bbf28c34f3a5e332a1fc7b2b73cf188910f",
		"2005f76575d3f0ff0fc32a7b8da3a4833d380f32eae5658704dd7ed945b6281a",
		contractInfoHex,
		"0327efea09ff4dfb13230e887cbab8821d5cc249c7ff28668c6633ff9f4b4c08e3",
		"0016", "00142bbdec425007dc360523b0294d2c64d2213af498",
		"0000000000b051dc", // payout serial id
		"0000000005f5e0ff", // offer collateral
		"01", fundingInputHex,
		"0016", "0014afa16f949f3055f38bd3a73312bed00b61558884",
		"00000000001ea3ed", // change serial id
		"000000000052947a", // fund output serial id
		"0000000000000001", // fee rate
		"00000064",         // cet locktime
		"000000c8",         // refund locktime
	}, "")

	cancelHex = "cbcc" +
		"c1c79e1e9e2fa2840b2514902ea244f39eb3001a4037a52ea43c797d4f841269" +
		"00"

	oraclePubKeyHex = "5d1bcfab252c6dd9edd7aea4c5eeeef138f7ff7346061ea4" +
		"0143a9f5ae80baa9"

	oracleIdentifierHex = "fdf020" + "06" + "61746f6d6963" + oraclePubKeyHex
)

func mustHex(t testing.TB, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	require.NoError(t, err)

	return b
}

// decodeOffer decodes the offer vector.
func decodeOffer(t *testing.T) *DlcOffer {
	t.Helper()

	msg, err := DecodeMessage(mustHex(t, offerHex))
	require.NoError(t, err)
	require.IsType(t, &DlcOffer{}, msg)

	return msg.(*DlcOffer)
}
