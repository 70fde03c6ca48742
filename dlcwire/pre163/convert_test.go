package pre163

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestLegacyRoundTrip asserts that every message the older schema can
// express survives a downgrade, an encode/decode cycle in the older layout
// and an upgrade, byte for byte.
func TestLegacyRoundTrip(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		msg := dlcwire.RandMessage(t, dlcwire.GenOptions{Legacy: true})

		want, err := dlcwire.Serialize(msg)
		require.NoError(t, err)

		old, err := ToPre163(msg)
		require.NoError(t, err)

		encoded, err := dlcwire.Serialize(old)
		require.NoError(t, err)

		decoded, err := DecodeMessage(encoded)
		require.NoError(t, err)
		require.Equal(t, msg.MsgType(), decoded.MsgType())

		var upgraded dlcwire.Message
		if offer, ok := decoded.(*DlcOffer); ok {
			orig := msg.(*dlcwire.DlcOffer)
			upgraded, err = OfferFromPre163(
				offer, orig.TemporaryContractID,
			)
		} else {
			upgraded, err = FromPre163(decoded)
		}
		require.NoError(t, err)

		got, err := dlcwire.Serialize(upgraded)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})
}

// TestMultiOracleDowngrade asserts that contracts relying on several
// oracles have no older form.
func TestMultiOracleDowngrade(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		offer := dlcwire.RandOffer(t, dlcwire.GenOptions{Legacy: true})

		info := &offer.ContractInfo
		pair := info.Pairs()[0]
		multi := dlcwire.OracleInfo{
			Multi: &dlcwire.MultiOracleInfo{
				Threshold:     1,
				Announcements: pair.OracleInfo.Announcements(),
				Params:        fn.None[dlcwire.OracleParams](),
			},
		}
		if info.Single != nil {
			info.Single.ContractInfo.OracleInfo = multi
		} else {
			info.Disjoint.ContractInfos[0].OracleInfo = multi
		}

		_, err := OfferToPre163(offer)
		require.ErrorIs(t, err, codec.ErrInvalidValue)
	})
}

// TestOutcomeHashing covers how enumerated outcomes are named in the older
// schema and resolved on the way back.
func TestOutcomeHashing(t *testing.T) {
	t.Parallel()

	events := []string{"yes", "no"}
	yes := sha256.Sum256([]byte("yes"))

	// Announced outcomes are hashed and resolve to themselves.
	h := hashOutcome("yes", events)
	require.Equal(t, OutcomeHash(yes), h)
	require.Equal(t, "yes", resolveOutcome(h, events))

	// Outcomes the oracle never announced are hashed too, but come back
	// as hex.
	h = hashOutcome("maybe", events)
	maybe := sha256.Sum256([]byte("maybe"))
	require.Equal(t, OutcomeHash(maybe), h)
	require.Equal(t, hex.EncodeToString(maybe[:]), resolveOutcome(h, events))

	// A hex outcome is taken as the hash it spells, so an unresolved
	// outcome survives another trip.
	unresolved := hex.EncodeToString(maybe[:])
	require.Equal(t, OutcomeHash(maybe), hashOutcome(unresolved, events))

	// Unless the oracle announced that very string.
	withHex := append([]string{unresolved}, events...)
	require.Equal(
		t, OutcomeHash(sha256.Sum256([]byte(unresolved))),
		hashOutcome(unresolved, withHex),
	)
}

// TestPayoutFunctionMapping checks how endpoints move between the two
// layouts of a payout function.
func TestPayoutFunctionMapping(t *testing.T) {
	t.Parallel()

	point := func(outcome uint64) dlcwire.PayoutPoint {
		return dlcwire.PayoutPoint{
			EventOutcome:  outcome,
			OutcomePayout: outcome * 2,
		}
	}
	poly := func() dlcwire.PayoutCurvePiece {
		return dlcwire.PayoutCurvePiece{
			Polynomial: &dlcwire.PolynomialPayoutCurvePiece{
				PayoutPoints: []dlcwire.PayoutPoint{},
			},
		}
	}

	cur := dlcwire.PayoutFunction{
		Pieces: []dlcwire.PayoutFunctionPiece{
			{EndPoint: point(0), CurvePiece: poly()},
			{EndPoint: point(10), CurvePiece: poly()},
		},
		LastEndpoint: point(20),
	}

	old, err := payoutFunctionToPre163(&cur)
	require.NoError(t, err)
	require.Equal(t, point(0), old.Endpoint0)
	require.Len(t, old.Pieces, 2)
	require.Equal(t, point(10), old.Pieces[0].Endpoint)
	require.Equal(t, point(20), old.Pieces[1].Endpoint)

	require.Equal(t, cur, payoutFunctionFromPre163(&old))

	// Without pieces the only endpoint is also the last one.
	empty := payoutFunctionFromPre163(&PayoutFunction{
		Endpoint0: point(7),
	})
	require.Empty(t, empty.Pieces)
	require.Equal(t, point(7), empty.LastEndpoint)
}

// TestHyperbolaDowngradeRejectsInfinity asserts that parameters without a
// fixed point form fail the downgrade.
func TestHyperbolaDowngradeRejectsInfinity(t *testing.T) {
	t.Parallel()

	piece := dlcwire.PayoutCurvePiece{
		Hyperbola: &dlcwire.HyperbolaPayoutCurvePiece{
			A: codec.F64FromBits(0x7ff0000000000000),
		},
	}

	_, err := curvePieceToPre163(&piece)
	require.ErrorIs(t, err, codec.ErrInvalidValue)
}

// TestOfferDowngradeRejectsInexactHyperbola asserts that an offer whose
// hyperbola parameters have no exact fixed point form fails to downgrade
// instead of changing value.
func TestOfferDowngradeRejectsInexactHyperbola(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		opts := dlcwire.GenOptions{Legacy: true}
		offer := dlcwire.RandOffer(t, opts)

		numeric := dlcwire.RandNumericDescriptor(t, opts)
		numeric.PayoutFunction.Pieces[0].CurvePiece =
			dlcwire.PayoutCurvePiece{
				Hyperbola: &dlcwire.HyperbolaPayoutCurvePiece{
					UsePositivePiece: true,
					A:                codec.F64FromFloat64(0.1),
					B:                codec.F64FromFloat64(1),
				},
			}

		pair := &dlcwire.ContractOraclePair{}
		switch {
		case offer.ContractInfo.Single != nil:
			pair = &offer.ContractInfo.Single.ContractInfo
		case offer.ContractInfo.Disjoint != nil:
			pair = &offer.ContractInfo.Disjoint.ContractInfos[0]
		}
		pair.ContractDescriptor = dlcwire.ContractDescriptor{
			Numeric: numeric,
		}

		_, err := ToPre163(offer)
		require.ErrorIs(t, err, codec.ErrInvalidValue)
	})
}

// TestAcceptNegotiationFieldsMapping covers the mapping between optional
// negotiation fields and the record the older accept always carries.
func TestAcceptNegotiationFieldsMapping(t *testing.T) {
	t.Parallel()

	accept := &dlcwire.DlcAccept{
		ProtocolVersion:   dlcwire.ProtocolVersion,
		NegotiationFields: fn.None[dlcwire.NegotiationFields](),
		ExtraData:         dlcwire.ExtraOpaqueData{0x01, 0x00},
	}

	old, err := AcceptToPre163(accept)
	require.NoError(t, err)
	require.NotNil(t, old.NegotiationFields.V0)

	back, err := AcceptFromPre163(old)
	require.NoError(t, err)
	require.True(t, back.NegotiationFields.IsNone())
	require.Empty(t, back.ExtraData)

	// A V0 nested in a V2 record has no current counterpart and becomes
	// fields without intervals.
	old.NegotiationFields = NegotiationFields{
		V2: &NegotiationFieldsV2{
			NegotiationFields: []NegotiationFields{
				{V0: &NegotiationFieldsV0{}},
			},
		},
	}
	back, err = AcceptFromPre163(old)
	require.NoError(t, err)

	fields := back.NegotiationFields.UnsafeFromSome()
	require.NotNil(t, fields.Disjoint)
	require.Len(t, fields.Disjoint.NegotiationFields, 1)

	nested := fields.Disjoint.NegotiationFields[0]
	require.NotNil(t, nested.Single)
	require.Empty(t, nested.Single.RoundingIntervals.Intervals)

	// An accept must carry some negotiation record.
	old.NegotiationFields = NegotiationFields{}
	_, err = AcceptFromPre163(old)
	require.ErrorIs(t, err, codec.ErrInvalidValue)
}

// TestSignUpgradeSetsVersion asserts that upgraded messages speak the
// current protocol version.
func TestSignUpgradeSetsVersion(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		sign := dlcwire.RandSign(t, dlcwire.GenOptions{})

		back := SignFromPre163(SignToPre163(sign))
		require.Equal(t, dlcwire.ProtocolVersion, back.ProtocolVersion)
		require.Equal(t, sign.ContractID, back.ContractID)
		require.Equal(
			t, sign.FundingSignatures.Witnesses,
			back.FundingSignatures.Witnesses,
		)
		require.Empty(t, back.ExtraData)
	})
}

// TestTemporaryContractID asserts that an older offer's temporary contract
// id is the sha256 of its encoding, and that the generic upgrade uses it.
func TestTemporaryContractID(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		offer := dlcwire.RandOffer(t, dlcwire.GenOptions{Legacy: true})

		old, err := OfferToPre163(offer)
		require.NoError(t, err)

		encoded, err := dlcwire.Serialize(old)
		require.NoError(t, err)

		tempID, err := TemporaryContractID(old)
		require.NoError(t, err)
		require.Equal(t, dlcwire.ContractID(chainhash.HashH(encoded)), tempID)
		require.Equal(t, [32]byte(sha256.Sum256(encoded)), [32]byte(tempID))

		upgraded, err := FromPre163(old)
		require.NoError(t, err)
		require.Equal(
			t, tempID,
			upgraded.(*dlcwire.DlcOffer).TemporaryContractID,
		)
	})
}

// TestConvertRejectsForeignMessages asserts that the generic converters only
// accept messages of the schema they convert from.
func TestConvertRejectsForeignMessages(t *testing.T) {
	t.Parallel()

	_, err := ToPre163(&DlcOffer{})
	require.ErrorIs(t, err, codec.ErrUnknownRecord)

	_, err = FromPre163(&dlcwire.DlcSign{})
	require.ErrorIs(t, err, codec.ErrUnknownRecord)

	cancel := &dlcwire.DlcCancel{CancelType: 1}
	same, err := ToPre163(cancel)
	require.NoError(t, err)
	require.Same(t, cancel, same)
}
