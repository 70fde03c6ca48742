package dlcwire

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/dlcgo/dlcd/codec"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestMessage is an interface that extends the base Message interface with a
// method to populate the message with random testing data.
type TestMessage interface {
	Message

	// RandTestMessage populates the message with random data suitable for
	// testing. It uses the rapid testing framework to generate random
	// values.
	RandTestMessage(t *rapid.T) Message
}

// GenOptions narrows what the random generators produce.
type GenOptions struct {
	// Legacy restricts generation to messages that survive a trip
	// through the pre-163 schema: a single oracle per contract,
	// enumerated outcomes taken from the oracle's event, hyperbola
	// parameters with a 16-bit binary fraction and no trailing TLV
	// stream.
	Legacy bool
}

// A compile time check to ensure every message implements the TestMessage
// interface.
var (
	_ TestMessage = (*DlcOffer)(nil)
	_ TestMessage = (*DlcAccept)(nil)
	_ TestMessage = (*DlcSign)(nil)
	_ TestMessage = (*DlcCancel)(nil)
)

// RandTestMessage populates the message with random data suitable for testing.
//
// This is part of the TestMessage interface.
func (o *DlcOffer) RandTestMessage(t *rapid.T) Message {
	return RandOffer(t, GenOptions{})
}

// RandTestMessage populates the message with random data suitable for testing.
//
// This is part of the TestMessage interface.
func (a *DlcAccept) RandTestMessage(t *rapid.T) Message {
	return RandAccept(t, GenOptions{})
}

// RandTestMessage populates the message with random data suitable for testing.
//
// This is part of the TestMessage interface.
func (s *DlcSign) RandTestMessage(t *rapid.T) Message {
	return RandSign(t, GenOptions{})
}

// RandTestMessage populates the message with random data suitable for testing.
//
// This is part of the TestMessage interface.
func (c *DlcCancel) RandTestMessage(t *rapid.T) Message {
	return &DlcCancel{
		ContractID: RandContractID(t, "contractID"),
		CancelType: CancelType(
			rapid.Uint8Range(0, 2).Draw(t, "cancelType"),
		),
	}
}

// RandMessage draws one of the top-level messages.
func RandMessage(t *rapid.T, opts GenOptions) Message {
	switch rapid.IntRange(0, 3).Draw(t, "msgKind") {
	case 0:
		return RandOffer(t, opts)
	case 1:
		return RandAccept(t, opts)
	case 2:
		return RandSign(t, opts)
	default:
		return (&DlcCancel{}).RandTestMessage(t)
	}
}

func randFixed(t *rapid.T, dst []byte, label string) {
	copy(dst, rapid.SliceOfN(rapid.Byte(), len(dst), len(dst)).Draw(
		t, label,
	))
}

// RandContractID generates a random contract id.
func RandContractID(t *rapid.T, label string) ContractID {
	var id ContractID
	randFixed(t, id[:], label)

	return id
}

// RandPubKey generates a valid compressed public key.
func RandPubKey(t *rapid.T) PubKey {
	var seed [32]byte
	randFixed(t, seed[:], "keySeed")

	// A zero scalar has no public key.
	seed[31] |= 1
	_, pub := btcec.PrivKeyFromBytes(seed[:])

	return NewPubKey(pub)
}

// RandP2WPKHScript generates a pay to witness pubkey hash script.
func RandP2WPKHScript(t *rapid.T) []byte {
	hash := rapid.SliceOfN(rapid.Byte(), 20, 20).Draw(t, "pkHash")

	return append([]byte{0x00, 0x14}, hash...)
}

// RandFundingInput generates an input spending a P2WPKH output of a
// freshly built previous transaction.
func RandFundingInput(t *rapid.T, serialID uint64) FundingInput {
	tx := wire.NewMsgTx(2)
	numIn := rapid.IntRange(0, 2).Draw(t, "prevTxInputs")
	for i := 0; i < numIn; i++ {
		var hash chainhash.Hash
		randFixed(t, hash[:], "prevTxInHash")
		tx.AddTxIn(wire.NewTxIn(
			wire.NewOutPoint(&hash, rapid.Uint32().Draw(t, "idx")),
			nil, nil,
		))
	}

	numOut := rapid.IntRange(1, 3).Draw(t, "prevTxOutputs")
	for i := 0; i < numOut; i++ {
		tx.AddTxOut(wire.NewTxOut(
			rapid.Int64Range(1000, btcutil.SatoshiPerBitcoin).Draw(
				t, "prevTxOutValue",
			),
			RandP2WPKHScript(t),
		))
	}

	var b bytes.Buffer
	require.NoError(t, tx.Serialize(&b))

	return FundingInput{
		InputSerialID: serialID,
		PrevTx:        b.Bytes(),
		PrevTxVout: uint32(
			rapid.IntRange(0, numOut-1).Draw(t, "prevTxVout"),
		),
		Sequence:      rapid.Uint32().Draw(t, "sequence"),
		MaxWitnessLen: uint16(rapid.IntRange(1, 500).Draw(t, "maxWit")),
	}
}

func randFundingInputs(t *rapid.T) []FundingInput {
	serials := rapid.SliceOfNDistinct(
		rapid.Uint64(), 0, 3, rapid.ID[uint64],
	).Draw(t, "inputSerialIDs")

	inputs := make([]FundingInput, len(serials))
	for i, serial := range serials {
		inputs[i] = RandFundingInput(t, serial)
	}

	return inputs
}

// RandF64 draws a hyperbola parameter. Legacy parameters have at most 37
// integer bits and a 16-bit binary fraction, so they convert exactly.
func RandF64(t *rapid.T, legacy bool, label string) codec.F64 {
	if !legacy {
		return codec.F64FromBits(rapid.Uint64().Draw(t, label))
	}

	const limit = int64(1) << 53
	k := rapid.Int64Range(-limit+1, limit-1).Draw(t, label)

	return codec.F64FromFloat64(float64(k) / 65536)
}

func randPayoutPoint(t *rapid.T, outcome uint64) PayoutPoint {
	return PayoutPoint{
		EventOutcome:   outcome,
		OutcomePayout:  rapid.Uint64().Draw(t, "outcomePayout"),
		ExtraPrecision: rapid.Uint16().Draw(t, "extraPrecision"),
	}
}

// randSortedUint64s draws n distinct values in ascending order.
func randSortedUint64s(t *rapid.T, minLen, maxLen int,
	label string) []uint64 {

	values := rapid.SliceOfNDistinct(
		rapid.Uint64(), minLen, maxLen, rapid.ID[uint64],
	).Draw(t, label)
	slices.Sort(values)

	return values
}

func randCurvePiece(t *rapid.T, opts GenOptions) PayoutCurvePiece {
	if rapid.Bool().Draw(t, "polynomial") {
		outcomes := randSortedUint64s(t, 0, 4, "polyOutcomes")

		points := make([]PayoutPoint, len(outcomes))
		for i, outcome := range outcomes {
			points[i] = randPayoutPoint(t, outcome)
		}

		return PayoutCurvePiece{
			Polynomial: &PolynomialPayoutCurvePiece{
				PayoutPoints: points,
			},
		}
	}

	h := &HyperbolaPayoutCurvePiece{
		UsePositivePiece: rapid.Bool().Draw(t, "usePositive"),
	}
	for i, param := range h.Params() {
		*param = RandF64(t, opts.Legacy, fmt.Sprintf("param-%d", i))
	}

	return PayoutCurvePiece{Hyperbola: h}
}

// RandNumericDescriptor generates a numeric contract descriptor whose
// endpoints and rounding intervals are ordered.
func RandNumericDescriptor(t *rapid.T,
	opts GenOptions) *NumericContractDescriptor {

	endpoints := randSortedUint64s(t, 2, 4, "endpoints")

	pieces := make([]PayoutFunctionPiece, len(endpoints)-1)
	for i := range pieces {
		pieces[i] = PayoutFunctionPiece{
			EndPoint:   randPayoutPoint(t, endpoints[i]),
			CurvePiece: randCurvePiece(t, opts),
		}
	}

	return &NumericContractDescriptor{
		NumDigits: rapid.Uint16Range(1, 64).Draw(t, "numDigits"),
		PayoutFunction: PayoutFunction{
			Pieces: pieces,
			LastEndpoint: randPayoutPoint(
				t, endpoints[len(endpoints)-1],
			),
		},
		RoundingIntervals: RandRoundingIntervals(t),
	}
}

// RandRoundingIntervals generates a rounding interval set with ascending
// begin values and non-zero moduli.
func RandRoundingIntervals(t *rapid.T) RoundingIntervals {
	begins := randSortedUint64s(t, 0, 3, "beginIntervals")

	intervals := make([]RoundingInterval, len(begins))
	for i, begin := range begins {
		intervals[i] = RoundingInterval{
			BeginInterval: begin,
			RoundingMod: rapid.Uint64Min(1).Draw(
				t, "roundingMod",
			),
		}
	}

	return RoundingIntervals{Intervals: intervals}
}

func randEventOutcomes(t *rapid.T) []string {
	return rapid.SliceOfNDistinct(
		rapid.StringN(1, 12, -1), 1, 4, rapid.ID[string],
	).Draw(t, "eventOutcomes")
}

// RandAnnouncement generates an oracle announcement. When outcomes is
// non-nil the event is an enum event over them, otherwise a digit
// decomposition event.
func RandAnnouncement(t *rapid.T, outcomes []string) OracleAnnouncement {
	var ann OracleAnnouncement
	randFixed(t, ann.AnnouncementSignature[:], "announcementSig")
	randFixed(t, ann.OraclePublicKey[:], "oraclePubKey")

	numNonces := 1
	var descriptor EventDescriptor
	if outcomes != nil {
		descriptor.Enum = &EnumEventDescriptor{Outcomes: outcomes}
	} else {
		numNonces = rapid.IntRange(1, 4).Draw(t, "numNonces")
		descriptor.DigitDecomposition = &DigitDecompositionEventDescriptor{
			Base:      rapid.Uint16Range(2, 16).Draw(t, "base"),
			IsSigned:  rapid.Bool().Draw(t, "isSigned"),
			Unit:      rapid.StringN(0, 8, -1).Draw(t, "unit"),
			Precision: rapid.Int32().Draw(t, "precision"),
			NbDigits:  uint16(numNonces),
		}
	}

	nonces := make([]XOnlyPubKey, numNonces)
	for i := range nonces {
		randFixed(t, nonces[i][:], "nonce")
	}

	ann.OracleEvent = OracleEvent{
		OracleNonces:       nonces,
		EventMaturityEpoch: rapid.Uint32().Draw(t, "maturity"),
		EventDescriptor:    descriptor,
		EventID:            rapid.StringN(1, 16, -1).Draw(t, "eventID"),
	}

	return ann
}

// randOracleInfo wraps announcements over the same event shape in a single
// or multi oracle info.
func randOracleInfo(t *rapid.T, opts GenOptions,
	outcomes []string) OracleInfo {

	if opts.Legacy || rapid.Bool().Draw(t, "singleOracle") {
		return OracleInfo{
			Single: &SingleOracleInfo{
				Announcement: RandAnnouncement(t, outcomes),
			},
		}
	}

	n := rapid.IntRange(1, 3).Draw(t, "numOracles")
	anns := make([]OracleAnnouncement, n)
	for i := range anns {
		anns[i] = RandAnnouncement(t, outcomes)
	}

	params := fn.None[OracleParams]()
	if rapid.Bool().Draw(t, "hasOracleParams") {
		params = fn.Some(OracleParams{
			MaxErrorExp:      rapid.Uint16().Draw(t, "maxErrorExp"),
			MinFailExp:       rapid.Uint16().Draw(t, "minFailExp"),
			MaximizeCoverage: rapid.Bool().Draw(t, "maxCoverage"),
		})
	}

	return OracleInfo{
		Multi: &MultiOracleInfo{
			Threshold: uint16(
				rapid.IntRange(1, n).Draw(t, "threshold"),
			),
			Announcements: anns,
			Params:        params,
		},
	}
}

// RandContractOraclePair generates a descriptor together with oracle info
// announcing a matching event.
func RandContractOraclePair(t *rapid.T, opts GenOptions,
	total btcutil.Amount) ContractOraclePair {

	if rapid.Bool().Draw(t, "numeric") {
		return ContractOraclePair{
			ContractDescriptor: ContractDescriptor{
				Numeric: RandNumericDescriptor(t, opts),
			},
			OracleInfo: randOracleInfo(t, opts, nil),
		}
	}

	eventOutcomes := randEventOutcomes(t)

	outcomes := eventOutcomes
	if !opts.Legacy {
		outcomes = rapid.SliceOfN(
			rapid.StringN(0, 12, -1), 1, 4,
		).Draw(t, "contractOutcomes")
	}

	payouts := make([]ContractOutcome, len(outcomes))
	for i, outcome := range outcomes {
		payouts[i] = ContractOutcome{
			Outcome: outcome,
			LocalPayout: btcutil.Amount(rapid.Int64Range(
				0, int64(total),
			).Draw(t, "localPayout")),
		}
	}

	return ContractOraclePair{
		ContractDescriptor: ContractDescriptor{
			Enumerated: &EnumeratedContractDescriptor{
				Outcomes: payouts,
			},
		},
		OracleInfo: randOracleInfo(t, opts, eventOutcomes),
	}
}

// RandContractInfo generates a single or disjoint contract info.
func RandContractInfo(t *rapid.T, opts GenOptions) ContractInfo {
	total := btcutil.Amount(rapid.Int64Range(
		2000, 10*btcutil.SatoshiPerBitcoin,
	).Draw(t, "totalCollateral"))

	if rapid.Bool().Draw(t, "singleContract") {
		return ContractInfo{
			Single: &SingleContractInfo{
				TotalCollateral: total,
				ContractInfo: RandContractOraclePair(
					t, opts, total,
				),
			},
		}
	}

	n := rapid.IntRange(1, 3).Draw(t, "numContracts")
	pairs := make([]ContractOraclePair, n)
	for i := range pairs {
		pairs[i] = RandContractOraclePair(t, opts, total)
	}

	return ContractInfo{
		Disjoint: &DisjointContractInfo{
			TotalCollateral: total,
			ContractInfos:   pairs,
		},
	}
}

// RandExtraData generates a trailing TLV stream, or nothing for legacy
// messages.
func RandExtraData(t *rapid.T, opts GenOptions) ExtraOpaqueData {
	if opts.Legacy {
		return nil
	}

	records := rapid.MapOfN(
		rapid.Uint64(), rapid.SliceOfN(rapid.Byte(), 0, 32), 0, 3,
	).Draw(t, "extraRecords")

	extra, err := ExtraDataFromRecords(records)
	require.NoError(t, err)

	return extra
}

func randProtocolVersion(t *rapid.T, opts GenOptions) uint32 {
	if opts.Legacy {
		return ProtocolVersion
	}

	return rapid.Uint32().Draw(t, "protocolVersion")
}

// RandOffer generates an offer.
func RandOffer(t *rapid.T, opts GenOptions) *DlcOffer {
	info := RandContractInfo(t, opts)

	cet := rapid.Uint32Range(0, LocktimeThreshold-2).Draw(t, "cetLocktime")

	return &DlcOffer{
		ProtocolVersion:     randProtocolVersion(t, opts),
		ContractFlags:       rapid.Uint8().Draw(t, "contractFlags"),
		ChainHash:           ChainHashFromParams(&chaincfg.RegressionNetParams),
		TemporaryContractID: RandContractID(t, "tempContractID"),
		ContractInfo:        info,
		FundingPubKey:       RandPubKey(t),
		PayoutSPK:           RandP2WPKHScript(t),
		PayoutSerialID:      rapid.Uint64().Draw(t, "payoutSerialID"),
		OfferCollateral: btcutil.Amount(rapid.Int64Range(
			1000, int64(info.TotalCollateral())-1,
		).Draw(t, "offerCollateral")),
		FundingInputs:      randFundingInputs(t),
		ChangeSPK:          RandP2WPKHScript(t),
		ChangeSerialID:     rapid.Uint64().Draw(t, "changeSerialID"),
		FundOutputSerialID: rapid.Uint64().Draw(t, "fundOutputSerialID"),
		FeeRatePerVb:       rapid.Uint64Range(1, 1000).Draw(t, "feeRate"),
		CetLocktime:        cet,
		RefundLocktime: rapid.Uint32Range(
			cet+1, LocktimeThreshold-1,
		).Draw(t, "refundLocktime"),
		ExtraData: RandExtraData(t, opts),
	}
}

// RandCetAdaptorSignatures generates a set of adaptor signatures.
func RandCetAdaptorSignatures(t *rapid.T) CetAdaptorSignatures {
	n := rapid.IntRange(0, 4).Draw(t, "numAdaptorSigs")
	sigs := make([]CetAdaptorSignature, n)
	for i := range sigs {
		randFixed(t, sigs[i].EncryptedSig[:], "encryptedSig")
		randFixed(t, sigs[i].DleqProof[:], "dleqProof")
	}

	return CetAdaptorSignatures{Sigs: sigs}
}

// RandNegotiationFields generates negotiation fields nested at most depth
// levels deep.
func RandNegotiationFields(t *rapid.T, depth int) NegotiationFields {
	if depth == 0 || rapid.Bool().Draw(t, "singleNegotiation") {
		return NegotiationFields{
			Single: &SingleNegotiationFields{
				RoundingIntervals: RandRoundingIntervals(t),
			},
		}
	}

	n := rapid.IntRange(0, 3).Draw(t, "numNegotiationFields")
	fields := make([]NegotiationFields, n)
	for i := range fields {
		fields[i] = RandNegotiationFields(t, depth-1)
	}

	return NegotiationFields{
		Disjoint: &DisjointNegotiationFields{
			NegotiationFields: fields,
		},
	}
}

// RandAccept generates an accept message.
func RandAccept(t *rapid.T, opts GenOptions) *DlcAccept {
	var refundSig Sig
	randFixed(t, refundSig[:], "refundSig")

	fields := fn.None[NegotiationFields]()
	if rapid.Bool().Draw(t, "hasNegotiationFields") {
		fields = fn.Some(RandNegotiationFields(t, 1))
	}

	return &DlcAccept{
		ProtocolVersion:     randProtocolVersion(t, opts),
		TemporaryContractID: RandContractID(t, "tempContractID"),
		AcceptCollateral: btcutil.Amount(rapid.Int64Range(
			0, 10*btcutil.SatoshiPerBitcoin,
		).Draw(t, "acceptCollateral")),
		FundingPubKey:        RandPubKey(t),
		PayoutSPK:            RandP2WPKHScript(t),
		PayoutSerialID:       rapid.Uint64().Draw(t, "payoutSerialID"),
		FundingInputs:        randFundingInputs(t),
		ChangeSPK:            RandP2WPKHScript(t),
		ChangeSerialID:       rapid.Uint64().Draw(t, "changeSerialID"),
		CetAdaptorSignatures: RandCetAdaptorSignatures(t),
		RefundSignature:      refundSig,
		NegotiationFields:    fields,
		ExtraData:            RandExtraData(t, opts),
	}
}

// RandFundingSignatures generates one non-empty witness per input.
func RandFundingSignatures(t *rapid.T) FundingSignatures {
	n := rapid.IntRange(0, 3).Draw(t, "numWitnesses")
	witnesses := make([]wire.TxWitness, n)
	for i := range witnesses {
		elems := rapid.IntRange(1, 3).Draw(t, "numWitnessElements")
		witnesses[i] = make(wire.TxWitness, elems)
		for k := range witnesses[i] {
			witnesses[i][k] = rapid.SliceOfN(
				rapid.Byte(), 0, 73,
			).Draw(t, "witnessElement")
		}
	}

	return FundingSignatures{Witnesses: witnesses}
}

// RandSign generates a sign message.
func RandSign(t *rapid.T, opts GenOptions) *DlcSign {
	var refundSig Sig
	randFixed(t, refundSig[:], "refundSig")

	return &DlcSign{
		ProtocolVersion:      randProtocolVersion(t, opts),
		ContractID:           RandContractID(t, "contractID"),
		CetAdaptorSignatures: RandCetAdaptorSignatures(t),
		RefundSignature:      refundSig,
		FundingSignatures:    RandFundingSignatures(t),
		ExtraData:            RandExtraData(t, opts),
	}
}

// RandOracleIdentifier generates an oracle identifier.
func RandOracleIdentifier(t *rapid.T) *OracleIdentifier {
	id := &OracleIdentifier{
		OracleName: rapid.StringN(1, 32, -1).Draw(t, "oracleName"),
	}
	randFixed(t, id.OraclePubKey[:], "oraclePubKey")

	return id
}
