package pre163

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// hashOutcome names an enumerated outcome the way the older schema does.
// Outcomes announced by the oracle are hashed. Any other outcome that is
// already a hex encoded hash is taken as that hash, so that outcomes which
// could not be resolved on upgrade survive the trip back.
func hashOutcome(outcome string, eventOutcomes []string) OutcomeHash {
	for _, o := range eventOutcomes {
		if o == outcome {
			return OutcomeHash(chainhash.HashH([]byte(outcome)))
		}
	}

	var h OutcomeHash
	if len(outcome) == 2*len(h) {
		if b, err := hex.DecodeString(outcome); err == nil {
			copy(h[:], b)
			return h
		}
	}

	return OutcomeHash(chainhash.HashH([]byte(outcome)))
}

// resolveOutcome maps a hashed outcome back to the announced outcome that
// produced it. Unknown hashes are returned as lowercase hex.
func resolveOutcome(h OutcomeHash, eventOutcomes []string) string {
	for _, o := range eventOutcomes {
		if OutcomeHash(chainhash.HashH([]byte(o))) == h {
			return o
		}
	}

	log.Debugf("Outcome hash %v matches no announced outcome", h)

	return h.String()
}

func payoutFunctionToPre163(pf *dlcwire.PayoutFunction) (PayoutFunction,
	error) {

	points := pf.Endpoints()

	out := PayoutFunction{
		Endpoint0: points[0],
		Pieces:    make([]PayoutPiece, len(pf.Pieces)),
	}
	for i := range pf.Pieces {
		piece, err := curvePieceToPre163(&pf.Pieces[i].CurvePiece)
		if err != nil {
			return PayoutFunction{}, fmt.Errorf("payout curve "+
				"piece %d: %w", i, err)
		}

		out.Pieces[i] = PayoutPiece{
			CurvePiece: piece,
			Endpoint:   points[i+1],
		}
	}

	return out, nil
}

func payoutFunctionFromPre163(pf *PayoutFunction) dlcwire.PayoutFunction {
	out := dlcwire.PayoutFunction{
		Pieces: make([]dlcwire.PayoutFunctionPiece, len(pf.Pieces)),
	}

	start := pf.Endpoint0
	for i := range pf.Pieces {
		out.Pieces[i] = dlcwire.PayoutFunctionPiece{
			EndPoint:   start,
			CurvePiece: curvePieceFromPre163(&pf.Pieces[i].CurvePiece),
		}
		start = pf.Pieces[i].Endpoint
	}
	out.LastEndpoint = start

	return out
}

func curvePieceToPre163(p *dlcwire.PayoutCurvePiece) (PayoutCurvePiece,
	error) {

	switch {
	case p.Polynomial != nil:
		return PayoutCurvePiece{
			Polynomial: &PolynomialPiece{
				Points: p.Polynomial.PayoutPoints,
			},
		}, nil

	case p.Hyperbola != nil:
		h := &HyperbolaPiece{
			UsePositivePiece: p.Hyperbola.UsePositivePiece,
		}
		params := h.Params()
		for i, param := range p.Hyperbola.Params() {
			fp, err := FixedPointFromF64(*param)
			if err != nil {
				return PayoutCurvePiece{}, err
			}
			*params[i] = fp
		}

		return PayoutCurvePiece{Hyperbola: h}, nil

	default:
		return PayoutCurvePiece{}, codec.Invalid("empty payout " +
			"curve piece")
	}
}

func curvePieceFromPre163(p *PayoutCurvePiece) dlcwire.PayoutCurvePiece {
	if p.Polynomial != nil {
		return dlcwire.PayoutCurvePiece{
			Polynomial: &dlcwire.PolynomialPayoutCurvePiece{
				PayoutPoints: p.Polynomial.Points,
			},
		}
	}

	if p.Hyperbola == nil {
		return dlcwire.PayoutCurvePiece{}
	}

	h := &dlcwire.HyperbolaPayoutCurvePiece{
		UsePositivePiece: p.Hyperbola.UsePositivePiece,
	}
	params := h.Params()
	for i, param := range p.Hyperbola.Params() {
		*params[i] = param.F64()
	}

	return dlcwire.PayoutCurvePiece{Hyperbola: h}
}

func pairToPre163(p *dlcwire.ContractOraclePair) (ContractOraclePair,
	error) {

	if p.OracleInfo.Multi != nil {
		return ContractOraclePair{}, codec.Invalid("multi oracle info "+
			"with %d announcements has no pre-163 form",
			len(p.OracleInfo.Multi.Announcements))
	}
	if p.OracleInfo.Single == nil {
		return ContractOraclePair{}, codec.Invalid("empty oracle info")
	}

	ann := p.OracleInfo.Single.Announcement
	out := ContractOraclePair{
		OracleInfo: OracleInfoV0{Announcement: ann},
	}

	desc := &p.ContractDescriptor
	switch {
	case desc.Enumerated != nil:
		eventOutcomes := ann.EventOutcomes()

		outcomes := make([]OutcomePayout, len(desc.Enumerated.Outcomes))
		for i, o := range desc.Enumerated.Outcomes {
			outcomes[i] = OutcomePayout{
				Outcome:     hashOutcome(o.Outcome, eventOutcomes),
				LocalPayout: o.LocalPayout,
			}
		}
		out.ContractDescriptor.V0 = &ContractDescriptorV0{
			Outcomes: outcomes,
		}

	case desc.Numeric != nil:
		pf, err := payoutFunctionToPre163(&desc.Numeric.PayoutFunction)
		if err != nil {
			return ContractOraclePair{}, err
		}
		out.ContractDescriptor.V1 = &ContractDescriptorV1{
			NumDigits:      desc.Numeric.NumDigits,
			PayoutFunction: pf,
			RoundingIntervals: RoundingIntervals{
				Intervals: desc.Numeric.RoundingIntervals.Intervals,
			},
		}

	default:
		return ContractOraclePair{}, codec.Invalid("empty contract " +
			"descriptor")
	}

	return out, nil
}

func pairFromPre163(p *ContractOraclePair) dlcwire.ContractOraclePair {
	ann := p.OracleInfo.Announcement
	out := dlcwire.ContractOraclePair{
		OracleInfo: dlcwire.OracleInfo{
			Single: &dlcwire.SingleOracleInfo{Announcement: ann},
		},
	}

	desc := &p.ContractDescriptor
	switch {
	case desc.V0 != nil:
		eventOutcomes := ann.EventOutcomes()

		outcomes := make(
			[]dlcwire.ContractOutcome, len(desc.V0.Outcomes),
		)
		for i, o := range desc.V0.Outcomes {
			outcomes[i] = dlcwire.ContractOutcome{
				Outcome:     resolveOutcome(o.Outcome, eventOutcomes),
				LocalPayout: o.LocalPayout,
			}
		}
		out.ContractDescriptor.Enumerated =
			&dlcwire.EnumeratedContractDescriptor{
				Outcomes: outcomes,
			}

	case desc.V1 != nil:
		out.ContractDescriptor.Numeric =
			&dlcwire.NumericContractDescriptor{
				NumDigits: desc.V1.NumDigits,
				PayoutFunction: payoutFunctionFromPre163(
					&desc.V1.PayoutFunction,
				),
				RoundingIntervals: dlcwire.RoundingIntervals{
					Intervals: desc.V1.RoundingIntervals.Intervals,
				},
			}
	}

	return out
}

// ContractInfoToPre163 converts a contract info to the older schema. It
// fails for contracts relying on more than one oracle, which the older
// schema cannot express.
func ContractInfoToPre163(c *dlcwire.ContractInfo) (ContractInfo, error) {
	switch {
	case c.Single != nil:
		pair, err := pairToPre163(&c.Single.ContractInfo)
		if err != nil {
			return ContractInfo{}, err
		}

		return ContractInfo{
			V0: &ContractInfoV0{
				TotalCollateral: c.Single.TotalCollateral,
				Pair:            pair,
			},
		}, nil

	case c.Disjoint != nil:
		pairs := make([]ContractOraclePair, len(c.Disjoint.ContractInfos))
		for i := range c.Disjoint.ContractInfos {
			var err error
			pairs[i], err = pairToPre163(&c.Disjoint.ContractInfos[i])
			if err != nil {
				return ContractInfo{}, fmt.Errorf("contract "+
					"info %d: %w", i, err)
			}
		}

		return ContractInfo{
			V1: &ContractInfoV1{
				TotalCollateral: c.Disjoint.TotalCollateral,
				Pairs:           pairs,
			},
		}, nil

	default:
		return ContractInfo{}, codec.Invalid("empty contract info")
	}
}

// ContractInfoFromPre163 converts an older contract info to the current
// schema.
func ContractInfoFromPre163(c *ContractInfo) dlcwire.ContractInfo {
	switch {
	case c.V0 != nil:
		return dlcwire.ContractInfo{
			Single: &dlcwire.SingleContractInfo{
				TotalCollateral: c.V0.TotalCollateral,
				ContractInfo:    pairFromPre163(&c.V0.Pair),
			},
		}

	case c.V1 != nil:
		pairs := make(
			[]dlcwire.ContractOraclePair, len(c.V1.Pairs),
		)
		for i := range c.V1.Pairs {
			pairs[i] = pairFromPre163(&c.V1.Pairs[i])
		}

		return dlcwire.ContractInfo{
			Disjoint: &dlcwire.DisjointContractInfo{
				TotalCollateral: c.V1.TotalCollateral,
				ContractInfos:   pairs,
			},
		}

	default:
		return dlcwire.ContractInfo{}
	}
}

func negotiationFieldsToPre163(n *dlcwire.NegotiationFields) (
	NegotiationFields, error) {

	switch {
	case n.Single != nil:
		return NegotiationFields{
			V1: &NegotiationFieldsV1{
				RoundingIntervals: RoundingIntervals{
					Intervals: n.Single.RoundingIntervals.Intervals,
				},
			},
		}, nil

	case n.Disjoint != nil:
		nested := n.Disjoint.NegotiationFields
		fields := make([]NegotiationFields, len(nested))
		for i := range nested {
			var err error
			fields[i], err = negotiationFieldsToPre163(&nested[i])
			if err != nil {
				return NegotiationFields{}, err
			}
		}

		return NegotiationFields{
			V2: &NegotiationFieldsV2{NegotiationFields: fields},
		}, nil

	default:
		return NegotiationFields{}, codec.Invalid("empty negotiation " +
			"fields")
	}
}

// negotiationFieldsFromPre163 converts a set of negotiation fields nested
// in a V2 record. A nested V0 has no current counterpart and becomes a
// single set of fields without intervals.
func negotiationFieldsFromPre163(n *NegotiationFields) dlcwire.NegotiationFields {
	switch {
	case n.V1 != nil:
		return dlcwire.NegotiationFields{
			Single: &dlcwire.SingleNegotiationFields{
				RoundingIntervals: dlcwire.RoundingIntervals{
					Intervals: n.V1.RoundingIntervals.Intervals,
				},
			},
		}

	case n.V2 != nil:
		fields := make(
			[]dlcwire.NegotiationFields,
			len(n.V2.NegotiationFields),
		)
		for i := range n.V2.NegotiationFields {
			fields[i] = negotiationFieldsFromPre163(
				&n.V2.NegotiationFields[i],
			)
		}

		return dlcwire.NegotiationFields{
			Disjoint: &dlcwire.DisjointNegotiationFields{
				NegotiationFields: fields,
			},
		}

	default:
		return dlcwire.NegotiationFields{
			Single: &dlcwire.SingleNegotiationFields{
				RoundingIntervals: dlcwire.RoundingIntervals{
					Intervals: []dlcwire.RoundingInterval{},
				},
			},
		}
	}
}

// OfferToPre163 converts an offer to the older schema. The protocol version
// and temporary contract id are dropped; the latter is derived from the
// older encoding instead.
func OfferToPre163(o *dlcwire.DlcOffer) (*DlcOffer, error) {
	info, err := ContractInfoToPre163(&o.ContractInfo)
	if err != nil {
		return nil, fmt.Errorf("contract info: %w", err)
	}

	return &DlcOffer{
		ContractFlags:      o.ContractFlags,
		ChainHash:          o.ChainHash,
		ContractInfo:       info,
		FundingPubKey:      o.FundingPubKey,
		PayoutSPK:          o.PayoutSPK,
		PayoutSerialID:     o.PayoutSerialID,
		OfferCollateral:    o.OfferCollateral,
		FundingInputs:      o.FundingInputs,
		ChangeSPK:          o.ChangeSPK,
		ChangeSerialID:     o.ChangeSerialID,
		FundOutputSerialID: o.FundOutputSerialID,
		FeeRatePerVb:       o.FeeRatePerVb,
		CetLocktime:        o.CetLocktime,
		RefundLocktime:     o.RefundLocktime,
		ExtraData:          o.ExtraData,
	}, nil
}

// OfferFromPre163 converts an older offer to the current schema under the
// given temporary contract id.
func OfferFromPre163(o *DlcOffer, tempID dlcwire.ContractID) (
	*dlcwire.DlcOffer, error) {

	if o.ContractInfo.V0 == nil && o.ContractInfo.V1 == nil {
		return nil, codec.Invalid("empty contract info")
	}

	return &dlcwire.DlcOffer{
		ProtocolVersion:     dlcwire.ProtocolVersion,
		ContractFlags:       o.ContractFlags,
		ChainHash:           o.ChainHash,
		TemporaryContractID: tempID,
		ContractInfo:        ContractInfoFromPre163(&o.ContractInfo),
		FundingPubKey:       o.FundingPubKey,
		PayoutSPK:           o.PayoutSPK,
		PayoutSerialID:      o.PayoutSerialID,
		OfferCollateral:     o.OfferCollateral,
		FundingInputs:       o.FundingInputs,
		ChangeSPK:           o.ChangeSPK,
		ChangeSerialID:      o.ChangeSerialID,
		FundOutputSerialID:  o.FundOutputSerialID,
		FeeRatePerVb:        o.FeeRatePerVb,
		CetLocktime:         o.CetLocktime,
		RefundLocktime:      o.RefundLocktime,
		ExtraData:           o.ExtraData,
	}, nil
}

// AcceptToPre163 converts an accept to the older schema. Absent negotiation
// fields become an empty V0 record. The trailing TLV stream has no place in
// the older layout and is dropped.
func AcceptToPre163(a *dlcwire.DlcAccept) (*DlcAccept, error) {
	fields := NegotiationFields{V0: &NegotiationFieldsV0{}}
	if a.NegotiationFields.IsSome() {
		current := a.NegotiationFields.UnsafeFromSome()

		var err error
		fields, err = negotiationFieldsToPre163(&current)
		if err != nil {
			return nil, err
		}
	}

	if len(a.ExtraData) != 0 {
		log.Debugf("Dropping %d bytes of accept extra data",
			len(a.ExtraData))
	}

	return &DlcAccept{
		TemporaryContractID:  a.TemporaryContractID,
		AcceptCollateral:     a.AcceptCollateral,
		FundingPubKey:        a.FundingPubKey,
		PayoutSPK:            a.PayoutSPK,
		PayoutSerialID:       a.PayoutSerialID,
		FundingInputs:        a.FundingInputs,
		ChangeSPK:            a.ChangeSPK,
		ChangeSerialID:       a.ChangeSerialID,
		CetAdaptorSignatures: a.CetAdaptorSignatures,
		RefundSignature:      a.RefundSignature,
		NegotiationFields:    fields,
	}, nil
}

// AcceptFromPre163 converts an older accept to the current schema. A V0
// negotiation record means the accepter made no counter proposal.
func AcceptFromPre163(a *DlcAccept) (*dlcwire.DlcAccept, error) {
	fields := fn.None[dlcwire.NegotiationFields]()
	switch {
	case a.NegotiationFields.V1 != nil, a.NegotiationFields.V2 != nil:
		fields = fn.Some(negotiationFieldsFromPre163(
			&a.NegotiationFields,
		))

	case a.NegotiationFields.V0 == nil:
		return nil, codec.Invalid("empty negotiation fields")
	}

	return &dlcwire.DlcAccept{
		ProtocolVersion:      dlcwire.ProtocolVersion,
		TemporaryContractID:  a.TemporaryContractID,
		AcceptCollateral:     a.AcceptCollateral,
		FundingPubKey:        a.FundingPubKey,
		PayoutSPK:            a.PayoutSPK,
		PayoutSerialID:       a.PayoutSerialID,
		FundingInputs:        a.FundingInputs,
		ChangeSPK:            a.ChangeSPK,
		ChangeSerialID:       a.ChangeSerialID,
		CetAdaptorSignatures: a.CetAdaptorSignatures,
		RefundSignature:      a.RefundSignature,
		NegotiationFields:    fields,
	}, nil
}

// SignToPre163 converts a sign message to the older schema, dropping the
// protocol version and the trailing TLV stream.
func SignToPre163(s *dlcwire.DlcSign) *DlcSign {
	if len(s.ExtraData) != 0 {
		log.Debugf("Dropping %d bytes of sign extra data",
			len(s.ExtraData))
	}

	return &DlcSign{
		ContractID:           s.ContractID,
		CetAdaptorSignatures: s.CetAdaptorSignatures,
		RefundSignature:      s.RefundSignature,
		FundingSignatures: FundingSignatures{
			Witnesses: s.FundingSignatures.Witnesses,
		},
	}
}

// SignFromPre163 converts an older sign message to the current schema.
func SignFromPre163(s *DlcSign) *dlcwire.DlcSign {
	return &dlcwire.DlcSign{
		ProtocolVersion:      dlcwire.ProtocolVersion,
		ContractID:           s.ContractID,
		CetAdaptorSignatures: s.CetAdaptorSignatures,
		RefundSignature:      s.RefundSignature,
		FundingSignatures: dlcwire.FundingSignatures{
			Witnesses: s.FundingSignatures.Witnesses,
		},
	}
}

// ToPre163 converts any current message to its older form. Cancel messages
// are shared by both schemas and returned as is.
func ToPre163(msg dlcwire.Message) (dlcwire.Message, error) {
	switch m := msg.(type) {
	case *dlcwire.DlcOffer:
		return OfferToPre163(m)
	case *dlcwire.DlcAccept:
		return AcceptToPre163(m)
	case *dlcwire.DlcSign:
		return SignToPre163(m), nil
	case *dlcwire.DlcCancel:
		return m, nil
	default:
		return nil, fmt.Errorf("%w: no pre-163 form for %T",
			codec.ErrUnknownRecord, msg)
	}
}

// FromPre163 converts any older message to the current schema. Offers get
// the temporary contract id derived from their older encoding.
func FromPre163(msg dlcwire.Message) (dlcwire.Message, error) {
	switch m := msg.(type) {
	case *DlcOffer:
		tempID, err := TemporaryContractID(m)
		if err != nil {
			return nil, err
		}
		log.Debugf("Upgrading pre-163 offer with temporary contract "+
			"id %v", tempID)

		return OfferFromPre163(m, tempID)

	case *DlcAccept:
		return AcceptFromPre163(m)
	case *DlcSign:
		return SignFromPre163(m), nil
	case *dlcwire.DlcCancel:
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %T is not a pre-163 message",
			codec.ErrUnknownRecord, msg)
	}
}
