package dlcwire

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
)

const (
	curvePiecePolynomial uint64 = 0
	curvePieceHyperbola  uint64 = 1
)

// PayoutPoint is a point on the payout curve. ExtraPrecision holds the
// fractional part of the payout in units of 1/2^16.
type PayoutPoint struct {
	EventOutcome   uint64 `json:"eventOutcome"`
	OutcomePayout  uint64 `json:"outcomePayout"`
	ExtraPrecision uint16 `json:"extraPrecision"`
}

func (p *PayoutPoint) decode(r *codec.Reader) error {
	var err error
	if p.EventOutcome, err = r.ReadUint64(); err != nil {
		return err
	}
	if p.OutcomePayout, err = r.ReadUint64(); err != nil {
		return err
	}
	p.ExtraPrecision, err = r.ReadUint16()

	return err
}

func (p *PayoutPoint) encode(w *bytes.Buffer) error {
	if err := codec.WriteUint64(w, p.EventOutcome); err != nil {
		return err
	}
	if err := codec.WriteUint64(w, p.OutcomePayout); err != nil {
		return err
	}

	return codec.WriteUint16(w, p.ExtraPrecision)
}

// PayoutFunctionPiece is a curve piece together with its left endpoint.
type PayoutFunctionPiece struct {
	EndPoint   PayoutPoint      `json:"endPoint"`
	CurvePiece PayoutCurvePiece `json:"payoutCurvePiece"`
}

// PayoutFunction maps numeric outcomes to payouts as a sequence of curve
// pieces. Piece i spans from its own EndPoint to the EndPoint of piece i+1,
// the last one ending at LastEndpoint.
type PayoutFunction struct {
	Pieces       []PayoutFunctionPiece `json:"payoutFunctionPieces"`
	LastEndpoint PayoutPoint           `json:"lastEndpoint"`
}

// Decode reads a BigSize piece count, the pieces and the last endpoint.
func (pf *PayoutFunction) Decode(r *codec.Reader) error {
	n, err := r.ReadBigSizeLen()
	if err != nil {
		return err
	}

	pf.Pieces = make([]PayoutFunctionPiece, n)
	for i := range pf.Pieces {
		if err := pf.Pieces[i].EndPoint.decode(r); err != nil {
			return err
		}
		if err := pf.Pieces[i].CurvePiece.Decode(r); err != nil {
			return fmt.Errorf("payout curve piece %d: %w", i, err)
		}
	}

	return pf.LastEndpoint.decode(r)
}

// Encode writes a BigSize piece count, the pieces and the last endpoint.
func (pf *PayoutFunction) Encode(w *bytes.Buffer) error {
	if err := codec.WriteBigSize(w, uint64(len(pf.Pieces))); err != nil {
		return err
	}
	for i := range pf.Pieces {
		if err := pf.Pieces[i].EndPoint.encode(w); err != nil {
			return err
		}
		if err := pf.Pieces[i].CurvePiece.Encode(w); err != nil {
			return err
		}
	}

	return pf.LastEndpoint.encode(w)
}

// Endpoints returns the left endpoint of every piece followed by the last
// endpoint.
func (pf *PayoutFunction) Endpoints() []PayoutPoint {
	points := make([]PayoutPoint, 0, len(pf.Pieces)+1)
	for _, piece := range pf.Pieces {
		points = append(points, piece.EndPoint)
	}

	return append(points, pf.LastEndpoint)
}

// Validate checks that there is at least one piece, that endpoints never
// move backwards, and that every piece is sound.
func (pf *PayoutFunction) Validate() error {
	if len(pf.Pieces) == 0 {
		return codec.Invalid("payout function has no pieces")
	}

	points := pf.Endpoints()
	for i := 1; i < len(points); i++ {
		if points[i].EventOutcome < points[i-1].EventOutcome {
			return codec.Invalid("payout endpoint %d at outcome %d "+
				"precedes %d", i, points[i].EventOutcome,
				points[i-1].EventOutcome)
		}
	}

	for i := range pf.Pieces {
		if err := pf.Pieces[i].CurvePiece.Validate(); err != nil {
			return fmt.Errorf("payout curve piece %d: %w", i, err)
		}
	}

	return nil
}

// PayoutCurvePiece is a tagged union of the supported curve shapes. Exactly
// one variant is set.
type PayoutCurvePiece struct {
	Polynomial *PolynomialPayoutCurvePiece `json:"polynomialPayoutCurvePiece,omitempty"`
	Hyperbola  *HyperbolaPayoutCurvePiece  `json:"hyperbolaPayoutCurvePiece,omitempty"`
}

// PolynomialPayoutCurvePiece interpolates a polynomial through its points.
type PolynomialPayoutCurvePiece struct {
	PayoutPoints []PayoutPoint `json:"payoutPoints"`
}

// HyperbolaPayoutCurvePiece is the curve
//
//	payout = c / (a*(x - translateOutcome) + b) + d + translatePayout
//
// with the positive or negative branch selected by UsePositivePiece. Its
// parameters are IEEE-754 doubles kept bit for bit.
type HyperbolaPayoutCurvePiece struct {
	UsePositivePiece bool      `json:"usePositivePiece"`
	TranslateOutcome codec.F64 `json:"translateOutcome"`
	TranslatePayout  codec.F64 `json:"translatePayout"`
	A                codec.F64 `json:"a"`
	B                codec.F64 `json:"b"`
	C                codec.F64 `json:"c"`
	D                codec.F64 `json:"d"`
}

// Params returns pointers to the six parameters in wire order.
func (h *HyperbolaPayoutCurvePiece) Params() []*codec.F64 {
	return []*codec.F64{
		&h.TranslateOutcome, &h.TranslatePayout, &h.A, &h.B, &h.C,
		&h.D,
	}
}

// Decode reads the curve piece sub-type and its body.
func (p *PayoutCurvePiece) Decode(r *codec.Reader) error {
	variant, err := r.ReadBigSize()
	if err != nil {
		return err
	}

	switch variant {
	case curvePiecePolynomial:
		p.Polynomial = &PolynomialPayoutCurvePiece{}

		n, err := r.ReadBigSizeLen()
		if err != nil {
			return err
		}
		p.Polynomial.PayoutPoints = make([]PayoutPoint, n)
		for i := range p.Polynomial.PayoutPoints {
			err := p.Polynomial.PayoutPoints[i].decode(r)
			if err != nil {
				return err
			}
		}

		return nil

	case curvePieceHyperbola:
		p.Hyperbola = &HyperbolaPayoutCurvePiece{}

		p.Hyperbola.UsePositivePiece, err = r.ReadBool()
		if err != nil {
			return err
		}
		for _, param := range p.Hyperbola.Params() {
			if *param, err = r.ReadF64(); err != nil {
				return err
			}
		}

		return nil

	default:
		return &codec.UnknownRecordError{Type: variant}
	}
}

// Encode writes the curve piece sub-type and its body.
func (p *PayoutCurvePiece) Encode(w *bytes.Buffer) error {
	switch {
	case p.Polynomial != nil:
		err := codec.WriteBigSize(w, curvePiecePolynomial)
		if err != nil {
			return err
		}

		points := p.Polynomial.PayoutPoints
		if err := codec.WriteBigSize(w, uint64(len(points))); err != nil {
			return err
		}
		for i := range points {
			if err := points[i].encode(w); err != nil {
				return err
			}
		}

		return nil

	case p.Hyperbola != nil:
		if err := codec.WriteBigSize(w, curvePieceHyperbola); err != nil {
			return err
		}
		err := codec.WriteBool(w, p.Hyperbola.UsePositivePiece)
		if err != nil {
			return err
		}
		for _, param := range p.Hyperbola.Params() {
			if err := codec.WriteF64(w, *param); err != nil {
				return err
			}
		}

		return nil

	default:
		return codec.Invalid("empty payout curve piece")
	}
}

// Validate checks that exactly one variant is set. Polynomial points must be
// ordered by outcome; hyperbola parameters must be finite.
func (p *PayoutCurvePiece) Validate() error {
	switch {
	case p.Polynomial != nil && p.Hyperbola != nil:
		return codec.Invalid("payout curve piece has two variants")

	case p.Polynomial != nil:
		points := p.Polynomial.PayoutPoints
		for i := 1; i < len(points); i++ {
			if points[i].EventOutcome <= points[i-1].EventOutcome {
				return codec.Invalid("polynomial point %d out of "+
					"order", i)
			}
		}

		return nil

	case p.Hyperbola != nil:
		for _, param := range p.Hyperbola.Params() {
			if !param.IsFinite() {
				return codec.Invalid("hyperbola parameter %v is "+
					"not finite", param)
			}
		}

		return nil

	default:
		return codec.Invalid("empty payout curve piece")
	}
}
