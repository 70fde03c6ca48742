package pre163

import (
	"bytes"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/tlvframe"
)

// readPoint reads a payout point, whose outcome and payout are BigSize
// integers in this schema.
func readPoint(r *codec.Reader) (dlcwire.PayoutPoint, error) {
	var (
		p   dlcwire.PayoutPoint
		err error
	)
	if p.EventOutcome, err = r.ReadBigSize(); err != nil {
		return p, err
	}
	if p.OutcomePayout, err = r.ReadBigSize(); err != nil {
		return p, err
	}
	p.ExtraPrecision, err = r.ReadUint16()

	return p, err
}

func writePoint(w *bytes.Buffer, p dlcwire.PayoutPoint) error {
	if err := codec.WriteBigSize(w, p.EventOutcome); err != nil {
		return err
	}
	if err := codec.WriteBigSize(w, p.OutcomePayout); err != nil {
		return err
	}

	return codec.WriteUint16(w, p.ExtraPrecision)
}

// PayoutPiece is a curve piece followed by the point it ends at.
type PayoutPiece struct {
	CurvePiece PayoutCurvePiece    `json:"payoutCurvePiece"`
	Endpoint   dlcwire.PayoutPoint `json:"endpoint"`
}

// PayoutFunction starts at Endpoint0, and each piece runs from the endpoint
// before it to its own.
type PayoutFunction struct {
	Endpoint0 dlcwire.PayoutPoint `json:"endpoint0"`
	Pieces    []PayoutPiece       `json:"pieces"`
}

// Decode reads a framed payout function.
func (pf *PayoutFunction) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, dlcwire.TypePayoutFunction,
		func(body *codec.Reader) error {
			n, err := body.ReadUint16()
			if err != nil {
				return err
			}
			if pf.Endpoint0, err = readPoint(body); err != nil {
				return err
			}

			pf.Pieces = make([]PayoutPiece, n)
			for i := range pf.Pieces {
				err := pf.Pieces[i].CurvePiece.Decode(body)
				if err != nil {
					return fmt.Errorf("payout curve piece %d: %w",
						i, err)
				}
				pf.Pieces[i].Endpoint, err = readPoint(body)
				if err != nil {
					return err
				}
			}

			return nil
		},
	)
}

// Encode writes a framed payout function.
func (pf *PayoutFunction) Encode(w *bytes.Buffer) error {
	if len(pf.Pieces) > 0xffff {
		return codec.ErrLengthOverflow
	}

	return tlvframe.Write(w, dlcwire.TypePayoutFunction,
		func(body *bytes.Buffer) error {
			err := codec.WriteUint16(body, uint16(len(pf.Pieces)))
			if err != nil {
				return err
			}
			if err := writePoint(body, pf.Endpoint0); err != nil {
				return err
			}
			for i := range pf.Pieces {
				err := pf.Pieces[i].CurvePiece.Encode(body)
				if err != nil {
					return err
				}
				err = writePoint(body, pf.Pieces[i].Endpoint)
				if err != nil {
					return err
				}
			}

			return nil
		},
	)
}

// PayoutCurvePiece is a framed curve piece. Exactly one variant is set.
type PayoutCurvePiece struct {
	Polynomial *PolynomialPiece `json:"polynomialPayoutCurvePiece,omitempty"`
	Hyperbola  *HyperbolaPiece  `json:"hyperbolaPayoutCurvePiece,omitempty"`
}

// PolynomialPiece interpolates a polynomial through its points.
type PolynomialPiece struct {
	Points []dlcwire.PayoutPoint `json:"points"`
}

// HyperbolaPiece is the hyperbola curve with its parameters in fixed point.
type HyperbolaPiece struct {
	UsePositivePiece bool       `json:"usePositivePiece"`
	TranslateOutcome FixedPoint `json:"translateOutcome"`
	TranslatePayout  FixedPoint `json:"translatePayout"`
	A                FixedPoint `json:"a"`
	B                FixedPoint `json:"b"`
	C                FixedPoint `json:"c"`
	D                FixedPoint `json:"d"`
}

// Params returns pointers to the six parameters in wire order.
func (h *HyperbolaPiece) Params() []*FixedPoint {
	return []*FixedPoint{
		&h.TranslateOutcome, &h.TranslatePayout, &h.A, &h.B, &h.C,
		&h.D,
	}
}

// Decode reads whichever curve piece record comes next.
func (p *PayoutCurvePiece) Decode(r *codec.Reader) error {
	typ, err := tlvframe.PeekType(r)
	if err != nil {
		return err
	}

	switch typ {
	case dlcwire.TypePolynomialPiece:
		p.Polynomial = &PolynomialPiece{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			n, err := body.ReadUint16()
			if err != nil {
				return err
			}

			p.Polynomial.Points = make([]dlcwire.PayoutPoint, n)
			for i := range p.Polynomial.Points {
				p.Polynomial.Points[i], err = readPoint(body)
				if err != nil {
					return err
				}
			}

			return nil
		})

	case dlcwire.TypeHyperbolaPiece:
		p.Hyperbola = &HyperbolaPiece{}

		return tlvframe.ReadExpected(r, typ, func(body *codec.Reader) error {
			p.Hyperbola.UsePositivePiece, err = body.ReadBool()
			if err != nil {
				return err
			}
			for _, param := range p.Hyperbola.Params() {
				if err := param.decode(body); err != nil {
					return err
				}
			}

			return nil
		})

	default:
		return &codec.UnknownRecordError{Type: uint64(typ)}
	}
}

// Encode writes the set variant as a framed record.
func (p *PayoutCurvePiece) Encode(w *bytes.Buffer) error {
	switch {
	case p.Polynomial != nil:
		points := p.Polynomial.Points
		if len(points) > 0xffff {
			return codec.ErrLengthOverflow
		}

		return tlvframe.Write(w, dlcwire.TypePolynomialPiece,
			func(body *bytes.Buffer) error {
				n := uint16(len(points))
				if err := codec.WriteUint16(body, n); err != nil {
					return err
				}
				for _, point := range points {
					if err := writePoint(body, point); err != nil {
						return err
					}
				}

				return nil
			},
		)

	case p.Hyperbola != nil:
		return tlvframe.Write(w, dlcwire.TypeHyperbolaPiece,
			func(body *bytes.Buffer) error {
				err := codec.WriteBool(
					body, p.Hyperbola.UsePositivePiece,
				)
				if err != nil {
					return err
				}
				for _, param := range p.Hyperbola.Params() {
					if err := param.encode(body); err != nil {
						return err
					}
				}

				return nil
			},
		)

	default:
		return codec.Invalid("empty payout curve piece")
	}
}

// RoundingIntervals is the framed rounding interval list of the older
// schema, with BigSize bounds and moduli.
type RoundingIntervals struct {
	Intervals []dlcwire.RoundingInterval `json:"intervals"`
}

// Decode reads framed rounding intervals.
func (ri *RoundingIntervals) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, dlcwire.TypeRoundingIntervals,
		func(body *codec.Reader) error {
			n, err := body.ReadUint16()
			if err != nil {
				return err
			}

			ri.Intervals = make([]dlcwire.RoundingInterval, n)
			for i := range ri.Intervals {
				interval := &ri.Intervals[i]
				interval.BeginInterval, err = body.ReadBigSize()
				if err != nil {
					return err
				}
				interval.RoundingMod, err = body.ReadBigSize()
				if err != nil {
					return err
				}
			}

			return nil
		},
	)
}

// Encode writes framed rounding intervals.
func (ri *RoundingIntervals) Encode(w *bytes.Buffer) error {
	if len(ri.Intervals) > 0xffff {
		return codec.ErrLengthOverflow
	}

	return tlvframe.Write(w, dlcwire.TypeRoundingIntervals,
		func(body *bytes.Buffer) error {
			n := uint16(len(ri.Intervals))
			if err := codec.WriteUint16(body, n); err != nil {
				return err
			}
			for _, interval := range ri.Intervals {
				err := codec.WriteBigSize(body, interval.BeginInterval)
				if err != nil {
					return err
				}
				err = codec.WriteBigSize(body, interval.RoundingMod)
				if err != nil {
					return err
				}
			}

			return nil
		},
	)
}
