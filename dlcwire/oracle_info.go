package dlcwire

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dlcgo/dlcd/codec"
	"github.com/lightningnetwork/lnd/fn/v2"
)

const (
	oracleInfoSingle uint64 = 0
	oracleInfoMulti  uint64 = 1
)

// OracleInfo is a tagged union describing the oracle(s) a contract relies on.
// Exactly one variant is set.
type OracleInfo struct {
	Single *SingleOracleInfo `json:"single,omitempty"`
	Multi  *MultiOracleInfo  `json:"multi,omitempty"`
}

// SingleOracleInfo relies on the attestation of a single oracle.
type SingleOracleInfo struct {
	Announcement OracleAnnouncement `json:"oracleAnnouncement"`
}

// OracleParams bounds how far apart the attestations of multiple numeric
// oracles may be.
type OracleParams struct {
	MaxErrorExp      uint16 `json:"maxErrorExp"`
	MinFailExp       uint16 `json:"minFailExp"`
	MaximizeCoverage bool   `json:"maximizeCoverage"`
}

// MultiOracleInfo requires Threshold of the announced oracles to agree.
type MultiOracleInfo struct {
	Threshold     uint16
	Announcements []OracleAnnouncement
	Params        fn.Option[OracleParams]
}

// multiOracleInfoJSON is the JSON shape of MultiOracleInfo. The optional
// params are a pointer so that an absent value is omitted.
type multiOracleInfoJSON struct {
	Threshold     uint16               `json:"threshold"`
	Announcements []OracleAnnouncement `json:"oracleAnnouncements"`
	Params        *OracleParams        `json:"oracleParams,omitempty"`
}

// MarshalJSON encodes the info with optional params omitted when unset.
func (m MultiOracleInfo) MarshalJSON() ([]byte, error) {
	j := multiOracleInfoJSON{
		Threshold:     m.Threshold,
		Announcements: m.Announcements,
	}
	m.Params.WhenSome(func(p OracleParams) {
		j.Params = &p
	})

	return json.Marshal(j)
}

// UnmarshalJSON decodes the output of MarshalJSON.
func (m *MultiOracleInfo) UnmarshalJSON(b []byte) error {
	var j multiOracleInfoJSON
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}

	m.Threshold = j.Threshold
	m.Announcements = j.Announcements
	m.Params = fn.None[OracleParams]()
	if j.Params != nil {
		m.Params = fn.Some(*j.Params)
	}

	return nil
}

// Decode reads the oracle info sub-type and its body.
func (o *OracleInfo) Decode(r *codec.Reader) error {
	variant, err := r.ReadBigSize()
	if err != nil {
		return err
	}

	switch variant {
	case oracleInfoSingle:
		o.Single = &SingleOracleInfo{}
		return o.Single.Announcement.Decode(r)

	case oracleInfoMulti:
		o.Multi = &MultiOracleInfo{}
		return o.Multi.decode(r)

	default:
		return fmt.Errorf("oracle info: %w",
			&codec.UnknownRecordError{Type: variant})
	}
}

func (m *MultiOracleInfo) decode(r *codec.Reader) error {
	var err error
	if m.Threshold, err = r.ReadUint16(); err != nil {
		return err
	}

	n, err := r.ReadBigSizeLen()
	if err != nil {
		return err
	}
	m.Announcements = make([]OracleAnnouncement, n)
	for i := range m.Announcements {
		if err := m.Announcements[i].Decode(r); err != nil {
			return err
		}
	}

	hasParams, err := r.ReadBool()
	if err != nil {
		return err
	}
	if !hasParams {
		m.Params = fn.None[OracleParams]()
		return nil
	}

	var p OracleParams
	if p.MaxErrorExp, err = r.ReadUint16(); err != nil {
		return err
	}
	if p.MinFailExp, err = r.ReadUint16(); err != nil {
		return err
	}
	if p.MaximizeCoverage, err = r.ReadBool(); err != nil {
		return err
	}
	m.Params = fn.Some(p)

	return nil
}

// Encode writes the oracle info sub-type and its body.
func (o *OracleInfo) Encode(w *bytes.Buffer) error {
	switch {
	case o.Single != nil:
		if err := codec.WriteBigSize(w, oracleInfoSingle); err != nil {
			return err
		}
		return o.Single.Announcement.Encode(w)

	case o.Multi != nil:
		if err := codec.WriteBigSize(w, oracleInfoMulti); err != nil {
			return err
		}
		return o.Multi.encode(w)

	default:
		return codec.Invalid("empty oracle info")
	}
}

func (m *MultiOracleInfo) encode(w *bytes.Buffer) error {
	if err := codec.WriteUint16(w, m.Threshold); err != nil {
		return err
	}

	err := codec.WriteBigSize(w, uint64(len(m.Announcements)))
	if err != nil {
		return err
	}
	for i := range m.Announcements {
		if err := m.Announcements[i].Encode(w); err != nil {
			return err
		}
	}

	if m.Params.IsNone() {
		return codec.WriteBool(w, false)
	}

	p := m.Params.UnsafeFromSome()
	if err := codec.WriteBool(w, true); err != nil {
		return err
	}
	if err := codec.WriteUint16(w, p.MaxErrorExp); err != nil {
		return err
	}
	if err := codec.WriteUint16(w, p.MinFailExp); err != nil {
		return err
	}

	return codec.WriteBool(w, p.MaximizeCoverage)
}

// Announcements returns every announcement referenced by the info.
func (o *OracleInfo) Announcements() []OracleAnnouncement {
	switch {
	case o.Single != nil:
		return []OracleAnnouncement{o.Single.Announcement}
	case o.Multi != nil:
		return o.Multi.Announcements
	default:
		return nil
	}
}

// ClosestMaturity returns the earliest maturity epoch of the referenced
// events.
func (o *OracleInfo) ClosestMaturity() (uint32, error) {
	anns := o.Announcements()
	if len(anns) == 0 {
		return 0, codec.Invalid("oracle info has no announcements")
	}

	closest := anns[0].OracleEvent.EventMaturityEpoch
	for _, ann := range anns[1:] {
		if ann.OracleEvent.EventMaturityEpoch < closest {
			closest = ann.OracleEvent.EventMaturityEpoch
		}
	}

	return closest, nil
}

// Validate checks that exactly one variant is set, that the threshold of a
// multi oracle info is reachable and that each announcement is sound.
func (o *OracleInfo) Validate() error {
	switch {
	case o.Single != nil && o.Multi != nil:
		return codec.Invalid("oracle info has two variants")

	case o.Single != nil:
		return o.Single.Announcement.Validate()

	case o.Multi != nil:
		n := len(o.Multi.Announcements)
		if o.Multi.Threshold == 0 || int(o.Multi.Threshold) > n {
			return codec.Invalid("oracle threshold %d of %d",
				o.Multi.Threshold, n)
		}
		for i := range o.Multi.Announcements {
			err := o.Multi.Announcements[i].Validate()
			if err != nil {
				return fmt.Errorf("announcement %d: %w", i, err)
			}
		}

		return nil

	default:
		return codec.Invalid("empty oracle info")
	}
}
