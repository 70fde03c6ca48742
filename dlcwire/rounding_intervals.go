package dlcwire

import (
	"bytes"

	"github.com/dlcgo/dlcd/codec"
)

// RoundingInterval applies RoundingMod to every payout from BeginInterval up
// to the start of the next interval.
type RoundingInterval struct {
	BeginInterval uint64 `json:"beginInterval"`
	RoundingMod   uint64 `json:"roundingMod"`
}

// RoundingIntervals lets a party accept payouts rounded to a coarser
// granularity, which reduces the number of CETs.
type RoundingIntervals struct {
	Intervals []RoundingInterval `json:"intervals"`
}

// Decode reads a BigSize count followed by the intervals.
func (ri *RoundingIntervals) Decode(r *codec.Reader) error {
	n, err := r.ReadBigSizeLen()
	if err != nil {
		return err
	}

	ri.Intervals = make([]RoundingInterval, n)
	for i := range ri.Intervals {
		ri.Intervals[i].BeginInterval, err = r.ReadUint64()
		if err != nil {
			return err
		}
		ri.Intervals[i].RoundingMod, err = r.ReadUint64()
		if err != nil {
			return err
		}
	}

	return nil
}

// Encode writes a BigSize count followed by the intervals.
func (ri *RoundingIntervals) Encode(w *bytes.Buffer) error {
	err := codec.WriteBigSize(w, uint64(len(ri.Intervals)))
	if err != nil {
		return err
	}
	for _, interval := range ri.Intervals {
		if err := codec.WriteUint64(w, interval.BeginInterval); err != nil {
			return err
		}
		if err := codec.WriteUint64(w, interval.RoundingMod); err != nil {
			return err
		}
	}

	return nil
}

// Validate checks that intervals start in strictly increasing order and that
// no rounding modulus is zero.
func (ri *RoundingIntervals) Validate() error {
	for i, interval := range ri.Intervals {
		if interval.RoundingMod == 0 {
			return codec.Invalid("rounding interval %d has zero "+
				"modulus", i)
		}
		if i == 0 {
			continue
		}

		prev := ri.Intervals[i-1].BeginInterval
		if interval.BeginInterval <= prev {
			return codec.Invalid("rounding interval %d begins at %d, "+
				"not after %d", i, interval.BeginInterval, prev)
		}
	}

	return nil
}
