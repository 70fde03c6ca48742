package dlcdb

import (
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

const (
	// DefaultOpenTimeout is how long Open waits for the file lock held by
	// another process before giving up.
	DefaultOpenTimeout = 5 * time.Second
)

// Options holds parameters for tuning and customizing a DB.
type Options struct {
	// OpenTimeout bounds the wait for the database file lock. Zero waits
	// forever.
	OpenTimeout time.Duration

	// NoFreelistSync skips syncing the freelist to disk, trading a slower
	// open after a crash for faster writes.
	NoFreelistSync bool

	// ReadOnly opens the database without write access. Migrations fail
	// on a read-only database.
	ReadOnly bool

	// clock stamps every record written to the store.
	clock clock.Clock
}

// DefaultOptions returns an Options populated with default values.
func DefaultOptions() Options {
	return Options{
		OpenTimeout:    DefaultOpenTimeout,
		NoFreelistSync: true,
		clock:          clock.NewDefaultClock(),
	}
}

// OptionModifier is a function signature for modifying the default Options.
type OptionModifier func(*Options)

// OptionOpenTimeout sets how long to wait for the file lock.
func OptionOpenTimeout(timeout time.Duration) OptionModifier {
	return func(o *Options) {
		o.OpenTimeout = timeout
	}
}

// OptionNoFreelistSync toggles syncing of the freelist.
func OptionNoFreelistSync(b bool) OptionModifier {
	return func(o *Options) {
		o.NoFreelistSync = b
	}
}

// OptionReadOnly opens the database read-only.
func OptionReadOnly(b bool) OptionModifier {
	return func(o *Options) {
		o.ReadOnly = b
	}
}

// OptionClock sets a non-default clock dependency.
func OptionClock(clock clock.Clock) OptionModifier {
	return func(o *Options) {
		o.clock = clock
	}
}
