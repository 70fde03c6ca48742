package dlcdb

import (
	"fmt"
	"time"

	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/dlcwire/pre163"
	"github.com/vmihailenco/msgpack/v5"
)

// Schema identifies the wire schema a stored message was encoded with.
type Schema uint8

const (
	// SchemaPre163 marks messages in the layout that predates protocol
	// versions.
	SchemaPre163 Schema = 0

	// SchemaCurrent marks messages in the current layout.
	SchemaCurrent Schema = 1
)

// String returns the name of the schema.
func (s Schema) String() string {
	switch s {
	case SchemaPre163:
		return "pre163"
	case SchemaCurrent:
		return "current"
	default:
		return fmt.Sprintf("schema(%d)", uint8(s))
	}
}

// envelope is the stored form of a message. Wire is opaque to the
// envelope; Schema says how to decode it.
type envelope struct {
	Schema  Schema    `msgpack:"schema"`
	SavedAt time.Time `msgpack:"saved_at"`
	Wire    []byte    `msgpack:"wire"`
}

func (d *DB) newEnvelope(schema Schema, msg dlcwire.Message) ([]byte,
	error) {

	wire, err := dlcwire.Serialize(msg)
	if err != nil {
		return nil, err
	}

	return msgpack.Marshal(&envelope{
		Schema:  schema,
		SavedAt: d.opts.clock.Now().UTC(),
		Wire:    wire,
	})
}

func decodeEnvelope(b []byte) (*envelope, error) {
	var env envelope
	if err := msgpack.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("unable to decode envelope: %w", err)
	}

	return &env, nil
}

// message decodes the wrapped message in the current schema, upgrading it
// if it was stored in the older one.
func (e *envelope) message() (dlcwire.Message, error) {
	switch e.Schema {
	case SchemaCurrent:
		return dlcwire.DecodeMessage(e.Wire)

	case SchemaPre163:
		old, err := pre163.DecodeMessage(e.Wire)
		if err != nil {
			return nil, err
		}

		return pre163.FromPre163(old)

	default:
		return nil, fmt.Errorf("unknown schema %v", e.Schema)
	}
}

// Record is a stored message together with its bookkeeping.
type Record struct {
	Kind    Kind
	ID      dlcwire.ContractID
	Schema  Schema
	SavedAt time.Time

	// Msg is the message in the current schema.
	Msg dlcwire.Message
}

func newRecord(key, value []byte) (*Record, error) {
	env, err := decodeEnvelope(value)
	if err != nil {
		return nil, err
	}

	msg, err := env.message()
	if err != nil {
		return nil, fmt.Errorf("%v record %x: %w", Kind(key[0]), key[1:],
			err)
	}

	rec := &Record{
		Kind:    Kind(key[0]),
		Schema:  env.Schema,
		SavedAt: env.SavedAt,
		Msg:     msg,
	}
	copy(rec.ID[:], key[1:])

	return rec, nil
}
