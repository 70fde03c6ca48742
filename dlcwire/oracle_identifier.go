package dlcwire

import (
	"bytes"
	"unicode/utf8"

	"github.com/dlcgo/dlcd/codec"
)

// OracleIdentifier names an oracle and binds the name to its public key.
// The current encoding carries no body length after the type.
type OracleIdentifier struct {
	OracleName   string      `json:"oracleName"`
	OraclePubKey XOnlyPubKey `json:"oraclePubkey"`
}

// A compile time check to ensure OracleIdentifier implements the
// Serializable interface.
var _ Serializable = (*OracleIdentifier)(nil)

// Decode reads an oracle identifier, asserting its type.
func (o *OracleIdentifier) Decode(r *codec.Reader) error {
	typ, err := r.ReadBigSize()
	if err != nil {
		return err
	}
	err = codec.NewTypeMismatch(uint64(TypeOracleIdentifier), typ)
	if err != nil {
		return err
	}

	return o.DecodeBody(r)
}

// Encode writes the oracle identifier.
func (o *OracleIdentifier) Encode(w *bytes.Buffer) error {
	if err := codec.WriteBigSize(w, uint64(TypeOracleIdentifier)); err != nil {
		return err
	}

	return o.EncodeBody(w)
}

// EncodeBody writes everything after the type. It is shared with the
// length-prefixed encoding of the older schema.
func (o *OracleIdentifier) EncodeBody(w *bytes.Buffer) error {
	if err := codec.WriteVarBytes(w, []byte(o.OracleName)); err != nil {
		return err
	}

	return codec.WriteBytes(w, o.OraclePubKey[:])
}

// DecodeBody reads everything after the type.
func (o *OracleIdentifier) DecodeBody(r *codec.Reader) error {
	name, err := r.ReadVarBytes()
	if err != nil {
		return err
	}
	o.OracleName = string(name)

	return r.ReadFixed(o.OraclePubKey[:])
}

// Validate checks that the name is non-empty UTF-8.
func (o *OracleIdentifier) Validate() error {
	if len(o.OracleName) == 0 {
		return codec.Invalid("empty oracle name")
	}
	if !utf8.ValidString(o.OracleName) {
		return codec.Invalid("oracle name is not valid utf-8")
	}

	return nil
}
