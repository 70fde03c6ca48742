package pre163

import (
	"bytes"

	"github.com/dlcgo/dlcd/codec"
	"github.com/dlcgo/dlcd/dlcwire"
	"github.com/dlcgo/dlcd/tlvframe"
)

// OracleIdentifier is an oracle identifier framed with a length, as the
// older schema writes it. The body is the same as in the current schema.
type OracleIdentifier struct {
	dlcwire.OracleIdentifier
}

// A compile time check to ensure OracleIdentifier implements the
// dlcwire.Serializable interface.
var _ dlcwire.Serializable = (*OracleIdentifier)(nil)

// Decode reads a framed oracle identifier.
func (o *OracleIdentifier) Decode(r *codec.Reader) error {
	return tlvframe.ReadExpected(r, dlcwire.TypeOracleIdentifier,
		o.OracleIdentifier.DecodeBody)
}

// Encode writes a framed oracle identifier.
func (o *OracleIdentifier) Encode(w *bytes.Buffer) error {
	return tlvframe.Write(w, dlcwire.TypeOracleIdentifier,
		o.OracleIdentifier.EncodeBody)
}

// OracleIdentifierToPre163 wraps a current oracle identifier.
func OracleIdentifierToPre163(id *dlcwire.OracleIdentifier) *OracleIdentifier {
	return &OracleIdentifier{OracleIdentifier: *id}
}

// OracleIdentifierFromPre163 unwraps an older oracle identifier.
func OracleIdentifierFromPre163(id *OracleIdentifier) *dlcwire.OracleIdentifier {
	cur := id.OracleIdentifier
	return &cur
}
