package dlcwire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the JSON form of a top-level message: its wire type next to
// the message body.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Message json.RawMessage `json:"message"`
}

// MessageToJSON wraps msg in an Envelope and encodes it.
func MessageToJSON(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal %v: %w", msg.MsgType(),
			err)
	}

	return json.Marshal(Envelope{
		Type:    msg.MsgType(),
		Message: body,
	})
}

// MessageFromJSON decodes an Envelope produced by MessageToJSON into the
// concrete message named by its type.
func MessageFromJSON(b []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, err
	}

	msg, err := makeEmptyMessage(env.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(env.Message, msg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal %v: %w", env.Type,
			err)
	}

	return msg, nil
}
