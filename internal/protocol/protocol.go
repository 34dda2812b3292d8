package protocol

import (
	"encoding/json"

	"github.com/google/uuid"
)

const Version = "1.0"

// Message types.
const (
	TypeHello         = "HELLO"
	TypeWelcome       = "WELCOME"
	TypeLocate        = "LOCATE"
	TypeLocateResult  = "LOCATE_RESULT"
	TypeDecide        = "DECIDE"
	TypeDecideResult  = "DECIDE_RESULT"
	TypeResolve       = "RESOLVE"
	TypeResolveResult = "RESOLVE_RESULT"
	TypeError         = "ERROR"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// NewRequestID returns a fresh id for requests that arrive without one.
func NewRequestID() string { return uuid.NewString() }
