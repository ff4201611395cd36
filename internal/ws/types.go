package ws

import (
	"encoding/json"

	"github.com/mohitdudhat22/Task-Management-App/internal/domain"
)

// server - client
const (
	MsgReady = "ready"
)

// Frame is the envelope every subscriber receives.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// EncodeFrame renders ev under its client-facing name.
func EncodeFrame(ev domain.Event) ([]byte, error) {
	data, err := json.Marshal(ev.Payload())
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: domain.WireName(ev.Name), Data: data})
}
