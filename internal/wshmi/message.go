package wshmi

import "time"

// Message is the envelope exchanged with the WebHMI server in both directions.
type Message struct {
	ServerID  string         `json:"SrvID"`
	NetworkID int            `json:"NetID"`
	DeviceID  int            `json:"DevID"`
	Data      map[string]any `json:"Data"`
	Timestamp int64          `json:"Stamp"` // seconds since the Unix epoch
}

// StampMillis returns the message timestamp in milliseconds.
func (m Message) StampMillis() int64 {
	return m.Timestamp * 1000
}

// State is the link state. Ordinals index the ConnStates display list.
type State int

const (
	StateConnecting State = iota
	StateConnected
	StateDisconnecting
	StateDisconnected
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDisconnecting:
		return "disconnecting"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Status reports a link state change.
type Status struct {
	State State
	Err   error
	At    time.Time
}
