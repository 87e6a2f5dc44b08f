package domain

import (
	"fmt"
	"time"
)

// Status is the navigator's state machine position.
type Status string

const (
	StatusUnknown       Status = "unknown"
	StatusAt            Status = "at"
	StatusTransitioning Status = "transitioning"
	StatusFailed        Status = "failed"
)

// Position is the navigator cursor.
type Position struct {
	Status Status
	// Node is the current node for StatusAt, the last known node otherwise.
	Node string
	// Edge is the edge being executed while StatusTransitioning.
	Edge *Edge
	// Err is the failure reason while StatusFailed.
	Err error
}

func (p Position) String() string {
	switch p.Status {
	case StatusAt:
		return fmt.Sprintf("At(%s)", p.Node)
	case StatusTransitioning:
		return fmt.Sprintf("Transitioning(%s)", p.Edge)
	case StatusFailed:
		return fmt.Sprintf("Failed(%v)", p.Err)
	default:
		return "Unknown"
	}
}

// Snapshot is the persisted form of a navigator session.
type Snapshot struct {
	SessionID string         `json:"session_id"`
	Current   string         `json:"current"`
	Status    Status         `json:"status"`
	Consumed  bool           `json:"consumed,omitempty"`
	Opener    string         `json:"opener,omitempty"`
	Values    map[string]any `json:"values"`
	History   []string       `json:"history"`
	UpdatedAt time.Time      `json:"updated_at"`
}
