package notify

import "time"

// Change kinds pushed to live clients.
const (
	KindTeamRegistered = "TEAM_REGISTERED"
	KindTeamUpdated    = "TEAM_UPDATED"
	KindTeamDeleted    = "TEAM_DELETED"
	KindAwardCreated   = "AWARD_CREATED"
	KindVoteCast       = "VOTE_CAST"
	KindPhaseChanged   = "PHASE_CHANGED"
)

type Change struct {
	EventID   string    `json:"eventId"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Notifier relays committed state changes. Publish must not block the caller.
type Notifier interface {
	Publish(change Change)
}
