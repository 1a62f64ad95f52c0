package event

import (
	"context"
	"errors"
	"time"
)

type Phase string

const (
	PhaseBeforeStart Phase = "before_start"
	PhaseHacking     Phase = "hacking"
	PhaseVoting      Phase = "voting"
	PhaseEnded       Phase = "ended"
)

var phaseOrder = []Phase{PhaseBeforeStart, PhaseHacking, PhaseVoting, PhaseEnded}

var (
	ErrEventNotFound  = errors.New("EVENT_NOT_FOUND")
	ErrEmptyEventName = errors.New("EMPTY_EVENT_NAME")
	ErrInvalidDates   = errors.New("INVALID_DATES")
	ErrInvalidPhase   = errors.New("INVALID_PHASE")
	ErrEmptyLifecycle = errors.New("EMPTY_LIFECYCLE")
	ErrPhaseClosed    = errors.New("PHASE_CLOSED")
	ErrVotingNotOpen  = errors.New("VOTING_NOT_OPEN")
	ErrSlugTaken      = errors.New("SLUG_TAKEN")
)

func ParsePhase(s string) (Phase, error) {
	p := Phase(s)
	if !p.Valid() {
		return "", ErrInvalidPhase
	}
	return p, nil
}

func (p Phase) Valid() bool {
	return p.Index() >= 0
}

// Index is the position of p in the linear lifecycle, -1 for unknown values.
func (p Phase) Index() int {
	for i, known := range phaseOrder {
		if known == p {
			return i
		}
	}
	return -1
}

func (p Phase) AllowsTeamChanges() bool {
	return p == PhaseBeforeStart || p == PhaseHacking
}

func (p Phase) AllowsAwardChanges() bool {
	return p == PhaseBeforeStart || p == PhaseHacking
}

func (p Phase) AllowsVoting() bool {
	return p == PhaseVoting
}

type Event struct {
	ID             string     `gorm:"primaryKey;type:varchar(64);column:id"`
	Slug           string     `gorm:"type:varchar(128);uniqueIndex;not null;column:slug"`
	Name           string     `gorm:"type:varchar(255);not null;column:name"`
	StartDate      time.Time  `gorm:"not null;column:start_date"`
	EndDate        time.Time  `gorm:"not null;column:end_date"`
	HackathonState *Phase     `gorm:"type:varchar(16);column:hackathon_state"`
	HackStartedAt  *time.Time `gorm:"column:hack_started_at"`
	HackUntil      *time.Time `gorm:"column:hack_until"`
	VoteStartedAt  *time.Time `gorm:"column:vote_started_at"`
	VoteUntil      *time.Time `gorm:"column:vote_until"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

// Phase is the authoritative phase used for every legality check.
// An unset state means the organizers have not opened anything yet.
func (e *Event) Phase() Phase {
	if e.HackathonState == nil {
		return PhaseBeforeStart
	}
	return *e.HackathonState
}

// DisplayPhase is what clients show. It falls back to the calendar when no state
// was persisted and must never be used to authorize a mutation.
func (e *Event) DisplayPhase(now time.Time) Phase {
	if e.HackathonState != nil {
		return *e.HackathonState
	}
	switch {
	case now.Before(e.StartDate):
		return PhaseBeforeStart
	case now.Before(e.EndDate):
		return PhaseHacking
	default:
		return PhaseEnded
	}
}

// LifecycleUpdate carries an admin override. Nil fields are left untouched.
type LifecycleUpdate struct {
	State     *Phase
	HackUntil *time.Time
	VoteUntil *time.Time
}

func (u LifecycleUpdate) Empty() bool {
	return u.State == nil && u.HackUntil == nil && u.VoteUntil == nil
}

type EventsRepo interface {
	CreateEvent(ctx context.Context, name string, start, end time.Time) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	SetLifecycle(ctx context.Context, eventID string, upd LifecycleUpdate) (*Event, error)
}
