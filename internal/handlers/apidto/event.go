package apidto

import (
	"time"

	"hackvote/pkg/event"
)

type Event struct {
	ID             string     `json:"id"`
	Slug           string     `json:"slug"`
	Name           string     `json:"name"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	HackathonState *string    `json:"hackathonState"`
	Phase          string     `json:"phase"`
	DisplayPhase   string     `json:"displayPhase"`
	HackStartedAt  *time.Time `json:"hackStartedAt,omitempty"`
	HackUntil      *time.Time `json:"hackUntil,omitempty"`
	VoteStartedAt  *time.Time `json:"voteStartedAt,omitempty"`
	VoteUntil      *time.Time `json:"voteUntil,omitempty"`
}

func FromEvent(ev *event.Event, now time.Time) Event {
	if ev == nil {
		return Event{}
	}

	var state *string
	if ev.HackathonState != nil {
		s := string(*ev.HackathonState)
		state = &s
	}

	return Event{
		ID:             ev.ID,
		Slug:           ev.Slug,
		Name:           ev.Name,
		StartDate:      ev.StartDate,
		EndDate:        ev.EndDate,
		HackathonState: state,
		Phase:          string(ev.Phase()),
		DisplayPhase:   string(ev.DisplayPhase(now)),
		HackStartedAt:  ev.HackStartedAt,
		HackUntil:      ev.HackUntil,
		VoteStartedAt:  ev.VoteStartedAt,
		VoteUntil:      ev.VoteUntil,
	}
}

func FromEvents(events []*event.Event, now time.Time) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		out = append(out, FromEvent(ev, now))
	}
	return out
}
