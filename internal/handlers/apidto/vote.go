package apidto

import (
	"time"

	"hackvote/pkg/award"
	"hackvote/pkg/vote"
)

type Award struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromAward(a *award.Award) Award {
	if a == nil {
		return Award{}
	}
	return Award{
		ID:        a.ID,
		EventID:   a.EventID,
		Name:      a.Name,
		CreatedAt: a.CreatedAt,
	}
}

func FromAwards(awards []*award.Award) []Award {
	out := make([]Award, 0, len(awards))
	for _, a := range awards {
		out = append(out, FromAward(a))
	}
	return out
}

type Vote struct {
	TeamID    string    `json:"teamId"`
	AwardID   string    `json:"awardId"`
	UserID    string    `json:"userId"`
	EventID   string    `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromVote(v *vote.Vote) Vote {
	if v == nil {
		return Vote{}
	}
	return Vote{
		TeamID:    v.TeamID,
		AwardID:   v.AwardID,
		UserID:    v.UserID,
		EventID:   v.EventID,
		CreatedAt: v.CreatedAt,
	}
}

func FromVotes(votes []*vote.Vote) []Vote {
	out := make([]Vote, 0, len(votes))
	for _, v := range votes {
		out = append(out, FromVote(v))
	}
	return out
}
