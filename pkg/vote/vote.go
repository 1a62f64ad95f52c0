package vote

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDuplicateVote      = errors.New("DUPLICATE_VOTE")
	ErrSelfVote           = errors.New("SELF_VOTE")
	ErrAwardEventMismatch = errors.New("AWARD_EVENT_MISMATCH")
	ErrEmptyVoter         = errors.New("EMPTY_VOTER")
)

// Vote is one voter's endorsement of one team for one award. The composite
// primary key is the uniqueness guarantee; rows are never updated.
type Vote struct {
	TeamID    string    `gorm:"primaryKey;type:varchar(64);column:team_id"`
	AwardID   string    `gorm:"primaryKey;type:varchar(64);column:award_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(64);column:user_id"`
	EventID   string    `gorm:"type:varchar(64);index;not null;column:event_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type VotesRepo interface {
	CastVote(ctx context.Context, teamID, awardID, voterID string) (*Vote, error)
	ListVotes(ctx context.Context, eventID string) ([]*Vote, error)
	ListVotesByVoter(ctx context.Context, eventID, voterID string) ([]*Vote, error)
	CountByTeam(ctx context.Context, teamID string) (int64, error)
}
