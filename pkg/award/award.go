package award

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAwardNotFound  = errors.New("AWARD_NOT_FOUND")
	ErrAwardExists    = errors.New("AWARD_EXISTS")
	ErrEmptyAwardName = errors.New("EMPTY_AWARD_NAME")
)

// Award is a voting category of one event. Awards have no update path, so they
// are fixed once voting starts.
type Award struct {
	ID        string    `gorm:"primaryKey;type:varchar(64);column:id"`
	EventID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_awards_event_name,priority:1;column:event_id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_awards_event_name,priority:2;column:name"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

type AwardsRepo interface {
	CreateAward(ctx context.Context, eventID, name string) (*Award, error)
	GetAward(ctx context.Context, awardID string) (*Award, error)
	ListAwards(ctx context.Context, eventID string) ([]*Award, error)
}
