package team

import (
	"context"
	"errors"
	"time"

	"hackvote/pkg/user"
)

var (
	ErrTeamNotFound   = errors.New("TEAM_NOT_FOUND")
	ErrEmptyTeamName  = errors.New("EMPTY_TEAM_NAME")
	ErrNotTeamMember  = errors.New("NOT_TEAM_MEMBER")
	ErrTeamHasVotes   = errors.New("TEAM_HAS_VOTES")
	ErrAlreadyInTeam  = errors.New("ALREADY_IN_TEAM")
	ErrNoMembers      = errors.New("NO_MEMBERS")
	ErrMemberHasVoted = errors.New("MEMBER_HAS_VOTED")
)

// Team is a hack registered for one event. EventID never changes after creation.
type Team struct {
	ID                 string    `gorm:"primaryKey;type:varchar(64);column:id"`
	EventID            string    `gorm:"type:varchar(64);index;not null;column:event_id"`
	TeamName           string    `gorm:"type:varchar(255);not null;column:team_name"`
	ProjectName        *string   `gorm:"type:varchar(255);column:project_name"`
	ProjectDescription *string   `gorm:"type:text;column:project_description"`
	ProjectLink        *string   `gorm:"type:varchar(1024);column:project_link"`
	TeamImage          *string   `gorm:"type:varchar(255);column:team_image"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`

	Members []*Membership `gorm:"foreignKey:TeamID;references:ID;constraint:OnDelete:RESTRICT"`
}

// Membership joins a user to a team. The (event_id, user_id) index keeps a user
// in at most one team per event.
type Membership struct {
	TeamID    string    `gorm:"primaryKey;type:varchar(64);column:team_id"`
	UserID    string    `gorm:"primaryKey;type:varchar(64);uniqueIndex:idx_memberships_event_user,priority:2;column:user_id"`
	EventID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_memberships_event_user,priority:1;column:event_id"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// VoteRef mirrors the ledger table; the registry only counts and cascades votes.
type VoteRef struct {
	TeamID  string `gorm:"column:team_id"`
	AwardID string `gorm:"column:award_id"`
	UserID  string `gorm:"column:user_id"`
}

func (VoteRef) TableName() string {
	return "votes"
}

func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (t *Team) MemberIDs() []string {
	ids := make([]string, 0, len(t.Members))
	for _, m := range t.Members {
		ids = append(ids, m.UserID)
	}
	return ids
}

type RegisterInput struct {
	EventID            string
	TeamName           string
	MemberIDs          []string
	ProjectName        *string
	ProjectDescription *string
	ProjectLink        *string
	ImageRef           *string
}

// Patch is a partial team update. An empty string clears an optional field.
type Patch struct {
	TeamName           *string
	ProjectName        *string
	ProjectDescription *string
	ProjectLink        *string
	ImageRef           *string
	AddMembers         []string
	RemoveMembers      []string
}

type TeamsRepo interface {
	RegisterTeam(ctx context.Context, in RegisterInput, actor user.Principal) (*Team, error)
	GetTeam(ctx context.Context, teamID string) (*Team, error)
	ListTeams(ctx context.Context, eventID string) ([]*Team, error)
	// UpdateTeam returns the image reference that the patch replaced, if any.
	UpdateTeam(ctx context.Context, teamID string, patch Patch, actor user.Principal) (*Team, *string, error)
	DeleteTeam(ctx context.Context, teamID string, actor user.Principal) (*Team, error)
	IsMember(ctx context.Context, teamID, userID string) (bool, error)
}
