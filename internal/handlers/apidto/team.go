package apidto

import (
	"time"

	"hackvote/pkg/team"
)

type Team struct {
	ID                 string    `json:"id"`
	EventID            string    `json:"eventId"`
	TeamName           string    `json:"teamName"`
	ProjectName        *string   `json:"projectName,omitempty"`
	ProjectDescription *string   `json:"projectDescription,omitempty"`
	ProjectLink        *string   `json:"projectLink,omitempty"`
	ImageURL           string    `json:"imageUrl,omitempty"`
	MemberIDs          []string  `json:"memberIds"`
	MemberCount        int       `json:"memberCount"`
	CreatedAt          time.Time `json:"createdAt"`
}

// FromTeam converts t; imageURL resolves the stored image reference.
func FromTeam(t *team.Team, imageURL func(*team.Team) string) Team {
	if t == nil {
		return Team{}
	}

	members := t.MemberIDs()
	dto := Team{
		ID:                 t.ID,
		EventID:            t.EventID,
		TeamName:           t.TeamName,
		ProjectName:        t.ProjectName,
		ProjectDescription: t.ProjectDescription,
		ProjectLink:        t.ProjectLink,
		MemberIDs:          members,
		MemberCount:        len(members),
		CreatedAt:          t.CreatedAt,
	}
	if imageURL != nil {
		dto.ImageURL = imageURL(t)
	}
	return dto
}

func FromTeams(teams []*team.Team, imageURL func(*team.Team) string) []Team {
	out := make([]Team, 0, len(teams))
	for _, t := range teams {
		out = append(out, FromTeam(t, imageURL))
	}
	return out
}
