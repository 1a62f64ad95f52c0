package ranking

import (
	"sort"
	"time"

	"hackvote/pkg/team"
	"hackvote/pkg/vote"
)

// Tally maps teamID -> awardID -> number of votes.
type Tally map[string]map[string]int

// Standing is one row of a ranking or a per-award leaderboard.
type Standing struct {
	Rank     int            `json:"rank"`
	TeamID   string         `json:"teamId"`
	TeamName string         `json:"teamName"`
	Total    int            `json:"total"`
	ByAward  map[string]int `json:"byAward,omitempty"`
	created  time.Time
}

func NewTally(votes []*vote.Vote) Tally {
	t := make(Tally)
	for _, v := range votes {
		if v == nil {
			continue
		}
		byAward, ok := t[v.TeamID]
		if !ok {
			byAward = make(map[string]int)
			t[v.TeamID] = byAward
		}
		byAward[v.AwardID]++
	}
	return t
}

func (t Tally) Count(teamID, awardID string) int {
	return t[teamID][awardID]
}

func (t Tally) Total(teamID string) int {
	total := 0
	for _, n := range t[teamID] {
		total += n
	}
	return total
}

// Rank orders teams by their total across all awards. Ties go to the earlier
// registration, then to the lower team id. Votes for teams not in the list are
// ignored.
func Rank(teams []*team.Team, t Tally) []Standing {
	standings := make([]Standing, 0, len(teams))
	for _, tm := range teams {
		byAward := make(map[string]int, len(t[tm.ID]))
		for awardID, n := range t[tm.ID] {
			byAward[awardID] = n
		}
		standings = append(standings, Standing{
			TeamID:   tm.ID,
			TeamName: tm.TeamName,
			Total:    t.Total(tm.ID),
			ByAward:  byAward,
			created:  tm.CreatedAt,
		})
	}
	order(standings)
	return standings
}

// Leaderboard is Rank restricted to one award. Teams without votes are included
// with a zero total.
func Leaderboard(teams []*team.Team, t Tally, awardID string) []Standing {
	standings := make([]Standing, 0, len(teams))
	for _, tm := range teams {
		standings = append(standings, Standing{
			TeamID:   tm.ID,
			TeamName: tm.TeamName,
			Total:    t.Count(tm.ID, awardID),
			created:  tm.CreatedAt,
		})
	}
	order(standings)
	return standings
}

func order(standings []Standing) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		if !a.created.Equal(b.created) {
			return a.created.Before(b.created)
		}
		return a.TeamID < b.TeamID
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
}
