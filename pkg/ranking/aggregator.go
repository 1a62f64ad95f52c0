package ranking

import (
	"context"

	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/team"
	"hackvote/pkg/vote"

	"go.uber.org/zap"
)

// Aggregator projects the ledger into standings. It keeps no state of its own,
// every call reads the current teams and votes.
type Aggregator struct {
	logger *zap.SugaredLogger
	events event.EventsRepo
	teams  team.TeamsRepo
	awards award.AwardsRepo
	votes  vote.VotesRepo
}

type AwardLeaderboard struct {
	AwardID   string     `json:"awardId"`
	AwardName string     `json:"awardName"`
	Standings []Standing `json:"standings"`
}

func NewAggregator(logger *zap.SugaredLogger, events event.EventsRepo, teams team.TeamsRepo, awards award.AwardsRepo, votes vote.VotesRepo) *Aggregator {
	return &Aggregator{
		logger: logger,
		events: events,
		teams:  teams,
		awards: awards,
		votes:  votes,
	}
}

func (a *Aggregator) TallyEvent(ctx context.Context, eventID string) (Tally, error) {
	a.logger.Debugw("TallyEvent()", "eventID", eventID)

	if _, err := a.events.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}

	votes, err := a.votes.ListVotes(ctx, eventID)
	if err != nil {
		a.logger.Errorw("failed to load votes", "eventID", eventID, "err", err)
		return nil, err
	}
	return NewTally(votes), nil
}

func (a *Aggregator) RankEvent(ctx context.Context, eventID string) ([]Standing, error) {
	a.logger.Debugw("RankEvent()", "eventID", eventID)

	teams, t, err := a.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return Rank(teams, t), nil
}

func (a *Aggregator) Leaderboard(ctx context.Context, eventID, awardID string) (*AwardLeaderboard, error) {
	a.logger.Debugw("Leaderboard()", "eventID", eventID, "awardID", awardID)

	aw, err := a.awards.GetAward(ctx, awardID)
	if err != nil {
		return nil, err
	}
	if aw.EventID != eventID {
		a.logger.Warnw("award belongs to another event", "eventID", eventID, "awardID", awardID)
		return nil, award.ErrAwardNotFound
	}

	teams, t, err := a.load(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &AwardLeaderboard{
		AwardID:   aw.ID,
		AwardName: aw.Name,
		Standings: Leaderboard(teams, t, aw.ID),
	}, nil
}

// AwardLeaderboards returns one leaderboard per award, in catalog order.
func (a *Aggregator) AwardLeaderboards(ctx context.Context, eventID string) ([]AwardLeaderboard, error) {
	a.logger.Debugw("AwardLeaderboards()", "eventID", eventID)

	teams, t, err := a.load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	awards, err := a.awards.ListAwards(ctx, eventID)
	if err != nil {
		return nil, err
	}

	boards := make([]AwardLeaderboard, 0, len(awards))
	for _, aw := range awards {
		boards = append(boards, AwardLeaderboard{
			AwardID:   aw.ID,
			AwardName: aw.Name,
			Standings: Leaderboard(teams, t, aw.ID),
		})
	}
	return boards, nil
}

func (a *Aggregator) load(ctx context.Context, eventID string) ([]*team.Team, Tally, error) {
	t, err := a.TallyEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	teams, err := a.teams.ListTeams(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return teams, t, nil
}
