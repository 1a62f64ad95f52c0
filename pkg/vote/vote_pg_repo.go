package vote

import (
	"context"
	"errors"
	"strings"
	"time"

	"hackvote/internal/metrics"
	"hackvote/pkg/award"
	"hackvote/pkg/dberr"
	"hackvote/pkg/event"
	"hackvote/pkg/team"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VotesRepoPg struct {
	logger *zap.SugaredLogger
	db     *gorm.DB
}

func NewVotesRepoPg(logger *zap.SugaredLogger, db *gorm.DB) *VotesRepoPg {
	return &VotesRepoPg{
		logger: logger,
		db:     db,
	}
}

// CastVote records (team, award, voter). After the referenced rows are found the
// checks run in a fixed order: voting phase, self-vote, duplicate. The existence
// check only gives a clean error early; the primary key decides races.
func (repo *VotesRepoPg) CastVote(ctx context.Context, teamID, awardID, voterID string) (cast *Vote, err error) {
	repo.logger.Debugw("CastVote()", "teamID", teamID, "awardID", awardID, "voterID", voterID)
	defer func(t time.Time) { metrics.ObserveOp("cast_vote", t, err) }(time.Now())

	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		repo.logger.Warnw("vote without voter", "teamID", teamID, "awardID", awardID)
		return nil, ErrEmptyVoter
	}

	var v Vote
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// shared lock: a concurrent member delete must see this vote or wait for it
		var tm team.Team
		if err := tx.
			Clauses(clause.Locking{Strength: "SHARE"}).
			First(&tm, "id = ?", teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				repo.logger.Warnw("team does not exist", "teamID", teamID)
				return team.ErrTeamNotFound
			}
			repo.logger.Errorw("error finding team", "teamID", teamID, "err", err)
			return err
		}

		var aw award.Award
		if err := tx.First(&aw, "id = ?", awardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				repo.logger.Warnw("award does not exist", "awardID", awardID)
				return award.ErrAwardNotFound
			}
			repo.logger.Errorw("error finding award", "awardID", awardID, "err", err)
			return err
		}

		if aw.EventID != tm.EventID {
			repo.logger.Warnw("award and team belong to different events", "teamID", teamID, "awardID", awardID)
			return ErrAwardEventMismatch
		}

		var ev event.Event
		if err := tx.First(&ev, "id = ?", tm.EventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				repo.logger.Warnw("event does not exist", "eventID", tm.EventID)
				return event.ErrEventNotFound
			}
			repo.logger.Errorw("error finding event", "eventID", tm.EventID, "err", err)
			return err
		}

		if !ev.Phase().AllowsVoting() {
			repo.logger.Warnw("voting is not open", "eventID", ev.ID, "phase", ev.Phase())
			return event.ErrVotingNotOpen
		}

		var members int64
		if err := tx.Model(&team.Membership{}).
			Where("team_id = ? AND user_id = ?", teamID, voterID).
			Count(&members).Error; err != nil {
			repo.logger.Errorw("error checking membership", "teamID", teamID, "err", err)
			return err
		}
		if members > 0 {
			repo.logger.Warnw("self vote rejected", "teamID", teamID, "voterID", voterID)
			return ErrSelfVote
		}

		var existing int64
		if err := tx.Model(&Vote{}).
			Where("team_id = ? AND award_id = ? AND user_id = ?", teamID, awardID, voterID).
			Count(&existing).Error; err != nil {
			repo.logger.Errorw("error checking existing vote", "teamID", teamID, "err", err)
			return err
		}
		if existing > 0 {
			repo.logger.Warnw("duplicate vote", "teamID", teamID, "awardID", awardID, "voterID", voterID)
			return ErrDuplicateVote
		}

		v = Vote{
			TeamID:  teamID,
			AwardID: awardID,
			UserID:  voterID,
			EventID: tm.EventID,
		}
		if err := tx.Create(&v).Error; err != nil {
			if dberr.IsUniqueViolation(err) {
				repo.logger.Warnw("duplicate vote lost the race", "teamID", teamID, "awardID", awardID, "voterID", voterID)
				return ErrDuplicateVote
			}
			repo.logger.Errorw("error inserting vote", "teamID", teamID, "err", err)
			return err
		}
		return nil
	})

	if err != nil {
		repo.logger.Warnw("vote rejected", "teamID", teamID, "awardID", awardID, "voterID", voterID, "err", err)
		return nil, err
	}

	metrics.IncVotesCast()
	repo.logger.Debugw("vote cast", "teamID", teamID, "awardID", awardID, "voterID", voterID)
	return &v, nil
}

func (repo *VotesRepoPg) ListVotes(ctx context.Context, eventID string) ([]*Vote, error) {
	repo.logger.Debugw("ListVotes()", "eventID", eventID)

	var votes []*Vote
	if err := repo.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&votes).Error; err != nil {
		repo.logger.Errorw("failed to list votes", "eventID", eventID, "err", err)
		return nil, err
	}
	return votes, nil
}

func (repo *VotesRepoPg) ListVotesByVoter(ctx context.Context, eventID, voterID string) ([]*Vote, error) {
	repo.logger.Debugw("ListVotesByVoter()", "eventID", eventID, "voterID", voterID)

	if err := event.Exists(repo.db.WithContext(ctx), eventID); err != nil {
		repo.logger.Warnw("failed to check event", "eventID", eventID, "err", err)
		return nil, err
	}

	if voterID == "" {
		return []*Vote{}, nil
	}

	var votes []*Vote
	if err := repo.db.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, voterID).
		Order("created_at ASC").
		Find(&votes).Error; err != nil {
		repo.logger.Errorw("failed to list voter votes", "eventID", eventID, "voterID", voterID, "err", err)
		return nil, err
	}
	return votes, nil
}

func (repo *VotesRepoPg) CountByTeam(ctx context.Context, teamID string) (int64, error) {
	repo.logger.Debugw("CountByTeam()", "teamID", teamID)

	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&Vote{}).
		Where("team_id = ?", teamID).
		Count(&count).Error; err != nil {
		repo.logger.Errorw("failed to count votes", "teamID", teamID, "err", err)
		return 0, err
	}
	return count, nil
}
