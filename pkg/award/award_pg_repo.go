package award

import (
	"context"
	"errors"
	"strings"
	"time"

	"hackvote/internal/metrics"
	"hackvote/pkg/dberr"
	"hackvote/pkg/event"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AwardsRepoPg struct {
	logger *zap.SugaredLogger
	db     *gorm.DB
}

func NewAwardsRepoPg(logger *zap.SugaredLogger, db *gorm.DB) *AwardsRepoPg {
	return &AwardsRepoPg{
		logger: logger,
		db:     db,
	}
}

func (repo *AwardsRepoPg) CreateAward(ctx context.Context, eventID, name string) (created *Award, err error) {
	repo.logger.Debugw("CreateAward()", "eventID", eventID, "name", name)
	defer func(t time.Time) { metrics.ObserveOp("create_award", t, err) }(time.Now())

	name = strings.TrimSpace(name)
	if name == "" {
		repo.logger.Warnw("award name is empty", "eventID", eventID)
		return nil, ErrEmptyAwardName
	}

	var award Award
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev event.Event
		if err := tx.First(&ev, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				repo.logger.Warnw("event does not exist", "eventID", eventID)
				return event.ErrEventNotFound
			}
			repo.logger.Errorw("error finding event", "eventID", eventID, "err", err)
			return err
		}

		if !ev.Phase().AllowsAwardChanges() {
			repo.logger.Warnw("award creation after voting opened", "eventID", eventID, "phase", ev.Phase())
			return event.ErrPhaseClosed
		}

		var count int64
		if err := tx.Model(&Award{}).
			Where("event_id = ? AND name = ?", eventID, name).
			Count(&count).Error; err != nil {
			repo.logger.Errorw("error checking award name", "eventID", eventID, "err", err)
			return err
		}
		if count > 0 {
			repo.logger.Warnw("award already exists", "eventID", eventID, "name", name)
			return ErrAwardExists
		}

		award = Award{
			ID:      uuid.NewString(),
			EventID: eventID,
			Name:    name,
		}
		if err := tx.Create(&award).Error; err != nil {
			if dberr.IsUniqueViolation(err) {
				repo.logger.Warnw("award already exists", "eventID", eventID, "name", name)
				return ErrAwardExists
			}
			repo.logger.Errorw("error creating award", "eventID", eventID, "err", err)
			return err
		}
		return nil
	})

	if err != nil {
		repo.logger.Errorw("failed to create award", "eventID", eventID, "name", name, "err", err)
		return nil, err
	}

	repo.logger.Debugw("award created", "awardID", award.ID, "eventID", eventID)
	return &award, nil
}

func (repo *AwardsRepoPg) GetAward(ctx context.Context, awardID string) (*Award, error) {
	repo.logger.Debugw("GetAward()", "awardID", awardID)

	var award Award
	if err := repo.db.WithContext(ctx).First(&award, "id = ?", awardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			repo.logger.Warnw("award not found", "awardID", awardID)
			return nil, ErrAwardNotFound
		}
		repo.logger.Errorw("failed to query award", "awardID", awardID, "err", err)
		return nil, err
	}
	return &award, nil
}

// ListAwards keeps creation order, which is also the display order of the ballot.
func (repo *AwardsRepoPg) ListAwards(ctx context.Context, eventID string) ([]*Award, error) {
	repo.logger.Debugw("ListAwards()", "eventID", eventID)

	if err := event.Exists(repo.db.WithContext(ctx), eventID); err != nil {
		repo.logger.Warnw("failed to check event", "eventID", eventID, "err", err)
		return nil, err
	}

	var awards []*Award
	if err := repo.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&awards).Error; err != nil {
		repo.logger.Errorw("failed to list awards", "eventID", eventID, "err", err)
		return nil, err
	}
	return awards, nil
}
