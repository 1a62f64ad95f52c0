package event

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"hackvote/internal/metrics"
	"hackvote/pkg/dberr"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	maxSlugAttempts     = 50
	createEventAttempts = 3
)

type EventsRepoPg struct {
	logger *zap.SugaredLogger
	db     *gorm.DB
	now    func() time.Time
}

func NewEventsRepoPg(logger *zap.SugaredLogger, db *gorm.DB) *EventsRepoPg {
	return &EventsRepoPg{
		logger: logger,
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (repo *EventsRepoPg) CreateEvent(ctx context.Context, name string, start, end time.Time) (ev *Event, err error) {
	repo.logger.Debugw("CreateEvent()", "name", name, "start", start, "end", end)
	defer func(t time.Time) { metrics.ObserveOp("create_event", t, err) }(time.Now())

	name = strings.TrimSpace(name)
	if name == "" {
		repo.logger.Warnw("event name is empty")
		return nil, ErrEmptyEventName
	}
	if end.Before(start) {
		repo.logger.Warnw("event ends before it starts", "start", start, "end", end)
		return nil, ErrInvalidDates
	}

	// a concurrent create can take the slug between the pick and the insert
	for attempt := 1; attempt <= createEventAttempts; attempt++ {
		err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			eventSlug, err := repo.freeSlugInTx(tx, name)
			if err != nil {
				return err
			}

			ev = &Event{
				ID:        uuid.NewString(),
				Slug:      eventSlug,
				Name:      name,
				StartDate: start.UTC(),
				EndDate:   end.UTC(),
			}
			if err := tx.Create(ev).Error; err != nil {
				if dberr.IsUniqueViolation(err) {
					return ErrSlugTaken
				}
				repo.logger.Errorw("error creating event", "name", name, "err", err)
				return err
			}
			return nil
		})
		if !errors.Is(err, ErrSlugTaken) {
			break
		}
		repo.logger.Warnw("event slug taken concurrently", "name", name, "attempt", attempt)
	}

	if err != nil {
		repo.logger.Errorw("failed to create event", "name", name, "err", err)
		return nil, err
	}

	repo.logger.Debugw("event created", "eventID", ev.ID, "slug", ev.Slug)
	return ev, nil
}

// freeSlugInTx picks the first unused slug among base, base-2, base-3...
// The unique index still guards against a concurrent insert of the same slug.
func (repo *EventsRepoPg) freeSlugInTx(tx *gorm.DB, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "event"
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		var count int64
		if err := tx.Model(&Event{}).Where("slug = ?", candidate).Count(&count).Error; err != nil {
			repo.logger.Errorw("error checking slug", "slug", candidate, "err", err)
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}

	// fall back to an opaque suffix, collisions here are practically impossible
	return base + "-" + uuid.NewString()[:8], nil
}

func (repo *EventsRepoPg) GetEvent(ctx context.Context, eventID string) (*Event, error) {
	repo.logger.Debugw("GetEvent()", "eventID", eventID)

	var ev Event
	if err := repo.db.WithContext(ctx).First(&ev, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			repo.logger.Warnw("event not found", "eventID", eventID)
			return nil, ErrEventNotFound
		}
		repo.logger.Errorw("failed to query event", "eventID", eventID, "err", err)
		return nil, err
	}

	return &ev, nil
}

// Exists lets the other repos turn a read on an unknown event into ErrEventNotFound
// instead of an empty list.
func Exists(db *gorm.DB, eventID string) error {
	var count int64
	if err := db.Model(&Event{}).Where("id = ?", eventID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (repo *EventsRepoPg) GetEventBySlug(ctx context.Context, eventSlug string) (*Event, error) {
	repo.logger.Debugw("GetEventBySlug()", "slug", eventSlug)

	var ev Event
	if err := repo.db.WithContext(ctx).First(&ev, "slug = ?", eventSlug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			repo.logger.Warnw("event not found", "slug", eventSlug)
			return nil, ErrEventNotFound
		}
		repo.logger.Errorw("failed to query event", "slug", eventSlug, "err", err)
		return nil, err
	}

	return &ev, nil
}

func (repo *EventsRepoPg) ListEvents(ctx context.Context) ([]*Event, error) {
	repo.logger.Debugw("ListEvents()")

	var events []*Event
	if err := repo.db.WithContext(ctx).
		Order("start_date DESC").
		Order("id ASC").
		Find(&events).Error; err != nil {
		repo.logger.Errorw("failed to list events", "err", err)
		return nil, err
	}

	return events, nil
}

func (repo *EventsRepoPg) SetLifecycle(ctx context.Context, eventID string, upd LifecycleUpdate) (ev *Event, err error) {
	repo.logger.Debugw("SetLifecycle()", "eventID", eventID, "state", upd.State)
	defer func(t time.Time) { metrics.ObserveOp("set_lifecycle", t, err) }(time.Now())

	if upd.Empty() {
		repo.logger.Warnw("empty lifecycle update", "eventID", eventID)
		return nil, ErrEmptyLifecycle
	}
	if upd.State != nil && !upd.State.Valid() {
		repo.logger.Warnw("invalid phase", "eventID", eventID, "state", *upd.State)
		return nil, ErrInvalidPhase
	}

	var updated Event
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&updated, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				repo.logger.Warnw("event not found", "eventID", eventID)
				return ErrEventNotFound
			}
			repo.logger.Errorw("error loading event", "eventID", eventID, "err", err)
			return err
		}

		now := repo.now()
		columns := []string{"updated_at"}

		if upd.State != nil {
			prev := updated.Phase()
			next := *upd.State
			if next.Index() < prev.Index() {
				repo.logger.Warnw("lifecycle moved backwards", "eventID", eventID, "from", prev, "to", next)
			}

			updated.HackathonState = &next
			columns = append(columns, "hackathon_state")

			if next != prev {
				switch next {
				case PhaseHacking:
					updated.HackStartedAt = &now
					columns = append(columns, "hack_started_at")
				case PhaseVoting:
					updated.VoteStartedAt = &now
					columns = append(columns, "vote_started_at")
				}
			}
		}
		if upd.HackUntil != nil {
			hackUntil := upd.HackUntil.UTC()
			updated.HackUntil = &hackUntil
			columns = append(columns, "hack_until")
		}
		if upd.VoteUntil != nil {
			voteUntil := upd.VoteUntil.UTC()
			updated.VoteUntil = &voteUntil
			columns = append(columns, "vote_until")
		}
		updated.UpdatedAt = now

		if err := tx.Model(&updated).Select(columns).Updates(&updated).Error; err != nil {
			repo.logger.Errorw("error updating lifecycle", "eventID", eventID, "err", err)
			return err
		}
		return nil
	})

	if err != nil {
		repo.logger.Errorw("failed to set lifecycle", "eventID", eventID, "err", err)
		return nil, err
	}

	if upd.State != nil {
		metrics.IncPhaseTransition(string(*upd.State))
	}
	repo.logger.Infow("lifecycle updated", "eventID", eventID, "state", updated.Phase())
	return &updated, nil
}
