package handlers

import (
	"errors"
	"net/http"
	"time"

	"hackvote/internal/handlers/apidto"
	"hackvote/pkg/event"
	"hackvote/pkg/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EventHandler struct {
	repo     event.EventsRepo
	notifier notify.Notifier
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewEventHandler(logger *zap.SugaredLogger, repo event.EventsRepo, notifier notify.Notifier) *EventHandler {
	return &EventHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type eventResp struct {
	Event apidto.Event `json:"event"`
}

type eventsResp struct {
	Events []apidto.Event `json:"events"`
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.repo.ListEvents(c.Request.Context())
	if err != nil {
		writeErr(c, h.logger, "error listing events", err)
		return
	}

	c.JSON(http.StatusOK, eventsResp{
		Events: apidto.FromEvents(events, h.now()),
	})
}

// GetEvent accepts either the event id or its slug.
func (h *EventHandler) GetEvent(c *gin.Context) {
	key := c.Param("id")

	ev, err := h.repo.GetEvent(c.Request.Context(), key)
	if errors.Is(err, event.ErrEventNotFound) {
		ev, err = h.repo.GetEventBySlug(c.Request.Context(), key)
	}
	if err != nil {
		writeErr(c, h.logger, "error getting event", err)
		return
	}

	c.JSON(http.StatusOK, eventResp{
		Event: apidto.FromEvent(ev, h.now()),
	})
}

type createEventReq struct {
	Name      string    `json:"name" binding:"required"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req createEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	ev, err := h.repo.CreateEvent(c.Request.Context(), req.Name, req.StartDate, req.EndDate)
	if err != nil {
		writeErr(c, h.logger, "error creating event", err)
		return
	}

	c.JSON(http.StatusCreated, eventResp{
		Event: apidto.FromEvent(ev, h.now()),
	})
}

type setLifecycleReq struct {
	State     *string    `json:"state"`
	HackUntil *time.Time `json:"hackUntil"`
	VoteUntil *time.Time `json:"voteUntil"`
}

func (h *EventHandler) SetLifecycle(c *gin.Context) {
	var req setLifecycleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	upd := event.LifecycleUpdate{
		HackUntil: req.HackUntil,
		VoteUntil: req.VoteUntil,
	}
	if req.State != nil {
		phase := event.Phase(*req.State)
		upd.State = &phase
	}

	admin, ok := principal(c, h.logger)
	if !ok {
		return
	}
	h.logger.Infow("lifecycle override requested", "eventID", c.Param("id"), "admin", admin.UserID)

	ev, err := h.repo.SetLifecycle(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		writeErr(c, h.logger, "error setting lifecycle", err)
		return
	}

	dto := apidto.FromEvent(ev, h.now())
	h.notifier.Publish(notify.Change{
		EventID: ev.ID,
		Kind:    notify.KindPhaseChanged,
		Payload: dto,
	})

	c.JSON(http.StatusOK, eventResp{
		Event: dto,
	})
}
