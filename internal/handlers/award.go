package handlers

import (
	"net/http"

	"hackvote/internal/handlers/apidto"
	"hackvote/pkg/award"
	"hackvote/pkg/notify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AwardHandler struct {
	repo     award.AwardsRepo
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewAwardHandler(logger *zap.SugaredLogger, repo award.AwardsRepo, notifier notify.Notifier) *AwardHandler {
	return &AwardHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

type createAwardReq struct {
	Name string `json:"name"`
}

type awardResp struct {
	Award apidto.Award `json:"award"`
}

type awardsResp struct {
	Awards []apidto.Award `json:"awards"`
}

func (h *AwardHandler) CreateAward(c *gin.Context) {
	var req createAwardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	created, err := h.repo.CreateAward(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		writeErr(c, h.logger, "error creating award", err)
		return
	}

	dto := apidto.FromAward(created)
	h.notifier.Publish(notify.Change{
		EventID: created.EventID,
		Kind:    notify.KindAwardCreated,
		Payload: dto,
	})

	c.JSON(http.StatusCreated, awardResp{
		Award: dto,
	})
}

func (h *AwardHandler) ListAwards(c *gin.Context) {
	awards, err := h.repo.ListAwards(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, h.logger, "error listing awards", err)
		return
	}

	c.JSON(http.StatusOK, awardsResp{
		Awards: apidto.FromAwards(awards),
	})
}
