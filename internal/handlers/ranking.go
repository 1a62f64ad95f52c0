package handlers

import (
	"net/http"

	"hackvote/pkg/ranking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RankingHandler struct {
	agg    *ranking.Aggregator
	logger *zap.SugaredLogger
}

func NewRankingHandler(logger *zap.SugaredLogger, agg *ranking.Aggregator) *RankingHandler {
	return &RankingHandler{
		agg:    agg,
		logger: logger,
	}
}

type tallyResp struct {
	EventID string        `json:"eventId"`
	Tally   ranking.Tally `json:"tally"`
}

type rankingResp struct {
	EventID   string             `json:"eventId"`
	Standings []ranking.Standing `json:"standings"`
}

type leaderboardResp struct {
	EventID     string                    `json:"eventId"`
	Leaderboard *ranking.AwardLeaderboard `json:"leaderboard"`
}

type leaderboardsResp struct {
	EventID      string                     `json:"eventId"`
	Leaderboards []ranking.AwardLeaderboard `json:"leaderboards"`
}

func (h *RankingHandler) Tally(c *gin.Context) {
	eventID := c.Param("id")

	t, err := h.agg.TallyEvent(c.Request.Context(), eventID)
	if err != nil {
		writeErr(c, h.logger, "error tallying votes", err)
		return
	}

	c.JSON(http.StatusOK, tallyResp{
		EventID: eventID,
		Tally:   t,
	})
}

func (h *RankingHandler) Ranking(c *gin.Context) {
	eventID := c.Param("id")

	standings, err := h.agg.RankEvent(c.Request.Context(), eventID)
	if err != nil {
		writeErr(c, h.logger, "error ranking teams", err)
		return
	}

	c.JSON(http.StatusOK, rankingResp{
		EventID:   eventID,
		Standings: standings,
	})
}

func (h *RankingHandler) Leaderboard(c *gin.Context) {
	eventID := c.Param("id")

	board, err := h.agg.Leaderboard(c.Request.Context(), eventID, c.Param("awardId"))
	if err != nil {
		writeErr(c, h.logger, "error building leaderboard", err)
		return
	}

	c.JSON(http.StatusOK, leaderboardResp{
		EventID:     eventID,
		Leaderboard: board,
	})
}

func (h *RankingHandler) Leaderboards(c *gin.Context) {
	eventID := c.Param("id")

	boards, err := h.agg.AwardLeaderboards(c.Request.Context(), eventID)
	if err != nil {
		writeErr(c, h.logger, "error building leaderboards", err)
		return
	}

	c.JSON(http.StatusOK, leaderboardsResp{
		EventID:      eventID,
		Leaderboards: boards,
	})
}
