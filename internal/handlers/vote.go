package handlers

import (
	"net/http"

	"hackvote/internal/handlers/apidto"
	"hackvote/pkg/notify"
	"hackvote/pkg/vote"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VoteHandler struct {
	repo     vote.VotesRepo
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewVoteHandler(logger *zap.SugaredLogger, repo vote.VotesRepo, notifier notify.Notifier) *VoteHandler {
	return &VoteHandler{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

type castVoteReq struct {
	TeamID  string `json:"teamId" binding:"required"`
	AwardID string `json:"awardId" binding:"required"`
}

type voteResp struct {
	Vote apidto.Vote `json:"vote"`
}

type votesResp struct {
	Votes []apidto.Vote `json:"votes"`
}

type voteCastPayload struct {
	TeamID  string `json:"teamId"`
	AwardID string `json:"awardId"`
}

// CastVote records a vote for the calling user. The voter is never taken from
// the body.
func (h *VoteHandler) CastVote(c *gin.Context) {
	voter, ok := principal(c, h.logger)
	if !ok {
		return
	}

	var req castVoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	cast, err := h.repo.CastVote(c.Request.Context(), req.TeamID, req.AwardID, voter.UserID)
	if err != nil {
		writeErr(c, h.logger, "error casting vote", err)
		return
	}

	// voter identity stays out of the broadcast
	h.notifier.Publish(notify.Change{
		EventID: cast.EventID,
		Kind:    notify.KindVoteCast,
		Payload: voteCastPayload{TeamID: cast.TeamID, AwardID: cast.AwardID},
	})

	c.JSON(http.StatusCreated, voteResp{
		Vote: apidto.FromVote(cast),
	})
}

func (h *VoteHandler) MyVotes(c *gin.Context) {
	voter, ok := principal(c, h.logger)
	if !ok {
		return
	}

	votes, err := h.repo.ListVotesByVoter(c.Request.Context(), c.Param("id"), voter.UserID)
	if err != nil {
		writeErr(c, h.logger, "error listing votes", err)
		return
	}

	c.JSON(http.StatusOK, votesResp{
		Votes: apidto.FromVotes(votes),
	})
}
