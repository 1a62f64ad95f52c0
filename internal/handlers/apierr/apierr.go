package apierr

import (
	"errors"
	"net/http"

	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/imagestore"
	"hackvote/pkg/team"
	"hackvote/pkg/user"
	"hackvote/pkg/vote"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrResponse struct {
	Error APIError `json:"error"`
}

// Map keeps response codes stable while the domain errors and their log text change.
func Map(err error) (int, APIError, bool) {
	switch {
	case errors.Is(err, team.ErrEmptyTeamName):
		return http.StatusBadRequest, EmptyTeamName, true
	case errors.Is(err, award.ErrEmptyAwardName):
		return http.StatusBadRequest, EmptyAwardName, true
	case errors.Is(err, event.ErrEmptyEventName):
		return http.StatusBadRequest, EmptyEventName, true
	case errors.Is(err, event.ErrInvalidDates):
		return http.StatusBadRequest, InvalidDates, true
	case errors.Is(err, vote.ErrAwardEventMismatch):
		return http.StatusBadRequest, AwardEventMismatch, true
	case errors.Is(err, event.ErrEmptyLifecycle):
		return http.StatusBadRequest, EmptyLifecycle, true
	case errors.Is(err, event.ErrInvalidPhase):
		return http.StatusBadRequest, InvalidPhase, true
	case errors.Is(err, team.ErrNoMembers):
		return http.StatusBadRequest, NoMembers, true
	case errors.Is(err, vote.ErrEmptyVoter):
		return http.StatusBadRequest, BadRequest, true
	case errors.Is(err, imagestore.ErrEmptyImage),
		errors.Is(err, imagestore.ErrImageTooLarge),
		errors.Is(err, imagestore.ErrUnsupportedImage):
		return http.StatusBadRequest, InvalidImage, true

	case errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, team.ErrTeamNotFound),
		errors.Is(err, award.ErrAwardNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, NotFound, true

	case errors.Is(err, user.ErrNoPrincipal):
		return http.StatusUnauthorized, Unauthorized, true

	case errors.Is(err, team.ErrNotTeamMember):
		return http.StatusForbidden, NotTeamMember, true
	case errors.Is(err, vote.ErrSelfVote):
		return http.StatusForbidden, SelfVote, true
	case errors.Is(err, user.ErrNotAdmin):
		return http.StatusForbidden, AdminOnly, true

	case errors.Is(err, vote.ErrDuplicateVote):
		return http.StatusConflict, DuplicateVote, true
	case errors.Is(err, award.ErrAwardExists):
		return http.StatusConflict, AwardExists, true
	case errors.Is(err, team.ErrTeamHasVotes):
		return http.StatusConflict, TeamHasVotes, true
	case errors.Is(err, team.ErrAlreadyInTeam):
		return http.StatusConflict, AlreadyInTeam, true
	case errors.Is(err, team.ErrMemberHasVoted):
		return http.StatusConflict, MemberHasVoted, true
	case errors.Is(err, event.ErrSlugTaken):
		return http.StatusConflict, SlugTaken, true
	case errors.Is(err, event.ErrVotingNotOpen):
		return http.StatusConflict, VotingNotOpen, true
	case errors.Is(err, event.ErrPhaseClosed):
		return http.StatusConflict, PhaseClosed, true
	default:
		// unmapped errors are storage or programming failures, callers log them at error level
		return http.StatusInternalServerError, InternalServerError, false
	}
}

func Handle(c *gin.Context, err error) bool {
	if status, apiErr, ok := Map(err); ok {
		WriteApiErrJSON(c, status, apiErr)
		return true
	}

	return false
}

func WriteApiErrJSON(c *gin.Context, status int, apiErr APIError) {
	c.JSON(status, ErrResponse{
		Error: apiErr,
	})
}

func AbortApiErrJSON(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, ErrResponse{
		Error: apiErr,
	})
}
