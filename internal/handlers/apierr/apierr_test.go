package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/imagestore"
	"hackvote/pkg/team"
	"hackvote/pkg/user"
	"hackvote/pkg/vote"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMap(t *testing.T) {
	tests := []struct {
		err    error
		status int
		want   APIError
	}{
		{team.ErrEmptyTeamName, http.StatusBadRequest, EmptyTeamName},
		{award.ErrEmptyAwardName, http.StatusBadRequest, EmptyAwardName},
		{event.ErrInvalidDates, http.StatusBadRequest, InvalidDates},
		{vote.ErrAwardEventMismatch, http.StatusBadRequest, AwardEventMismatch},
		{event.ErrInvalidPhase, http.StatusBadRequest, InvalidPhase},
		{imagestore.ErrImageTooLarge, http.StatusBadRequest, InvalidImage},
		{fmt.Errorf("%w: bad part", imagestore.ErrUnsupportedImage), http.StatusBadRequest, InvalidImage},
		{event.ErrEventNotFound, http.StatusNotFound, NotFound},
		{gorm.ErrRecordNotFound, http.StatusNotFound, NotFound},
		{user.ErrNoPrincipal, http.StatusUnauthorized, Unauthorized},
		{team.ErrNotTeamMember, http.StatusForbidden, NotTeamMember},
		{vote.ErrSelfVote, http.StatusForbidden, SelfVote},
		{user.ErrNotAdmin, http.StatusForbidden, AdminOnly},
		{vote.ErrDuplicateVote, http.StatusConflict, DuplicateVote},
		{fmt.Errorf("cast: %w", vote.ErrDuplicateVote), http.StatusConflict, DuplicateVote},
		{team.ErrTeamHasVotes, http.StatusConflict, TeamHasVotes},
		{team.ErrAlreadyInTeam, http.StatusConflict, AlreadyInTeam},
		{team.ErrMemberHasVoted, http.StatusConflict, MemberHasVoted},
		{event.ErrSlugTaken, http.StatusConflict, SlugTaken},
		{event.ErrVotingNotOpen, http.StatusConflict, VotingNotOpen},
		{event.ErrPhaseClosed, http.StatusConflict, PhaseClosed},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, got, ok := Map(tt.err)
			require.True(t, ok)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMap_Unmapped(t *testing.T) {
	status, got, ok := Map(errors.New("connection reset"))
	require.False(t, ok)
	require.Equal(t, http.StatusInternalServerError, status)
	require.Equal(t, InternalServerError, got)
}

func TestHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	require.True(t, Handle(c, vote.ErrSelfVote))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.JSONEq(t, `{"error":{"code":"`+SelfVote.Code+`","message":"`+SelfVote.Message+`"}}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	require.False(t, Handle(c, errors.New("boom")))
	require.Equal(t, 0, w.Body.Len())
}
