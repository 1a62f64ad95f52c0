package vote_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hackvote/internal/testutil"
	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/team"
	"hackvote/pkg/user"
	"hackvote/pkg/vote"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type ledgerFixture struct {
	db    *gorm.DB
	votes *vote.VotesRepoPg
	event *event.Event
	team  *team.Team
	other *team.Team
	award *award.Award
	extra *award.Award
}

// newLedgerFixture registers team "rocket" (u1) and "comet" (u3) with two
// awards, then opens voting.
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()

	db := testutil.NewSQLiteDB(t)
	logger := testutil.NopLogger()

	ev := testutil.SeedEvent(t, db, "Spring Jam", event.PhaseHacking)

	teams := team.NewTeamsRepoPg(logger, db)
	rocket, err := teams.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "rocket"}, user.Principal{UserID: "u1"})
	require.NoError(t, err)
	comet, err := teams.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "comet"}, user.Principal{UserID: "u3"})
	require.NoError(t, err)

	awards := award.NewAwardsRepoPg(logger, db)
	best, err := awards.CreateAward(ctx, ev.ID, "Best hack")
	require.NoError(t, err)
	fun, err := awards.CreateAward(ctx, ev.ID, "Most fun")
	require.NoError(t, err)

	testutil.SetPhase(t, db, ev.ID, event.PhaseVoting)

	return &ledgerFixture{
		db:    db,
		votes: vote.NewVotesRepoPg(logger, db),
		event: ev,
		team:  rocket,
		other: comet,
		award: best,
		extra: fun,
	}
}

func TestCastVote_DuplicateVote(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.votes.CastVote(ctx, f.team.ID, f.award.ID, "u2")
	require.NoError(t, err)

	_, err = f.votes.CastVote(ctx, f.team.ID, f.award.ID, "u2")
	require.ErrorIs(t, err, vote.ErrDuplicateVote)

	votes, err := f.votes.ListVotes(ctx, f.event.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
}

func TestCastVote_SelfVoteBlocked(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.votes.CastVote(ctx, f.team.ID, f.award.ID, "u1")
	require.ErrorIs(t, err, vote.ErrSelfVote)

	count, err := f.votes.CountByTeam(ctx, f.team.ID)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestCastVote_PhaseGate(t *testing.T) {
	for _, phase := range []event.Phase{event.PhaseBeforeStart, event.PhaseHacking, event.PhaseEnded} {
		t.Run(string(phase), func(t *testing.T) {
			f := newLedgerFixture(t)
			testutil.SetPhase(t, f.db, f.event.ID, phase)

			_, err := f.votes.CastVote(context.Background(), f.team.ID, f.award.ID, "u2")
			require.ErrorIs(t, err, event.ErrVotingNotOpen)
		})
	}

	// A NULL state is before_start whatever the calendar shows.
	calendars := []struct {
		name  string
		start time.Time
		end   time.Time
		shown event.Phase
	}{
		{"no state during calendar window", time.Now().Add(-time.Hour), time.Now().Add(24 * time.Hour), event.PhaseHacking},
		{"no state after calendar end", time.Now().Add(-48 * time.Hour), time.Now().Add(-24 * time.Hour), event.PhaseEnded},
	}
	for _, tc := range calendars {
		t.Run(tc.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			require.NoError(t, f.db.Model(&event.Event{}).Where("id = ?", f.event.ID).Updates(map[string]any{
				"hackathon_state": nil,
				"start_date":      tc.start,
				"end_date":        tc.end,
			}).Error)

			var stored event.Event
			require.NoError(t, f.db.First(&stored, "id = ?", f.event.ID).Error)
			require.Equal(t, event.PhaseBeforeStart, stored.Phase())
			require.Equal(t, tc.shown, stored.DisplayPhase(time.Now()))

			_, err := f.votes.CastVote(context.Background(), f.team.ID, f.award.ID, "u2")
			require.ErrorIs(t, err, event.ErrVotingNotOpen)
		})
	}
}

// The phase is checked before membership, so a member voting for their own
// team outside voting learns about the phase first.
func TestCastVote_PhaseCheckedBeforeSelfVote(t *testing.T) {
	f := newLedgerFixture(t)
	testutil.SetPhase(t, f.db, f.event.ID, event.PhaseHacking)

	_, err := f.votes.CastVote(context.Background(), f.team.ID, f.award.ID, "u1")
	require.ErrorIs(t, err, event.ErrVotingNotOpen)
}

func TestCastVote_AllowedCombinations(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	// same team, other award
	_, err := f.votes.CastVote(ctx, f.team.ID, f.award.ID, "u2")
	require.NoError(t, err)
	_, err = f.votes.CastVote(ctx, f.team.ID, f.extra.ID, "u2")
	require.NoError(t, err)

	// other team, same award
	_, err = f.votes.CastVote(ctx, f.other.ID, f.award.ID, "u2")
	require.NoError(t, err)

	mine, err := f.votes.ListVotesByVoter(ctx, f.event.ID, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 3)

	none, err := f.votes.ListVotesByVoter(ctx, f.event.ID, "u9")
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = f.votes.ListVotesByVoter(ctx, "missing", "u2")
	require.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestCastVote_AwardFromAnotherEvent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	otherEvent := testutil.SeedEvent(t, f.db, "Autumn Jam", event.PhaseHacking)
	foreign, err := award.NewAwardsRepoPg(testutil.NopLogger(), f.db).CreateAward(ctx, otherEvent.ID, "Best hack")
	require.NoError(t, err)

	_, err = f.votes.CastVote(ctx, f.team.ID, foreign.ID, "u2")
	require.ErrorIs(t, err, vote.ErrAwardEventMismatch)
}

func TestCastVote_UnknownReferences(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	_, err := f.votes.CastVote(ctx, "missing", f.award.ID, "u2")
	require.ErrorIs(t, err, team.ErrTeamNotFound)

	_, err = f.votes.CastVote(ctx, f.team.ID, "missing", "u2")
	require.ErrorIs(t, err, award.ErrAwardNotFound)
}

func TestCastVote_ConcurrentDuplicatesPersistOnce(t *testing.T) {
	f := newLedgerFixture(t)

	const attempts = 16

	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.votes.CastVote(context.Background(), f.team.ID, f.award.ID, "u2")
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case errors.Is(err, vote.ErrDuplicateVote):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, succeeded)
	require.EqualValues(t, attempts-1, conflicts)

	count, err := f.votes.CountByTeam(context.Background(), f.team.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}
