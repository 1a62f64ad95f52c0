package team_test

import (
	"context"
	"testing"

	"hackvote/internal/testutil"
	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/team"
	"hackvote/pkg/user"
	"hackvote/pkg/vote"

	"github.com/stretchr/testify/require"
)

var (
	alice = user.Principal{UserID: "alice"}
	bob   = user.Principal{UserID: "bob"}
	admin = user.Principal{UserID: "root", IsAdmin: true}
)

func strPtr(s string) *string {
	return &s
}

func TestRegisterTeam_CreatorIncludedAndDeduplicated(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseBeforeStart)
	repo := team.NewTeamsRepoPg(testutil.NopLogger(), db)

	got, err := repo.RegisterTeam(context.Background(), team.RegisterInput{
		EventID:     ev.ID,
		TeamName:    "  rocket  ",
		MemberIDs:   []string{"bob", " bob ", "carol", ""},
		ProjectName: strPtr("Launchpad"),
		ProjectLink: strPtr(""),
	}, alice)
	require.NoError(t, err)

	require.Equal(t, "rocket", got.TeamName)
	require.Equal(t, ev.ID, got.EventID)
	require.ElementsMatch(t, []string{"alice", "bob", "carol"}, got.MemberIDs())
	require.Equal(t, "Launchpad", *got.ProjectName)
	require.Nil(t, got.ProjectLink)
}

func TestRegisterTeam_UnsetStateAllowsRegistration(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ev := testutil.SeedEvent(t, db, "Jam", "")
	repo := team.NewTeamsRepoPg(testutil.NopLogger(), db)

	_, err := repo.RegisterTeam(context.Background(), team.RegisterInput{EventID: ev.ID, TeamName: "rocket"}, alice)
	require.NoError(t, err)
}

func TestRegisterTeam_OneTeamPerEvent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseHacking)
	other := testutil.SeedEvent(t, db, "Other jam", event.PhaseHacking)
	repo := team.NewTeamsRepoPg(testutil.NopLogger(), db)

	_, err := repo.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "rocket", MemberIDs: []string{"bob"}}, alice)
	require.NoError(t, err)

	_, err = repo.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "comet"}, bob)
	require.ErrorIs(t, err, team.ErrAlreadyInTeam)

	// a different event is fine
	_, err = repo.RegisterTeam(ctx, team.RegisterInput{EventID: other.ID, TeamName: "comet"}, bob)
	require.NoError(t, err)

	teams, err := repo.ListTeams(ctx, ev.ID)
	require.NoError(t, err)
	require.Len(t, teams, 1)

	_, err = repo.ListTeams(ctx, "missing")
	require.ErrorIs(t, err, event.ErrEventNotFound)
}

func TestRegisterTeam_PhaseGate(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseVoting)
	repo := team.NewTeamsRepoPg(testutil.NopLogger(), db)

	_, err := repo.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "late"}, alice)
	require.ErrorIs(t, err, event.ErrPhaseClosed)

	// organizers can still fix things up
	_, err = repo.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "late", MemberIDs: []string{"alice"}}, admin)
	require.NoError(t, err)
}

func TestUpdateTeam(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseHacking)
	repo := team.NewTeamsRepoPg(testutil.NopLogger(), db)

	created, err := repo.RegisterTeam(ctx, team.RegisterInput{
		EventID:  ev.ID,
		TeamName: "rocket",
		ImageRef: strPtr("old.png"),
	}, alice)
	require.NoError(t, err)

	t.Run("non-member rejected", func(t *testing.T) {
		_, _, err := repo.UpdateTeam(ctx, created.ID, team.Patch{TeamName: strPtr("hijacked")}, bob)
		require.ErrorIs(t, err, team.ErrNotTeamMember)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, _, err := repo.UpdateTeam(ctx, created.ID, team.Patch{TeamName: strPtr(" ")}, alice)
		require.ErrorIs(t, err, team.ErrEmptyTeamName)
	})

	t.Run("member edits fields and image", func(t *testing.T) {
		got, replaced, err := repo.UpdateTeam(ctx, created.ID, team.Patch{
			TeamName:    strPtr("rocket 2"),
			ProjectName: strPtr("Launchpad"),
			ImageRef:    strPtr("new.png"),
			AddMembers:  []string{"bob"},
		}, alice)
		require.NoError(t, err)
		require.Equal(t, "rocket 2", got.TeamName)
		require.Equal(t, "new.png", *got.TeamImage)
		require.NotNil(t, replaced)
		require.Equal(t, "old.png", *replaced)
		require.ElementsMatch(t, []string{"alice", "bob"}, got.MemberIDs())
	})

	t.Run("same image is not a replacement", func(t *testing.T) {
		_, replaced, err := repo.UpdateTeam(ctx, created.ID, team.Patch{ImageRef: strPtr("new.png")}, bob)
		require.NoError(t, err)
		require.Nil(t, replaced)
	})

	t.Run("cannot remove every member", func(t *testing.T) {
		_, _, err := repo.UpdateTeam(ctx, created.ID, team.Patch{RemoveMembers: []string{"alice", "bob"}}, alice)
		require.ErrorIs(t, err, team.ErrNoMembers)
	})

	t.Run("admin reassigns membership on any team", func(t *testing.T) {
		got, _, err := repo.UpdateTeam(ctx, created.ID, team.Patch{
			RemoveMembers: []string{"alice"},
			AddMembers:    []string{"carol"},
		}, admin)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"bob", "carol"}, got.MemberIDs())

		isMember, err := repo.IsMember(ctx, created.ID, "alice")
		require.NoError(t, err)
		require.False(t, isMember)
	})

	t.Run("closed after hacking for members", func(t *testing.T) {
		testutil.SetPhase(t, db, ev.ID, event.PhaseVoting)
		_, _, err := repo.UpdateTeam(ctx, created.ID, team.Patch{TeamName: strPtr("late")}, bob)
		require.ErrorIs(t, err, event.ErrPhaseClosed)

		_, _, err = repo.UpdateTeam(ctx, created.ID, team.Patch{TeamName: strPtr("fixed")}, admin)
		require.NoError(t, err)
	})
}

func TestUpdateTeam_VoterCannotJoinVotedTeam(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	logger := testutil.NopLogger()
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseHacking)

	teams := team.NewTeamsRepoPg(logger, db)
	votes := vote.NewVotesRepoPg(logger, db)

	rocket, err := teams.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "rocket"}, alice)
	require.NoError(t, err)
	best, err := award.NewAwardsRepoPg(logger, db).CreateAward(ctx, ev.ID, "Best hack")
	require.NoError(t, err)
	fun, err := award.NewAwardsRepoPg(logger, db).CreateAward(ctx, ev.ID, "Most fun")
	require.NoError(t, err)

	testutil.SetPhase(t, db, ev.ID, event.PhaseVoting)
	_, err = votes.CastVote(ctx, rocket.ID, best.ID, "bob")
	require.NoError(t, err)
	_, err = votes.CastVote(ctx, rocket.ID, fun.ID, "carol")
	require.NoError(t, err)

	// organizers reopen hacking after votes were cast
	testutil.SetPhase(t, db, ev.ID, event.PhaseHacking)

	t.Run("member cannot add a voter", func(t *testing.T) {
		_, _, err := teams.UpdateTeam(ctx, rocket.ID, team.Patch{AddMembers: []string{"bob"}}, alice)
		require.ErrorIs(t, err, team.ErrMemberHasVoted)

		isMember, err := teams.IsMember(ctx, rocket.ID, "bob")
		require.NoError(t, err)
		require.False(t, isMember)

		n, err := votes.CountByTeam(ctx, rocket.ID)
		require.NoError(t, err)
		require.Equal(t, int64(2), n)
	})

	t.Run("admin add drops the new member's votes", func(t *testing.T) {
		got, _, err := teams.UpdateTeam(ctx, rocket.ID, team.Patch{AddMembers: []string{"bob"}}, admin)
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"alice", "bob"}, got.MemberIDs())

		left, err := votes.ListVotes(ctx, ev.ID)
		require.NoError(t, err)
		require.Len(t, left, 1)
		require.Equal(t, "carol", left[0].UserID)
	})
}

func TestDeleteTeam_ProtectedByVotes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	logger := testutil.NopLogger()
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseHacking)

	teams := team.NewTeamsRepoPg(logger, db)
	votes := vote.NewVotesRepoPg(logger, db)

	rocket, err := teams.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "rocket"}, alice)
	require.NoError(t, err)
	best, err := award.NewAwardsRepoPg(logger, db).CreateAward(ctx, ev.ID, "Best hack")
	require.NoError(t, err)

	testutil.SetPhase(t, db, ev.ID, event.PhaseVoting)
	_, err = votes.CastVote(ctx, rocket.ID, best.ID, "bob")
	require.NoError(t, err)

	_, err = teams.DeleteTeam(ctx, rocket.ID, alice)
	require.ErrorIs(t, err, team.ErrTeamHasVotes)

	deleted, err := teams.DeleteTeam(ctx, rocket.ID, admin)
	require.NoError(t, err)
	require.Equal(t, rocket.ID, deleted.ID)

	left, err := votes.CountByTeam(ctx, rocket.ID)
	require.NoError(t, err)
	require.Zero(t, left)

	var memberships int64
	require.NoError(t, db.Model(&team.Membership{}).Where("team_id = ?", rocket.ID).Count(&memberships).Error)
	require.Zero(t, memberships)

	_, err = teams.GetTeam(ctx, rocket.ID)
	require.ErrorIs(t, err, team.ErrTeamNotFound)
}

func TestDeleteTeam_MemberWithoutVotes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	ev := testutil.SeedEvent(t, db, "Jam", event.PhaseVoting)
	repo := team.NewTeamsRepoPg(testutil.NopLogger(), db)

	created, err := repo.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "rocket", MemberIDs: []string{"alice"}}, admin)
	require.NoError(t, err)

	_, err = repo.DeleteTeam(ctx, created.ID, bob)
	require.ErrorIs(t, err, team.ErrNotTeamMember)

	// deletion is not phase gated
	_, err = repo.DeleteTeam(ctx, created.ID, alice)
	require.NoError(t, err)

	// freed members may join another team
	_, err = repo.RegisterTeam(ctx, team.RegisterInput{EventID: ev.ID, TeamName: "comet", MemberIDs: []string{"alice"}}, admin)
	require.NoError(t, err)
}
