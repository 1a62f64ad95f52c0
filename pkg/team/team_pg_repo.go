package team

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hackvote/internal/metrics"
	"hackvote/pkg/dberr"
	"hackvote/pkg/event"
	"hackvote/pkg/user"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TeamsRepoPg struct {
	logger *zap.SugaredLogger
	db     *gorm.DB
}

func NewTeamsRepoPg(logger *zap.SugaredLogger, db *gorm.DB) *TeamsRepoPg {
	return &TeamsRepoPg{
		logger: logger,
		db:     db,
	}
}

func (repo *TeamsRepoPg) RegisterTeam(ctx context.Context, in RegisterInput, actor user.Principal) (created *Team, err error) {
	repo.logger.Debugw("RegisterTeam()", "eventID", in.EventID, "teamName", in.TeamName, "actor", actor.UserID)
	defer func(t time.Time) { metrics.ObserveOp("register_team", t, err) }(time.Now())

	teamName := strings.TrimSpace(in.TeamName)
	if teamName == "" {
		repo.logger.Warnw("team name is empty", "eventID", in.EventID)
		return nil, ErrEmptyTeamName
	}

	members := normalizeMembers(actor.UserID, in.MemberIDs)
	if len(members) == 0 {
		repo.logger.Warnw("team without members", "eventID", in.EventID)
		return nil, ErrNoMembers
	}

	var team Team
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ev, err := repo.loadEventInTx(tx, in.EventID)
		if err != nil {
			return err
		}

		if !actor.IsAdmin && !ev.Phase().AllowsTeamChanges() {
			repo.logger.Warnw("team registration outside of allowed phase", "eventID", ev.ID, "phase", ev.Phase())
			return event.ErrPhaseClosed
		}

		if err := repo.ensureNotInOtherTeamInTx(tx, ev.ID, "", members); err != nil {
			return err
		}

		team = Team{
			ID:                 uuid.NewString(),
			EventID:            ev.ID,
			TeamName:           teamName,
			ProjectName:        optional(in.ProjectName),
			ProjectDescription: optional(in.ProjectDescription),
			ProjectLink:        optional(in.ProjectLink),
			TeamImage:          optional(in.ImageRef),
		}
		if err := tx.Omit("Members").Create(&team).Error; err != nil {
			repo.logger.Errorw("error creating team", "eventID", ev.ID, "err", err)
			return err
		}

		if err := repo.addMembersInTx(tx, &team, members); err != nil {
			return err
		}

		return repo.reloadTeam(tx, team.ID, &team)
	})

	if err != nil {
		repo.logger.Errorw("failed to register team", "eventID", in.EventID, "teamName", teamName, "err", err)
		return nil, err
	}

	repo.logger.Debugw("team registered", "teamID", team.ID, "eventID", team.EventID, "membersCount", len(team.Members))
	return &team, nil
}

func (repo *TeamsRepoPg) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	repo.logger.Debugw("GetTeam()", "teamID", teamID)

	var team Team
	if err := repo.reloadTeam(repo.db.WithContext(ctx), teamID, &team); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			repo.logger.Warnw("team not found", "teamID", teamID)
			return nil, ErrTeamNotFound
		}
		repo.logger.Errorw("failed to query team", "teamID", teamID, "err", err)
		return nil, err
	}

	return &team, nil
}

// ListTeams returns the teams of an event in registration order.
func (repo *TeamsRepoPg) ListTeams(ctx context.Context, eventID string) ([]*Team, error) {
	repo.logger.Debugw("ListTeams()", "eventID", eventID)

	if err := event.Exists(repo.db.WithContext(ctx), eventID); err != nil {
		repo.logger.Warnw("failed to check event", "eventID", eventID, "err", err)
		return nil, err
	}

	var teams []*Team
	if err := repo.db.WithContext(ctx).
		Preload("Members", func(tx2 *gorm.DB) *gorm.DB {
			return tx2.Order("memberships.user_id ASC")
		}).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&teams).Error; err != nil {
		repo.logger.Errorw("failed to list teams", "eventID", eventID, "err", err)
		return nil, err
	}

	return teams, nil
}

func (repo *TeamsRepoPg) UpdateTeam(ctx context.Context, teamID string, patch Patch, actor user.Principal) (updated *Team, replaced *string, err error) {
	repo.logger.Debugw("UpdateTeam()", "teamID", teamID, "actor", actor.UserID)
	defer func(t time.Time) { metrics.ObserveOp("update_team", t, err) }(time.Now())

	var team Team
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.lockAndLoadTeam(tx, teamID, &team); err != nil {
			return err
		}

		if !actor.IsAdmin && !team.HasMember(actor.UserID) {
			repo.logger.Warnw("update by non-member", "teamID", teamID, "actor", actor.UserID)
			return ErrNotTeamMember
		}

		ev, err := repo.loadEventInTx(tx, team.EventID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin && !ev.Phase().AllowsTeamChanges() {
			repo.logger.Warnw("team update outside of allowed phase", "teamID", teamID, "phase", ev.Phase())
			return event.ErrPhaseClosed
		}

		columns := []string{"updated_at"}
		if patch.TeamName != nil {
			name := strings.TrimSpace(*patch.TeamName)
			if name == "" {
				repo.logger.Warnw("team name is empty", "teamID", teamID)
				return ErrEmptyTeamName
			}
			team.TeamName = name
			columns = append(columns, "team_name")
		}
		if patch.ProjectName != nil {
			team.ProjectName = optional(patch.ProjectName)
			columns = append(columns, "project_name")
		}
		if patch.ProjectDescription != nil {
			team.ProjectDescription = optional(patch.ProjectDescription)
			columns = append(columns, "project_description")
		}
		if patch.ProjectLink != nil {
			team.ProjectLink = optional(patch.ProjectLink)
			columns = append(columns, "project_link")
		}
		if patch.ImageRef != nil {
			next := optional(patch.ImageRef)
			if !sameRef(team.TeamImage, next) {
				replaced = team.TeamImage
				team.TeamImage = next
				columns = append(columns, "team_image")
			}
		}

		if err := repo.applyMembershipChangesInTx(tx, &team, patch, actor); err != nil {
			return err
		}

		team.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&team).Select(columns).Updates(&team).Error; err != nil {
			repo.logger.Errorw("error updating team", "teamID", teamID, "err", err)
			return err
		}

		return repo.reloadTeam(tx, teamID, &team)
	})

	if err != nil {
		repo.logger.Errorw("failed to update team", "teamID", teamID, "err", err)
		return nil, nil, err
	}

	repo.logger.Debugw("team updated", "teamID", teamID, "imageReplaced", replaced != nil)
	return &team, replaced, nil
}

// applyMembershipChangesInTx keeps voters out of the teams they voted for. An
// admin add drops the new member's votes for the team instead of failing.
func (repo *TeamsRepoPg) applyMembershipChangesInTx(tx *gorm.DB, team *Team, patch Patch, actor user.Principal) error {
	if len(patch.AddMembers) == 0 && len(patch.RemoveMembers) == 0 {
		return nil
	}

	remove := make(map[string]struct{}, len(patch.RemoveMembers))
	for _, id := range patch.RemoveMembers {
		remove[strings.TrimSpace(id)] = struct{}{}
	}

	var toAdd []string
	for _, id := range normalizeMembers("", patch.AddMembers) {
		if _, dropped := remove[id]; dropped || team.HasMember(id) {
			continue
		}
		toAdd = append(toAdd, id)
	}

	remaining := 0
	var toRemove []string
	for _, m := range team.Members {
		if _, ok := remove[m.UserID]; ok {
			toRemove = append(toRemove, m.UserID)
			continue
		}
		remaining++
	}
	if remaining+len(toAdd) == 0 {
		repo.logger.Warnw("update would leave team without members", "teamID", team.ID)
		return ErrNoMembers
	}

	if len(toRemove) > 0 {
		if err := tx.
			Where("team_id = ? AND user_id IN ?", team.ID, toRemove).
			Delete(&Membership{}).Error; err != nil {
			repo.logger.Errorw("error removing members", "teamID", team.ID, "err", err)
			return err
		}
	}

	if len(toAdd) > 0 {
		if err := repo.ensureNotInOtherTeamInTx(tx, team.EventID, team.ID, toAdd); err != nil {
			return err
		}
		if err := repo.clearVotesOfNewMembersInTx(tx, team.ID, toAdd, actor); err != nil {
			return err
		}
		if err := repo.addMembersInTx(tx, team, toAdd); err != nil {
			return err
		}
	}

	repo.logger.Debugw("membership changed", "teamID", team.ID, "added", toAdd, "removed", toRemove)
	return nil
}

func (repo *TeamsRepoPg) clearVotesOfNewMembersInTx(tx *gorm.DB, teamID string, userIDs []string, actor user.Principal) error {
	var votes int64
	if err := tx.Model(&VoteRef{}).
		Where("team_id = ? AND user_id IN ?", teamID, userIDs).
		Count(&votes).Error; err != nil {
		repo.logger.Errorw("error counting votes of new members", "teamID", teamID, "err", err)
		return err
	}
	if votes == 0 {
		return nil
	}

	if !actor.IsAdmin {
		repo.logger.Warnw("new member already voted for the team", "teamID", teamID, "userIDs", userIDs)
		return ErrMemberHasVoted
	}

	if err := tx.Where("team_id = ? AND user_id IN ?", teamID, userIDs).Delete(&VoteRef{}).Error; err != nil {
		repo.logger.Errorw("error deleting votes of new members", "teamID", teamID, "err", err)
		return err
	}
	repo.logger.Infow("votes of new members removed", "teamID", teamID, "userIDs", userIDs, "votes", votes, "actor", actor.UserID)
	return nil
}

// DeleteTeam removes a team. Members may only delete teams nobody voted for;
// admins cascade votes and memberships before the team row goes.
func (repo *TeamsRepoPg) DeleteTeam(ctx context.Context, teamID string, actor user.Principal) (deleted *Team, err error) {
	repo.logger.Debugw("DeleteTeam()", "teamID", teamID, "actor", actor.UserID, "admin", actor.IsAdmin)
	defer func(t time.Time) { metrics.ObserveOp("delete_team", t, err) }(time.Now())

	var team Team
	err = repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.lockAndLoadTeam(tx, teamID, &team); err != nil {
			return err
		}

		if !actor.IsAdmin && !team.HasMember(actor.UserID) {
			repo.logger.Warnw("delete by non-member", "teamID", teamID, "actor", actor.UserID)
			return ErrNotTeamMember
		}

		var votes int64
		if err := tx.Model(&VoteRef{}).Where("team_id = ?", teamID).Count(&votes).Error; err != nil {
			repo.logger.Errorw("error counting votes", "teamID", teamID, "err", err)
			return err
		}

		if votes > 0 && !actor.IsAdmin {
			repo.logger.Warnw("team is protected by votes", "teamID", teamID, "votes", votes)
			return ErrTeamHasVotes
		}

		if votes > 0 {
			if err := tx.Where("team_id = ?", teamID).Delete(&VoteRef{}).Error; err != nil {
				repo.logger.Errorw("error deleting votes", "teamID", teamID, "err", err)
				return err
			}
		}

		if err := tx.Where("team_id = ?", teamID).Delete(&Membership{}).Error; err != nil {
			repo.logger.Errorw("error deleting memberships", "teamID", teamID, "err", err)
			return err
		}

		if err := tx.Where("id = ?", teamID).Delete(&Team{}).Error; err != nil {
			repo.logger.Errorw("error deleting team", "teamID", teamID, "err", err)
			return err
		}

		repo.logger.Debugw("team deleted in tx", "teamID", teamID, "votesRemoved", votes)
		return nil
	})

	if err != nil {
		repo.logger.Errorw("failed to delete team", "teamID", teamID, "err", err)
		return nil, err
	}

	repo.logger.Infow("team deleted", "teamID", teamID, "eventID", team.EventID, "actor", actor.UserID, "admin", actor.IsAdmin)
	return &team, nil
}

func (repo *TeamsRepoPg) IsMember(ctx context.Context, teamID, userID string) (bool, error) {
	repo.logger.Debugw("IsMember()", "teamID", teamID, "userID", userID)

	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&Membership{}).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Count(&count).Error; err != nil {
		repo.logger.Errorw("failed to check membership", "teamID", teamID, "userID", userID, "err", err)
		return false, err
	}

	return count > 0, nil
}

func (repo *TeamsRepoPg) loadEventInTx(tx *gorm.DB, eventID string) (*event.Event, error) {
	var ev event.Event
	if err := tx.First(&ev, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			repo.logger.Warnw("event does not exist", "eventID", eventID)
			return nil, event.ErrEventNotFound
		}
		repo.logger.Errorw("error finding event", "eventID", eventID, "err", err)
		return nil, err
	}
	return &ev, nil
}

// ensureNotInOtherTeamInTx is the readable fast path; the unique index on
// (event_id, user_id) is what actually holds under concurrent registrations.
func (repo *TeamsRepoPg) ensureNotInOtherTeamInTx(tx *gorm.DB, eventID, exceptTeamID string, userIDs []string) error {
	query := tx.Model(&Membership{}).Where("event_id = ? AND user_id IN ?", eventID, userIDs)
	if exceptTeamID != "" {
		query = query.Where("team_id <> ?", exceptTeamID)
	}

	var taken []string
	if err := query.Pluck("user_id", &taken).Error; err != nil {
		repo.logger.Errorw("error checking existing memberships", "eventID", eventID, "err", err)
		return err
	}

	if len(taken) > 0 {
		repo.logger.Warnw("users already in a team", "eventID", eventID, "users", taken)
		return fmt.Errorf("%w: %s", ErrAlreadyInTeam, strings.Join(taken, ","))
	}
	return nil
}

func (repo *TeamsRepoPg) addMembersInTx(tx *gorm.DB, team *Team, userIDs []string) error {
	rows := make([]*Membership, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, &Membership{
			TeamID:  team.ID,
			UserID:  id,
			EventID: team.EventID,
		})
	}

	if err := tx.Create(&rows).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			repo.logger.Warnw("membership conflict", "teamID", team.ID, "users", userIDs)
			return ErrAlreadyInTeam
		}
		repo.logger.Errorw("error creating memberships", "teamID", team.ID, "err", err)
		return err
	}
	return nil
}

func (repo *TeamsRepoPg) lockAndLoadTeam(tx *gorm.DB, teamID string, team *Team) error {
	repo.logger.Debugw("lockAndLoadTeam()", "teamID", teamID)

	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(team, "id = ?", teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			repo.logger.Warnw("team does not exist", "teamID", teamID)
			return ErrTeamNotFound
		}
		repo.logger.Errorw("error finding team", "teamID", teamID, "err", err)
		return err
	}

	if err := tx.
		Where("team_id = ?", teamID).
		Order("user_id ASC").
		Find(&team.Members).Error; err != nil {
		repo.logger.Errorw("error loading members", "teamID", teamID, "err", err)
		return err
	}
	return nil
}

func (repo *TeamsRepoPg) reloadTeam(tx *gorm.DB, teamID string, team *Team) error {
	*team = Team{}
	return tx.
		Preload("Members", func(tx2 *gorm.DB) *gorm.DB {
			return tx2.Order("memberships.user_id ASC")
		}).
		First(team, "id = ?", teamID).Error
}
