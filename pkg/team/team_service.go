package team

import (
	"context"

	"hackvote/pkg/imagestore"
	"hackvote/pkg/user"

	"go.uber.org/zap"
)

// Service puts image storage around the registry. New images are written before
// the row that references them, old images are removed only after the commit, so
// a failure at any step leaves the team pointing at an image that exists.
type Service struct {
	repo   TeamsRepo
	images imagestore.Store
	logger *zap.SugaredLogger
}

func NewService(logger *zap.SugaredLogger, repo TeamsRepo, images imagestore.Store) *Service {
	return &Service{
		repo:   repo,
		images: images,
		logger: logger,
	}
}

func (s *Service) Repo() TeamsRepo {
	return s.repo
}

func (s *Service) Register(ctx context.Context, in RegisterInput, image []byte, actor user.Principal) (*Team, error) {
	var stored *string
	if len(image) > 0 {
		ref, err := s.images.Store(ctx, image)
		if err != nil {
			s.logger.Warnw("failed to store team image", "eventID", in.EventID, "err", err)
			return nil, err
		}
		stored = &ref
		in.ImageRef = stored
	}

	team, err := s.repo.RegisterTeam(ctx, in, actor)
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}
	return team, nil
}

// Update applies patch; a non-empty image replaces the current one.
func (s *Service) Update(ctx context.Context, teamID string, patch Patch, image []byte, actor user.Principal) (*Team, error) {
	var stored *string
	if len(image) > 0 {
		ref, err := s.images.Store(ctx, image)
		if err != nil {
			s.logger.Warnw("failed to store team image", "teamID", teamID, "err", err)
			return nil, err
		}
		stored = &ref
		patch.ImageRef = stored
	}

	team, replaced, err := s.repo.UpdateTeam(ctx, teamID, patch, actor)
	if err != nil {
		s.discard(ctx, stored)
		return nil, err
	}

	s.discard(ctx, replaced)
	return team, nil
}

func (s *Service) Delete(ctx context.Context, teamID string, actor user.Principal) (*Team, error) {
	team, err := s.repo.DeleteTeam(ctx, teamID, actor)
	if err != nil {
		return nil, err
	}

	s.discard(ctx, team.TeamImage)
	return team, nil
}

func (s *Service) ImageURL(team *Team) string {
	if team == nil || team.TeamImage == nil {
		return ""
	}
	return s.images.URL(*team.TeamImage)
}

// discard removes an image nobody references anymore. A failure only leaks a
// file, so it is logged and swallowed.
func (s *Service) discard(ctx context.Context, ref *string) {
	if ref == nil || *ref == "" {
		return
	}
	if err := s.images.Delete(ctx, *ref); err != nil {
		s.logger.Warnw("failed to delete unreferenced image", "ref", *ref, "err", err)
	}
}
