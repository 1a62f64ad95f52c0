package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"hackvote/internal/handlers/apidto"
	"hackvote/pkg/imagestore"
	"hackvote/pkg/notify"
	"hackvote/pkg/team"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const imageField = "image"

type TeamHandler struct {
	svc      *team.Service
	notifier notify.Notifier
	logger   *zap.SugaredLogger
}

func NewTeamHandler(logger *zap.SugaredLogger, svc *team.Service, notifier notify.Notifier) *TeamHandler {
	return &TeamHandler{
		svc:      svc,
		notifier: notifier,
		logger:   logger,
	}
}

type teamResp struct {
	Team apidto.Team `json:"team"`
}

type teamsResp struct {
	Teams []apidto.Team `json:"teams"`
}

// registerTeamReq binds from JSON or from a multipart form carrying the image.
type registerTeamReq struct {
	TeamName           string   `json:"teamName" form:"teamName"`
	MemberIDs          []string `json:"memberIds" form:"memberIds"`
	ProjectName        *string  `json:"projectName" form:"projectName"`
	ProjectDescription *string  `json:"projectDescription" form:"projectDescription"`
	ProjectLink        *string  `json:"projectLink" form:"projectLink"`
}

func (h *TeamHandler) RegisterTeam(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}

	var req registerTeamReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	image, err := readImage(c)
	if err != nil {
		writeErr(c, h.logger, "error reading team image", err)
		return
	}

	created, err := h.svc.Register(c.Request.Context(), team.RegisterInput{
		EventID:            c.Param("id"),
		TeamName:           req.TeamName,
		MemberIDs:          req.MemberIDs,
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		ProjectLink:        req.ProjectLink,
	}, image, actor)
	if err != nil {
		writeErr(c, h.logger, "error registering team", err)
		return
	}

	dto := apidto.FromTeam(created, h.svc.ImageURL)
	h.notifier.Publish(notify.Change{
		EventID: created.EventID,
		Kind:    notify.KindTeamRegistered,
		Payload: dto,
	})

	c.JSON(http.StatusCreated, teamResp{
		Team: dto,
	})
}

func (h *TeamHandler) GetTeam(c *gin.Context) {
	found, err := h.svc.Repo().GetTeam(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, h.logger, "error getting team", err)
		return
	}

	c.JSON(http.StatusOK, teamResp{
		Team: apidto.FromTeam(found, h.svc.ImageURL),
	})
}

func (h *TeamHandler) ListTeams(c *gin.Context) {
	teams, err := h.svc.Repo().ListTeams(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, h.logger, "error listing teams", err)
		return
	}

	c.JSON(http.StatusOK, teamsResp{
		Teams: apidto.FromTeams(teams, h.svc.ImageURL),
	})
}

type updateTeamReq struct {
	TeamName           *string  `json:"teamName" form:"teamName"`
	ProjectName        *string  `json:"projectName" form:"projectName"`
	ProjectDescription *string  `json:"projectDescription" form:"projectDescription"`
	ProjectLink        *string  `json:"projectLink" form:"projectLink"`
	AddMembers         []string `json:"addMembers" form:"addMembers"`
	RemoveMembers      []string `json:"removeMembers" form:"removeMembers"`
}

// UpdateTeam serves both the member route and the admin override route; the
// principal decides which rules apply.
func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}

	var req updateTeamReq
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	image, err := readImage(c)
	if err != nil {
		writeErr(c, h.logger, "error reading team image", err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), team.Patch{
		TeamName:           req.TeamName,
		ProjectName:        req.ProjectName,
		ProjectDescription: req.ProjectDescription,
		ProjectLink:        req.ProjectLink,
		AddMembers:         req.AddMembers,
		RemoveMembers:      req.RemoveMembers,
	}, image, actor)
	if err != nil {
		writeErr(c, h.logger, "error updating team", err)
		return
	}

	dto := apidto.FromTeam(updated, h.svc.ImageURL)
	h.notifier.Publish(notify.Change{
		EventID: updated.EventID,
		Kind:    notify.KindTeamUpdated,
		Payload: dto,
	})

	c.JSON(http.StatusOK, teamResp{
		Team: dto,
	})
}

func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	actor, ok := principal(c, h.logger)
	if !ok {
		return
	}

	deleted, err := h.svc.Delete(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		writeErr(c, h.logger, "error deleting team", err)
		return
	}

	h.notifier.Publish(notify.Change{
		EventID: deleted.EventID,
		Kind:    notify.KindTeamDeleted,
		Payload: gin.H{"teamId": deleted.ID},
	})

	c.Status(http.StatusNoContent)
}

// readImage returns the optional multipart image, nil for JSON requests.
func readImage(c *gin.Context) ([]byte, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}

	fh, err := c.FormFile(imageField)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imagestore.ErrUnsupportedImage, err)
	}
	if fh.Size > imagestore.MaxImageSize {
		return nil, imagestore.ErrImageTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, imagestore.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, imagestore.ErrEmptyImage
	}
	return data, nil
}
