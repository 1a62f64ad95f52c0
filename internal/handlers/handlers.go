package handlers

import (
	"net/http"

	"hackvote/internal/handlers/apierr"
	"hackvote/internal/handlers/mdlwr"
	"hackvote/pkg/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeErr answers with the mapped domain error, or 500 for anything unmapped.
func writeErr(c *gin.Context, logger *zap.SugaredLogger, msg string, err error) {
	if apierr.Handle(c, err) {
		logger.Warnw(msg, "err", err)
		return
	}

	logger.Errorw(msg+", couldnt map the error", "err", err)
	apierr.WriteApiErrJSON(c, http.StatusInternalServerError, apierr.InternalServerError)
}

func badRequest(c *gin.Context, logger *zap.SugaredLogger, err error) {
	apierr.WriteApiErrJSON(c, http.StatusBadRequest, apierr.BadRequest)
	logger.Warnw("error parsing request", "error", err)
}

func principal(c *gin.Context, logger *zap.SugaredLogger) (user.Principal, bool) {
	p, err := mdlwr.PrincipalFrom(c)
	if err != nil {
		writeErr(c, logger, "no principal on request", err)
		return user.Principal{}, false
	}
	return p, true
}
