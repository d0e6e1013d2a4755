package http

import (
	"errors"
	"net/http"

	"officine/internal/domain"
	"officine/internal/infra/auth/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to statuses. Anything unmapped is an
// internal failure: logged with the real cause, answered with a generic
// message so storage details never leak to clients.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeErrorMessage(c, http.StatusUnauthorized, "authentification requise")
	case errors.Is(err, domain.ErrForbidden):
		writeErrorMessage(c, http.StatusForbidden, "accès refusé")
	case errors.Is(err, domain.ErrTenantNotFound):
		writeErrorMessage(c, http.StatusUnauthorized, "compte sans officine rattachée")
	case errors.Is(err, domain.ErrNotFound):
		writeErrorMessage(c, http.StatusNotFound, "ressource introuvable")
	case errors.Is(err, domain.ErrValidation):
		writeErrorMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeErrorMessage(c, http.StatusConflict, "cette ressource existe déjà")
	default:
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		writeErrorMessage(c, http.StatusInternalServerError, "erreur interne")
	}
}

func writeErrorMessage(c *gin.Context, status int, message string) {
	c.JSON(status, errorResponse{Error: message})
}

func (s *Server) writeAuthzError(c *gin.Context, err error) {
	if _, ok := rbac.IsAuthzError(err); ok {
		writeErrorMessage(c, http.StatusForbidden, "accès refusé")
		return
	}
	s.writeError(c, err)
}
