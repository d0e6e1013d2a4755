package http

import (
	"net/http"
	"strconv"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"mot_de_passe"`
}

type actorResponse struct {
	SubjectID string `json:"id"`
	Nom       string `json:"nom"`
	Officine  string `json:"officine_id"`
	Kind      string `json:"type"`
	RoleID    string `json:"role_id,omitempty"`
	RoleName  string `json:"role_nom,omitempty"`
}

func buildActorResponse(actor domain.ActorContext) actorResponse {
	return actorResponse{
		SubjectID: actor.SubjectID,
		Nom:       actor.DisplayName,
		Officine:  actor.TenantID,
		Kind:      string(actor.Kind),
		RoleID:    actor.RoleID,
		RoleName:  actor.RoleName,
	}
}

func (s *Server) handleLogin(c *gin.Context) {
	if !s.allowLoginAttempt(c) {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorMessage(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErrorMessage(c, http.StatusBadRequest, "email et mot de passe sont requis")
		return
	}
	if s.identity == nil {
		s.writeError(c, domain.ErrUnauthenticated)
		return
	}
	subjectID, err := s.identity.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	actor, err := s.resolver.Resolve(c.Request.Context(), subjectID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	token, err := s.issuer.Issue(subjectID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"profil": buildActorResponse(actor),
	})
}

// allowLoginAttempt applies the fixed-window limiter keyed by client IP. A
// limiter failure lets the attempt through: throttling is protection, not a
// gate that may lock everyone out when redis is down.
func (s *Server) allowLoginAttempt(c *gin.Context) bool {
	if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
		return true
	}
	decision, err := s.rateLimiter.Allow(c.Request.Context(),
		"login:"+c.ClientIP(), s.rateLimitRequests, s.rateLimitWindow)
	if err != nil {
		s.logger.Warn("login rate limiter unavailable", zap.Error(err))
		return true
	}
	if decision.Allowed {
		return true
	}
	retryAfter := int64(time.Until(decision.ResetAt).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
	writeErrorMessage(c, http.StatusTooManyRequests, "trop de tentatives, réessayez plus tard")
	return false
}

// handleLogout forces a sign-out at the identity provider. The local session
// token stays valid until expiry; its TTL is the exposure bound.
func (s *Server) handleLogout(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	if s.identity != nil {
		if err := s.identity.ForceSignOut(c.Request.Context(), actor.SubjectID); err != nil {
			s.logger.Warn("identity sign-out failed",
				zap.String("subject_id", actor.SubjectID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"deconnecte": true})
}

func (s *Server) handleMe(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"profil": buildActorResponse(actor)})
}
