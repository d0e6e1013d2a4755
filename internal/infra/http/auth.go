package http

import (
	"strings"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorContextKey = "actor"

// requireActor authenticates the request: bearer token, session verification,
// then subject resolution into a tenant-scoped actor. On failure the error
// response is already written and ok is false.
func (s *Server) requireActor(c *gin.Context) (domain.ActorContext, bool) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" {
		s.writeError(c, domain.ErrUnauthenticated)
		return domain.ActorContext{}, false
	}
	subjectID, err := s.sessions.Verify(token)
	if err != nil {
		s.writeError(c, domain.ErrUnauthenticated)
		return domain.ActorContext{}, false
	}
	actor, err := s.resolver.Resolve(c.Request.Context(), subjectID)
	if err != nil {
		s.writeError(c, err)
		return domain.ActorContext{}, false
	}
	c.Set(actorContextKey, actor)
	return actor, true
}

// requirePermission runs the full gate for one entity operation: actor
// resolution followed by the module/action check.
func (s *Server) requirePermission(c *gin.Context, module domain.Module, action domain.Action) (domain.ActorContext, bool) {
	actor, ok := s.requireActor(c)
	if !ok {
		return domain.ActorContext{}, false
	}
	if err := s.evaluator.Check(c.Request.Context(), actor, module, action); err != nil {
		s.writeAuthzError(c, err)
		return domain.ActorContext{}, false
	}
	return actor, true
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}
