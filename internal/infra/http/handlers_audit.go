package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"officine/internal/domain"

	"github.com/gin-gonic/gin"
)

type auditEntryResponse struct {
	ID         string          `json:"id"`
	Module     string          `json:"module"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entite_id"`
	EntityName string          `json:"entite_nom,omitempty"`
	Before     json.RawMessage `json:"avant,omitempty"`
	After      json.RawMessage `json:"apres,omitempty"`
	ActorID    string          `json:"acteur_id"`
	ActorName  string          `json:"acteur_nom,omitempty"`
	CreatedAt  time.Time       `json:"cree_le"`
}

func buildAuditEntryResponse(entry domain.AuditEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:         entry.ID,
		Module:     string(entry.Module),
		Action:     string(entry.Action),
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Before:     json.RawMessage(entry.Before),
		After:      json.RawMessage(entry.After),
		ActorID:    entry.ActorID,
		ActorName:  entry.ActorName,
		CreatedAt:  entry.CreatedAt,
	}
}

// handleListAudit is the tenant mutation history, newest first. Reading it is
// owner-only: the history spans every module, so no single-module grant can
// cover it.
func (s *Server) handleListAudit(c *gin.Context) {
	actor, ok := s.requireActor(c)
	if !ok {
		return
	}
	if !actor.IsOwner() {
		s.writeError(c, domain.ErrForbidden)
		return
	}
	limit := 0
	if raw := c.Query("limite"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeErrorMessage(c, http.StatusBadRequest, "limite invalide")
			return
		}
		limit = parsed
	}
	entries, err := s.audit.List(c.Request.Context(), actor, c.Query("module"), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, buildAuditEntryResponse(entry))
	}
	c.JSON(http.StatusOK, gin.H{"historique": out})
}

type notificationResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"type"`
	SubjectID string    `json:"sujet_id"`
	Message   string    `json:"message"`
	Lu        bool      `json:"lu"`
	CreatedAt time.Time `json:"cree_le"`
}

func buildNotificationResponse(notification domain.Notification) notificationResponse {
	return notificationResponse{
		ID:        notification.ID,
		Kind:      string(notification.Kind),
		SubjectID: notification.SubjectID,
		Message:   notification.Message,
		Lu:        notification.Lu,
		CreatedAt: notification.CreatedAt,
	}
}

func (s *Server) handleListNotifications(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleNotifications, domain.ActionVoir)
	if !ok {
		return
	}
	unreadOnly := c.Query("non_lues") == "true"
	notifications, err := s.notifications.List(c.Request.Context(), actor, unreadOnly)
	if err != nil {
		s.writeError(c, err)
		return
	}
	out := make([]notificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		out = append(out, buildNotificationResponse(notification))
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (s *Server) handleMarkNotificationRead(c *gin.Context) {
	actor, ok := s.requirePermission(c, domain.ModuleNotifications, domain.ActionModifier)
	if !ok {
		return
	}
	if err := s.notifications.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lu": true})
}
