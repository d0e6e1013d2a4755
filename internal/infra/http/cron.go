package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleCronSweep runs the notification sweep. The route is machine-to-machine
// only, guarded by the shared cron key compared in constant time.
func (s *Server) handleCronSweep(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader("X-Cron-Key"))
	if s.cronKey == "" || key == "" ||
		subtle.ConstantTimeCompare([]byte(key), []byte(s.cronKey)) != 1 {
		writeErrorMessage(c, http.StatusUnauthorized, "clé cron requise")
		return
	}
	if err := s.sweeper.Sweep(c.Request.Context()); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"balayage": "termine"})
}
