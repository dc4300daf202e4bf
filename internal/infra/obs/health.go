package obs

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandlers backs /livez and /readyz. Ready is the mongo ping in mongo
// mode and nil in memory mode, where the process is ready as soon as it
// serves.
type HealthHandlers struct {
	Ready func() error
}

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

// Readyz reports 503 until the backing store answers.
func (h HealthHandlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.Status(http.StatusOK)
}
