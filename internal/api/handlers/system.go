package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/services/eventlog"
	"cornerwatch-go/internal/services/messaging"
)

// SystemHandler handles process statistics
type SystemHandler struct {
	Version string
	started time.Time

	events *eventlog.Log
	bus    *messaging.Service // nil when the bus is disabled
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(version string, events *eventlog.Log, bus *messaging.Service) *SystemHandler {
	return &SystemHandler{
		Version: version,
		started: time.Now(),
		events:  events,
		bus:     bus,
	}
}

// @Summary Get system stats
// @Description Get process statistics, message bus connectivity and the retained event count
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// -1 marks a count that could not be read
	retained := -1
	if h.events != nil {
		n, err := h.events.Count()
		if err != nil {
			logging.Warn(c).Err(err).Msg("Failed to count retained events")
		} else {
			retained = n
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"version":         h.Version,
			"uptime_seconds":  int64(time.Since(h.started).Seconds()),
			"memory_mb":       m.Alloc / 1024 / 1024,
			"cpu_cores":       runtime.NumCPU(),
			"goroutines":      runtime.NumGoroutine(),
			"go_version":      runtime.Version(),
			"nats_enabled":    h.bus != nil,
			"nats_connected":  h.bus.IsConnected(),
			"events_retained": retained,
		},
		"timestamp": time.Now().Unix(),
	})
}
