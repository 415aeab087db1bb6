package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/models"
)

// StatusSource assembles the status reports
type StatusSource interface {
	Status() models.StatusResponse
	ZoneStatus(now time.Time) models.ZoneStatusResponse
}

type StatusHandler struct {
	source StatusSource
}

func NewStatusHandler(source StatusSource) *StatusHandler {
	return &StatusHandler{source: source}
}

// GetStatus returns the engine status
// @Summary Engine status
// @Description Monitoring and capture flags, last motion, active profile, last error, owner and configuration
// @Tags status
// @Produce json
// @Success 200 {object} models.StatusResponse
// @Router /api/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.source.Status())
}

// GetZoneStatus returns the corner-stop sequencer state
// @Summary Zone sequencer status
// @Description Per-zone tags, cycle progress, zone rectangles, timing and counters
// @Tags status
// @Produce json
// @Success 200 {object} models.ZoneStatusResponse
// @Router /api/zones/status [get]
func (h *StatusHandler) GetZoneStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.source.ZoneStatus(time.Now()))
}
