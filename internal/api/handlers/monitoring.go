package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/coordinator"
	"cornerwatch-go/internal/services/state"
)

type MonitoringHandler struct {
	coord *coordinator.Coordinator
	rt    *state.Runtime
}

func NewMonitoringHandler(coord *coordinator.Coordinator, rt *state.Runtime) *MonitoringHandler {
	return &MonitoringHandler{coord: coord, rt: rt}
}

type MonitoringResponse struct {
	Monitoring bool   `json:"monitoring"`
	Message    string `json:"message"`
}

// Start starts the detection loop. Starting a running loop is not an error.
// @Summary Start monitoring
// @Tags monitoring
// @Produce json
// @Success 200 {object} MonitoringResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/monitoring/start [post]
func (h *MonitoringHandler) Start(c *gin.Context) {
	err := h.coord.StartMonitoring()
	if errors.Is(err, models.ErrAlreadyRunning) {
		c.JSON(http.StatusOK, MonitoringResponse{Monitoring: true, Message: "Monitoring already running"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	logging.Info(c).Msg("Monitoring start requested")
	c.JSON(http.StatusOK, MonitoringResponse{Monitoring: true, Message: "Monitoring started"})
}

// Stop stops the detection loop after its current iteration
// @Summary Stop monitoring
// @Tags monitoring
// @Produce json
// @Success 200 {object} MonitoringResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/monitoring/stop [post]
func (h *MonitoringHandler) Stop(c *gin.Context) {
	if err := h.coord.StopMonitoring(); err != nil {
		respondError(c, err)
		return
	}
	logging.Info(c).Msg("Monitoring stop requested")
	c.JSON(http.StatusOK, MonitoringResponse{Monitoring: h.rt.Monitoring(), Message: "Monitoring stopped"})
}

// Restart re-initializes the running loop with a fresh baseline
// @Summary Restart monitoring
// @Tags monitoring
// @Produce json
// @Success 202 {object} MonitoringResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/monitoring/restart [post]
func (h *MonitoringHandler) Restart(c *gin.Context) {
	if err := h.coord.RestartMonitoring(); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, MonitoringResponse{Monitoring: true, Message: "Restart requested"})
}
