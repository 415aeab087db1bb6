package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Version string
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{Version: version}
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

type ServiceInfoResponse struct {
	Service      string   `json:"service" example:"cornerwatch"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Capabilities []string `json:"capabilities"`
}

// @Summary Health check
// @Description Check if the service is healthy and responsive
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// @Summary Service information
// @Description Get basic service information and capabilities
// @Tags health
// @Produce json
// @Success 200 {object} ServiceInfoResponse
// @Router / [get]
func (h *HealthHandler) ServiceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, ServiceInfoResponse{
		Service: "cornerwatch",
		Status:  "running",
		Version: h.Version,
		Capabilities: []string{
			"motion_detection",
			"region_masks",
			"corner_stop_zones",
			"auto_calibration",
		},
	})
}
