package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services"
)

type CalibrationHandler struct {
	container *services.ServiceContainer
}

func NewCalibrationHandler(container *services.ServiceContainer) *CalibrationHandler {
	return &CalibrationHandler{container: container}
}

type OverrideRequest struct {
	Profile string `json:"profile" binding:"required" example:"Ni"`
}

// GetCalibration returns the active profile and thresholds
// @Summary Calibration status
// @Tags calibration
// @Produce json
// @Success 200 {object} models.CalibrationResponse
// @Router /api/calibration [get]
func (h *CalibrationHandler) GetCalibration(c *gin.Context) {
	c.JSON(http.StatusOK, h.container.CalibrationStatus())
}

// ListProfiles returns the five presets
// @Summary Camera profiles
// @Tags calibration
// @Produce json
// @Success 200 {array} models.ProfileInfo
// @Router /api/calibration/profiles [get]
func (h *CalibrationHandler) ListProfiles(c *gin.Context) {
	profiles := models.Profiles()
	out := make([]models.ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p.Info())
	}
	c.JSON(http.StatusOK, out)
}

// Run measures luminance and applies the selected profile now
// @Summary Calibrate now
// @Tags calibration
// @Produce json
// @Success 200 {object} models.CalibrationResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/calibration/run [post]
func (h *CalibrationHandler) Run(c *gin.Context) {
	if _, err := h.container.Calibration.Calibrate(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.container.CalibrationStatus())
}

// SetOverride pins a profile
// @Summary Pin a profile
// @Description Pins a profile by code (Br, Da, Du, Dk, Ni); luminance is still measured and reported
// @Tags calibration
// @Accept json
// @Produce json
// @Param request body OverrideRequest true "Profile code"
// @Success 200 {object} models.CalibrationResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/calibration/override [put]
func (h *CalibrationHandler) SetOverride(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.setManualProfile(c, req.Profile)
}

// ClearOverride returns to automatic selection
// @Summary Clear the pinned profile
// @Tags calibration
// @Produce json
// @Success 200 {object} models.CalibrationResponse
// @Router /api/calibration/override [delete]
func (h *CalibrationHandler) ClearOverride(c *gin.Context) {
	h.setManualProfile(c, "")
}

func (h *CalibrationHandler) setManualProfile(c *gin.Context, code string) {
	raw, err := json.Marshal(map[string]string{"manual_profile": code})
	if err != nil {
		respondError(c, err)
		return
	}
	if _, _, _, err := h.container.Coordinator.Patch(raw, nil); err != nil {
		respondError(c, err)
		return
	}

	// apply right away; a busy device is retried by the periodic task
	if _, err := h.container.Calibration.Calibrate(c.Request.Context()); err != nil {
		logging.Warn(c).Err(err).Str("profile", code).Msg("Override saved, apply deferred")
	}
	c.JSON(http.StatusOK, h.container.CalibrationStatus())
}
