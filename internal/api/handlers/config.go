package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/coordinator"
)

const (
	versionHeader = "X-Config-Version"
	changedHeader = "X-Config-Changed"
)

type ConfigHandler struct {
	coord *coordinator.Coordinator
}

func NewConfigHandler(coord *coordinator.Coordinator) *ConfigHandler {
	return &ConfigHandler{coord: coord}
}

// GetConfig returns the detection settings
// @Summary Get detection settings
// @Description Current settings; the version is returned in the X-Config-Version header
// @Tags config
// @Produce json
// @Success 200 {object} models.Settings
// @Router /api/config [get]
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	settings, version := h.coord.Get()
	c.Header(versionHeader, strconv.FormatUint(version, 10))
	c.JSON(http.StatusOK, settings)
}

// UpdateConfig applies a partial update
// @Summary Update detection settings
// @Description Applies a JSON object of settings keys. Unknown keys and invalid values are rejected
// @Description without changing anything. An optional If-Match header carries the expected version.
// @Tags config
// @Accept json
// @Produce json
// @Param If-Match header string false "Expected configuration version"
// @Param request body models.SettingsPatch true "Settings to change"
// @Success 200 {object} models.Settings
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/config [put]
func (h *ConfigHandler) UpdateConfig(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, "failed to read request body")
		return
	}

	expected, ok := expectedVersion(c)
	if !ok {
		return
	}

	settings, version, changed, err := h.coord.Patch(raw, expected)
	h.respondUpdate(c, settings, version, changed, err)
}

// ReplaceConfig swaps the whole configuration
// @Summary Replace detection settings
// @Description Replaces every setting at once. Keys left out take their defaults; unknown keys
// @Description and invalid values are rejected without changing anything.
// @Tags config
// @Accept json
// @Produce json
// @Param If-Match header string false "Expected configuration version"
// @Param request body models.Settings true "Complete settings"
// @Success 200 {object} models.Settings
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/config/replace [post]
func (h *ConfigHandler) ReplaceConfig(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, "failed to read request body")
		return
	}

	expected, ok := expectedVersion(c)
	if !ok {
		return
	}

	next, err := models.ParseSettings(raw)
	if err != nil {
		respondError(c, err)
		return
	}

	settings, version, changed, err := h.coord.Replace(next, expected)
	h.respondUpdate(c, settings, version, changed, err)
}

func (h *ConfigHandler) respondUpdate(c *gin.Context, settings models.Settings, version uint64, changed bool, err error) {
	if err != nil {
		respondError(c, err)
		return
	}

	if changed {
		logging.Info(c).Uint64("version", version).Msg("Configuration updated")
	}
	c.Header(versionHeader, strconv.FormatUint(version, 10))
	c.Header(changedHeader, strconv.FormatBool(changed))
	c.JSON(http.StatusOK, settings)
}

// expectedVersion reads the optional If-Match header. It answers 400 itself
// and returns false when the header is not a version.
func expectedVersion(c *gin.Context) (*uint64, bool) {
	v := strings.Trim(c.GetHeader("If-Match"), `"W/ `)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		badRequest(c, "If-Match must be a configuration version")
		return nil, false
	}
	return &n, true
}
