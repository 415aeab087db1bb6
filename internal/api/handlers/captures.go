package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/helpers"
	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/capture"
)

type CapturesHandler struct {
	store *capture.Store
}

func NewCapturesHandler(store *capture.Store) *CapturesHandler {
	return &CapturesHandler{store: store}
}

type CapturesResponse struct {
	Captures []models.CapturedStill `json:"captures"`
	Count    int                    `json:"count"`
}

func captureURL(name string) string {
	return "/api/captures/" + name
}

// ListCaptures lists stills in the capture directory
// @Summary List captured stills
// @Tags captures
// @Produce json
// @Success 200 {object} CapturesResponse
// @Router /api/captures [get]
func (h *CapturesHandler) ListCaptures(c *gin.Context) {
	stills, err := h.store.List()
	if err != nil {
		respondError(c, err)
		return
	}
	for i := range stills {
		stills[i].URL = captureURL(stills[i].Name)
	}
	c.JSON(http.StatusOK, CapturesResponse{Captures: stills, Count: len(stills)})
}

// GetCapture downloads a still
// @Summary Download a still
// @Tags captures
// @Produce jpeg
// @Param name path string true "File name"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /api/captures/{name} [get]
func (h *CapturesHandler) GetCapture(c *gin.Context) {
	path, err := h.store.Path(c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.File(path)
}

// DeleteCapture removes a still
// @Summary Delete a still
// @Tags captures
// @Param name path string true "File name"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/captures/{name} [delete]
func (h *CapturesHandler) DeleteCapture(c *gin.Context) {
	name := c.Param("name")
	if err := h.store.Delete(name); err != nil {
		respondError(c, err)
		return
	}
	logging.Info(c).Str("file", name).Msg("Capture deleted")
	c.Status(http.StatusNoContent)
}

// GetThumbnail returns a scaled preview
// @Summary Still thumbnail
// @Tags captures
// @Produce jpeg
// @Param name path string true "File name"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /api/captures/{name}/thumbnail [get]
func (h *CapturesHandler) GetThumbnail(c *gin.Context) {
	name := c.Param("name")
	data, err := h.store.Read(name)
	if err != nil {
		respondError(c, err)
		return
	}

	thumb, err := helpers.Thumbnail(data, helpers.ThumbnailWidth, helpers.ThumbnailHeight, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "max-age=3600")
	c.Data(http.StatusOK, "image/jpeg", thumb)
}
