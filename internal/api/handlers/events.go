package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/eventlog"
)

// EventSource lists recent motion events
type EventSource interface {
	Recent(limit int) ([]models.MotionEvent, error)
}

type EventsHandler struct {
	events EventSource
	max    int
}

func NewEventsHandler(events EventSource, max int) *EventsHandler {
	return &EventsHandler{events: events, max: max}
}

type EventsResponse struct {
	Events []models.MotionEvent `json:"events"`
	Count  int                  `json:"count"`
}

// ListEvents returns recent motion events
// @Summary Recent motion events
// @Tags events
// @Produce json
// @Param limit query int false "Maximum number of events" default(50)
// @Success 200 {object} EventsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/events [get]
func (h *EventsHandler) ListEvents(c *gin.Context) {
	limit := eventlog.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, h.max)
	}

	events, err := h.events.Recent(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, EventsResponse{Events: events, Count: len(events)})
}
