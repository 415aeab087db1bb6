package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cornerwatch-go/internal/api/middleware"
	"cornerwatch-go/internal/logging"
	"cornerwatch-go/internal/models"
	"cornerwatch-go/internal/services/coordinator"
)

type OwnershipHandler struct {
	coord *coordinator.Coordinator
}

func NewOwnershipHandler(coord *coordinator.Coordinator) *OwnershipHandler {
	return &OwnershipHandler{coord: coord}
}

type ClaimRequest struct {
	ClientID string `json:"client_id" example:"kitchen-tablet"`
	Force    bool   `json:"force"`
}

type ClaimResponse struct {
	Token string       `json:"token"`
	Owner models.Owner `json:"owner"`
}

type ReleaseRequest struct {
	Token string `json:"token" binding:"required"`
}

type OwnerResponse struct {
	Owner *models.Owner `json:"owner"`
}

// GetOwner returns the current token holder
// @Summary Current owner
// @Tags ownership
// @Produce json
// @Success 200 {object} OwnerResponse
// @Router /api/ownership [get]
func (h *OwnershipHandler) GetOwner(c *gin.Context) {
	c.JSON(http.StatusOK, OwnerResponse{Owner: h.coord.Owner()})
}

// Claim takes the advisory editing token
// @Summary Claim ownership
// @Description Ownership is advisory: it does not block writes by other clients.
// @Description The client id falls back to the X-Client-ID header.
// @Tags ownership
// @Accept json
// @Produce json
// @Param request body ClaimRequest true "Claim"
// @Success 200 {object} ClaimResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/ownership/claim [post]
func (h *OwnershipHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if req.ClientID == "" {
		req.ClientID = c.GetHeader(middleware.ClientIDHeader)
	}

	token, owner, err := h.coord.Claim(req.ClientID, req.Force)
	if err != nil {
		respondError(c, err)
		return
	}

	logging.Info(c).Str("owner", owner.ClientID).Bool("force", req.Force).Msg("Ownership claimed")
	c.JSON(http.StatusOK, ClaimResponse{Token: token, Owner: owner})
}

// Release returns the token
// @Summary Release ownership
// @Tags ownership
// @Accept json
// @Produce json
// @Param request body ReleaseRequest true "Release"
// @Success 200 {object} OwnerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/ownership/release [post]
func (h *OwnershipHandler) Release(c *gin.Context) {
	var req ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.coord.Release(req.Token); err != nil {
		respondError(c, err)
		return
	}

	logging.Info(c).Msg("Ownership released")
	c.JSON(http.StatusOK, OwnerResponse{Owner: h.coord.Owner()})
}
