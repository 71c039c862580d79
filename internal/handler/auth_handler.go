package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/middleware"
	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/service"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

// AuthHandler exposes the access-gate endpoints.
type AuthHandler struct {
	access *service.AccessService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(access *service.AccessService) *AuthHandler {
	return &AuthHandler{access: access}
}

// SubmitKey godoc
// @Summary Submit the operator access key
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.SubmitKeyRequest true "Access key"
// @Success 200 {object} response.Envelope
// @Router /auth/access-key [post]
func (h *AuthHandler) SubmitKey(c *gin.Context) {
	var req models.SubmitKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	info, err := h.access.SubmitKey(c.Request.Context(), req.AccessKey)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Session godoc
// @Summary Probe the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := h.access.CheckSession(c.Request.Context(), middleware.Token(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, models.SessionInfo{Authenticated: true, ExpiresAt: session.ExpiresAt}, nil)
}

// Logout godoc
// @Summary Close the current session
// @Tags Auth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.access.Logout(c.Request.Context(), middleware.Token(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
