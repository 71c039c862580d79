package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/service"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

// ViewHandler exposes the server-held list view: one stateful view per
// operator, restored from persisted preferences on first access.
type ViewHandler struct {
	views *service.ViewService
}

// NewViewHandler constructs ViewHandler.
func NewViewHandler(views *service.ViewService) *ViewHandler {
	return &ViewHandler{views: views}
}

// Get godoc
// @Summary Read the operator's current list view
// @Tags Students
// @Produce json
// @Param operator query string false "Operator name"
// @Success 200 {object} response.Envelope
// @Router /students/view [get]
func (h *ViewHandler) Get(c *gin.Context) {
	snap := h.views.Snapshot(c.Request.Context(), operatorName(c))
	response.JSON(c, http.StatusOK, snap, nil)
}

// Put godoc
// @Summary Change the operator's list view state
// @Tags Students
// @Accept json
// @Produce json
// @Param operator query string false "Operator name"
// @Param payload body service.ViewUpdate true "Partial view change"
// @Success 200 {object} response.Envelope
// @Router /students/view [put]
func (h *ViewHandler) Put(c *gin.Context) {
	var upd service.ViewUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	snap := h.views.Update(c.Request.Context(), operatorName(c), upd)
	response.JSON(c, http.StatusOK, snap, nil)
}
