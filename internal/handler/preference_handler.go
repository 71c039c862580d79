package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/service"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

// The gate has a single shared key, so preferences are one blob per
// deployment unless the client names an operator explicitly.
const defaultOperator = "default"

// PreferenceHandler exposes the persisted filter-preference endpoints.
type PreferenceHandler struct {
	prefs *service.PreferenceService
}

// NewPreferenceHandler constructs PreferenceHandler.
func NewPreferenceHandler(prefs *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

func operatorName(c *gin.Context) string {
	if op := c.Query("operator"); op != "" {
		return op
	}
	return defaultOperator
}

// Get godoc
// @Summary Load persisted filter preferences
// @Tags Preferences
// @Produce json
// @Param operator query string false "Operator name"
// @Success 200 {object} response.Envelope
// @Router /preferences/filters [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	prefs := h.prefs.Load(c.Request.Context(), operatorName(c))
	response.JSON(c, http.StatusOK, prefs, nil)
}

// Put godoc
// @Summary Save filter preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param operator query string false "Operator name"
// @Param payload body models.FilterPreferences true "Preferences"
// @Success 200 {object} response.Envelope
// @Router /preferences/filters [put]
func (h *PreferenceHandler) Put(c *gin.Context) {
	var prefs models.FilterPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.prefs.Save(c.Request.Context(), operatorName(c), prefs); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, prefs, nil)
}

// Delete godoc
// @Summary Clear filter preferences
// @Tags Preferences
// @Param operator query string false "Operator name"
// @Success 204
// @Router /preferences/filters [delete]
func (h *PreferenceHandler) Delete(c *gin.Context) {
	if err := h.prefs.Clear(c.Request.Context(), operatorName(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
