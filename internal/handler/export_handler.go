package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/service"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

// ExportHandler streams filtered registry exports as file downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export godoc
// @Summary Export students matching the current filters
// @Tags Students
// @Produce application/octet-stream
// @Param format query string false "xlsx (default), csv or pdf"
// @Param search query string false "Match child, parent or address"
// @Param gender query string false "Gender filter"
// @Param address query string false "Address substring filter"
// @Param date_from query string false "Inclusive lower birth-date bound"
// @Param date_to query string false "Inclusive upper birth-date bound"
// @Param year query int false "Birth-year shortcut"
// @Success 200 {file} binary
// @Router /students/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	// Pagination parameters are ignored on purpose: exports cover every
	// matching row, not the visible page.
	q := models.ListQuery{
		Search:    strings.TrimSpace(c.Query("search")),
		Gender:    c.Query("gender"),
		Address:   c.Query("address"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		q.Year = year
	}

	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatXLSX)))
	result, err := h.exports.Export(c.Request.Context(), q, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	c.Header("X-Export-Count", strconv.Itoa(result.Count))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
