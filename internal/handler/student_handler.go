package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/service"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

// StudentHandler exposes the registry record endpoints.
type StudentHandler struct {
	students       *service.StudentService
	views          *service.ViewService
	defaultPerPage int
}

// NewStudentHandler constructs StudentHandler. views may be nil when no
// server-held view sessions exist.
func NewStudentHandler(students *service.StudentService, views *service.ViewService, defaultPerPage int) *StudentHandler {
	return &StudentHandler{students: students, views: views, defaultPerPage: defaultPerPage}
}

// noteMutation tells the operator's view session to reload after a
// successful create, update or delete.
func (h *StudentHandler) noteMutation(c *gin.Context) {
	if h.views != nil {
		h.views.NoteMutation(c.Request.Context(), operatorName(c))
	}
}

// parseListQuery reads the filter/sort/page state from query parameters.
// The same state is parsed on mutations so the duplicate guard sees the
// view the operator is looking at.
func (h *StudentHandler) parseListQuery(c *gin.Context) models.ListQuery {
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
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		q.Page = page
	}
	if size, err := strconv.Atoi(c.Query("limit")); err == nil {
		q.PerPage = size
	} else {
		q.PerPage = h.defaultPerPage
	}
	return q
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Match child, parent or address"
// @Param gender query string false "Gender filter (Ч, Ж or all)"
// @Param address query string false "Address substring filter"
// @Param date_from query string false "Inclusive lower birth-date bound"
// @Param date_to query string false "Inclusive upper birth-date bound"
// @Param year query int false "Birth-year shortcut, overrides date bounds"
// @Param sort query string false "Sort column"
// @Param order query string false "asc or desc"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	q := h.parseListQuery(c)
	students, pagination, err := h.students.List(c.Request.Context(), q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Create godoc
// @Summary Create student record
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.CreateStudentRequest true "Record payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req service.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req, h.parseListQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.noteMutation(c)
	response.Created(c, student)
}

// Update godoc
// @Summary Update student record
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Record ID"
// @Param payload body service.UpdateStudentRequest true "Record payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.noteMutation(c)
	response.JSON(c, http.StatusOK, student, nil)
}

// Delete godoc
// @Summary Delete student record
// @Tags Students
// @Produce json
// @Param id path string true "Record ID"
// @Success 204
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.noteMutation(c)
	response.NoContent(c)
}
