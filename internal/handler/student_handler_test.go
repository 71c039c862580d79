package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	"github.com/osvita-dev/kids-registry-api/internal/service"
	"github.com/osvita-dev/kids-registry-api/pkg/response"
)

type studentRepoMock struct {
	students  []models.Student
	listErr   error
	lastQuery models.ListQuery
}

func (m *studentRepoMock) List(ctx context.Context, q models.ListQuery) ([]models.Student, error) {
	m.lastQuery = q
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Student{}, m.students...), nil
}

func (m *studentRepoMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			s := m.students[i]
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *studentRepoMock) Insert(ctx context.Context, student *models.Student) error {
	student.ID = "new-id"
	m.students = append(m.students, *student)
	return nil
}

func (m *studentRepoMock) Update(ctx context.Context, student *models.Student) error {
	return nil
}

func (m *studentRepoMock) Delete(ctx context.Context, id string) error {
	return nil
}

func newStudentTestHandler(repo *studentRepoMock) *StudentHandler {
	return NewStudentHandler(service.NewStudentService(repo, nil, nil), nil, 10)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestStudentHandlerListParsesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &studentRepoMock{students: []models.Student{{ID: "a", ChildName: "Петренко Іван"}}}
	handler := newStudentTestHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students?search=Петренко&gender=Ч&year=2015&sort=child_name&order=desc&page=2&limit=5", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Петренко", repo.lastQuery.Search)
	assert.Equal(t, models.GenderMale, repo.lastQuery.Gender)
	assert.Equal(t, 2015, repo.lastQuery.Year)
	assert.Equal(t, "child_name", repo.lastQuery.SortBy)
	assert.Equal(t, "desc", repo.lastQuery.SortOrder)
	assert.Equal(t, 2, repo.lastQuery.Page)
	assert.Equal(t, 5, repo.lastQuery.PerPage)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 1, env.Pagination.TotalCount)
}

func TestStudentHandlerListHugePageIsEmptyNotError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &studentRepoMock{students: []models.Student{{ID: "a"}, {ID: "b"}}}
	handler := newStudentTestHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/students?page=9223372036854775807", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	assert.Nil(t, env.Error)
	assert.Equal(t, 2, env.Pagination.TotalCount)
	students, ok := env.Data.([]interface{})
	if ok {
		assert.Empty(t, students)
	}
}

func TestStudentHandlerCreate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentTestHandler(&studentRepoMock{})

	body := `{"child_name":"Петренко Іван","gender":"Ч","birth_date":"2015-04-10","address":"вул. Шевченка 12"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestStudentHandlerCreateMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentTestHandler(&studentRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(`{"child_name":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerCreateRejectsBlankName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &studentRepoMock{}
	handler := newStudentTestHandler(repo)

	body := `{"child_name":"","birth_date":"2015-04-10","address":"вул. Шевченка 12"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/students", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Empty(t, repo.students, "invalid payload must not reach the gateway")
}

func TestStudentHandlerDeleteNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newStudentTestHandler(&studentRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/students/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentHandlerUpdate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &studentRepoMock{students: []models.Student{{
		ID:        "id1",
		ChildName: "Старе Імʼя",
		BirthDate: time.Date(2015, 4, 10, 0, 0, 0, 0, time.UTC),
		Address:   "вул. Шевченка 12",
	}}}
	handler := newStudentTestHandler(repo)

	body := `{"child_name":"Нове Імʼя","birth_date":"2015-04-10","address":"вул. Шевченка 12"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/students/id1", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "id1"}}

	handler.Update(c)
	require.Equal(t, http.StatusOK, w.Code)
}
