package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
)

type mockStudentRepo struct {
	mu        sync.Mutex
	students  []models.Student
	listErr   error
	insertErr error
	deleteErr error

	listCalls   int
	insertCalls int
}

func (m *mockStudentRepo) List(ctx context.Context, q models.ListQuery) ([]models.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Student{}, m.students...), nil
}

func (m *mockStudentRepo) listCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			s := m.students[i]
			return &s, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) Insert(ctx context.Context, student *models.Student) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if student.ID == "" {
		student.ID = "generated"
	}
	m.students = append(m.students, *student)
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	for i := range m.students {
		if m.students[i].ID == student.ID {
			m.students[i] = *student
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i := range m.students {
		if m.students[i].ID == id {
			m.students = append(m.students[:i], m.students[i+1:]...)
			return nil
		}
	}
	return nil
}

func validCreateRequest() CreateStudentRequest {
	return CreateStudentRequest{
		ChildName:  "Петренко Іван",
		Gender:     models.GenderMale,
		BirthDate:  "2015-04-10",
		Address:    "вул. Шевченка 12",
		ParentName: "Петренко Олена",
	}
}

func TestStudentServiceCreate(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), validCreateRequest(), models.ListQuery{})
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, "Петренко Іван", student.ChildName)
	assert.Len(t, repo.students, 1)
}

func TestStudentServiceCreateEmptyNameNeverHitsGateway(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	req := validCreateRequest()
	req.ChildName = ""
	_, err := svc.Create(context.Background(), req, models.ListQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.listCalls)
	assert.Zero(t, repo.insertCalls)
}

func TestStudentServiceCreateRejectsDigitsInName(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	req := validCreateRequest()
	req.ChildName = "Іван 2-Б"
	_, err := svc.Create(context.Background(), req, models.ListQuery{})
	require.Error(t, err)
	assert.Zero(t, repo.insertCalls)
}

func TestStudentServiceCreateShortAddressRejected(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	req := validCreateRequest()
	req.Address = "вул"
	_, err := svc.Create(context.Background(), req, models.ListQuery{})
	require.Error(t, err)
	assert.Zero(t, repo.insertCalls)
}

func TestStudentServiceCreateDuplicateInLoadedView(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		ID:         "id1",
		ChildName:  "петренко іван ",
		Gender:     models.GenderMale,
		BirthDate:  time.Date(2015, 4, 10, 0, 0, 0, 0, time.UTC),
		Address:    " ВУЛ. ШЕВЧЕНКА 12",
		ParentName: "Петренко Олена",
	}}}
	svc := NewStudentService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validCreateRequest(), models.ListQuery{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErrors.FromError(err).Code)
	assert.Zero(t, repo.insertCalls)
}

func TestStudentServiceCreateDuplicateCheckIsScopedToView(t *testing.T) {
	// The guard only sees what the filter loads; an identical record the
	// filter hides is not caught. That mirrors the view-scoped guard.
	repo := &mockStudentRepo{}
	svc := NewStudentService(repo, nil, nil)

	student, err := svc.Create(context.Background(), validCreateRequest(), models.ListQuery{Gender: models.GenderFemale})
	require.NoError(t, err)
	assert.NotNil(t, student)
}

func TestStudentServiceUpdate(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{
		ID:        "id1",
		ChildName: "Старе Імʼя",
		Gender:    models.GenderMale,
		BirthDate: time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC),
		Address:   "вул. Лесі Українки 3",
	}}}
	svc := NewStudentService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), "id1", UpdateStudentRequest{
		ChildName: "Нове Імʼя",
		Gender:    models.GenderFemale,
		BirthDate: "2014-06-15",
		Address:   "вул. Франка 8",
	})
	require.NoError(t, err)
	assert.Equal(t, "Нове Імʼя", updated.ChildName)
	assert.Equal(t, models.GenderFemale, updated.Gender)
	assert.Equal(t, "вул. Франка 8", updated.Address)
}

func TestStudentServiceUpdateNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, nil, nil)

	_, err := svc.Update(context.Background(), "missing", UpdateStudentRequest{
		ChildName: "Петренко Іван",
		BirthDate: "2015-04-10",
		Address:   "вул. Шевченка 12",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceDeleteRemovesRecord(t *testing.T) {
	repo := &mockStudentRepo{students: []models.Student{{ID: "id1", ChildName: "А", BirthDate: time.Now()}}}
	svc := NewStudentService(repo, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "id1"))

	students, _, err := svc.List(context.Background(), models.ListQuery{})
	require.NoError(t, err)
	for _, s := range students {
		assert.NotEqual(t, "id1", s.ID)
	}
}

func TestStudentServiceDeleteFailureKeepsRecord(t *testing.T) {
	repo := &mockStudentRepo{
		students:  []models.Student{{ID: "id1", ChildName: "А", BirthDate: time.Now()}},
		deleteErr: errors.New("gateway down"),
	}
	svc := NewStudentService(repo, nil, nil)

	require.Error(t, svc.Delete(context.Background(), "id1"))

	students, _, err := svc.List(context.Background(), models.ListQuery{})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "id1", students[0].ID)
}

func TestStudentServiceListFailSoft(t *testing.T) {
	repo := &mockStudentRepo{listErr: errors.New("gateway down")}
	svc := NewStudentService(repo, nil, nil)

	students, _, err := svc.List(context.Background(), models.ListQuery{})
	require.Error(t, err)
	assert.NotNil(t, students)
	assert.Empty(t, students)
}

func TestStudentServiceListPaginates(t *testing.T) {
	repo := &mockStudentRepo{}
	for i := 0; i < 25; i++ {
		repo.students = append(repo.students, models.Student{ID: string(rune('a' + i))})
	}
	svc := NewStudentService(repo, nil, nil)

	page, pagination, err := svc.List(context.Background(), models.ListQuery{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page, 5)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 25, pagination.TotalCount)
}
