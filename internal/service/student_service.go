package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/osvita-dev/kids-registry-api/internal/listview"
	"github.com/osvita-dev/kids-registry-api/internal/models"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, q models.ListQuery) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Insert(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// personNamePattern accepts letters, spaces, apostrophes and hyphens.
// Digits and other punctuation are rejected.
var personNamePattern = regexp.MustCompile(`^[\p{L}][\p{L}' -]+$`)

// RegisterNameValidation installs the person-name rule on a validator.
func RegisterNameValidation(v *validator.Validate) error {
	return v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

// CreateStudentRequest holds payload for creating records.
type CreateStudentRequest struct {
	ChildName  string `json:"child_name" validate:"required,min=2,personname"`
	Gender     string `json:"gender" validate:"omitempty,oneof=Ч Ж"`
	BirthDate  string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Address    string `json:"address" validate:"required,min=5"`
	ParentName string `json:"parent_name" validate:"omitempty,min=2,personname"`
	SeqNumber  string `json:"seq_number"`
}

// UpdateStudentRequest holds payload for editing records.
type UpdateStudentRequest struct {
	ChildName  string `json:"child_name" validate:"required,min=2,personname"`
	Gender     string `json:"gender" validate:"omitempty,oneof=Ч Ж"`
	BirthDate  string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	Address    string `json:"address" validate:"required,min=5"`
	ParentName string `json:"parent_name" validate:"omitempty,min=2,personname"`
	SeqNumber  string `json:"seq_number"`
}

// StudentService is the record service over the collection gateway. All
// gateway failures are normalised into typed errors; none escape raw.
type StudentService struct {
	repo      studentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
		_ = RegisterNameValidation(validate)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, validator: validate, logger: logger}
}

// List returns one page of matching records plus pagination metadata. The
// full filtered set is fetched and sliced here; the store never paginates.
// Listing is fail-soft: on gateway failure the result is an empty page and
// the error is normalised for the transport layer, so the view falls back
// to empty rather than holding stale rows.
func (s *StudentService) List(ctx context.Context, q models.ListQuery) ([]models.Student, *models.Pagination, error) {
	students, err := s.repo.List(ctx, q)
	if err != nil {
		s.logger.Error("list students failed", zap.Error(err))
		empty := []models.Student{}
		return empty, &models.Pagination{Page: 1, PerPage: q.PerPage},
			appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page, pagination := listview.Slice(students, q.Page, q.PerPage)
	return page, &pagination, nil
}

// Create validates the payload, applies the duplicate guard against the
// currently loaded (filtered) view, then inserts. The guard only sees the
// view: a duplicate hidden by the active filter is not caught. Validation
// failures never reach the gateway.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest, view models.ListQuery) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	birthDate, err := time.Parse(models.DateOnly, req.BirthDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth date")
	}

	candidate := models.Student{
		ChildName:  strings.TrimSpace(req.ChildName),
		Gender:     req.Gender,
		BirthDate:  birthDate,
		Address:    strings.TrimSpace(req.Address),
		ParentName: strings.TrimSpace(req.ParentName),
		SeqNumber:  strings.TrimSpace(req.SeqNumber),
	}

	loaded, err := s.repo.List(ctx, view.WithoutPaging())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check for duplicates")
	}
	key := candidate.DedupeKey()
	for _, existing := range loaded {
		if existing.DedupeKey() == key {
			return nil, appErrors.Clone(appErrors.ErrDuplicate, "")
		}
	}

	if err := s.repo.Insert(ctx, &candidate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	return &candidate, nil
}

// Update replaces the editable fields of an existing record and returns
// the updated state. Last write wins.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	birthDate, err := time.Parse(models.DateOnly, req.BirthDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid birth date")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	student.ChildName = strings.TrimSpace(req.ChildName)
	student.Gender = req.Gender
	student.BirthDate = birthDate
	student.Address = strings.TrimSpace(req.Address)
	student.ParentName = strings.TrimSpace(req.ParentName)
	student.SeqNumber = strings.TrimSpace(req.SeqNumber)

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a record by ID.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	return nil
}
