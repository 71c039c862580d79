package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/osvita-dev/kids-registry-api/internal/listview"
	"github.com/osvita-dev/kids-registry-api/internal/models"
)

// ViewUpdate is a partial change to an operator's list view. Nil fields
// are left as they are; a set search term refetches after the debounce,
// everything else refetches immediately.
type ViewUpdate struct {
	Search    *string `json:"search"`
	Gender    *string `json:"gender"`
	Address   *string `json:"address"`
	DateFrom  *string `json:"date_from"`
	DateTo    *string `json:"date_to"`
	Year      *int    `json:"year"`
	SortBy    *string `json:"sort_by"`
	SortOrder *string `json:"sort_order"`
	Page      *int    `json:"page"`
	PerPage   *int    `json:"per_page"`
}

// ViewSnapshot is the current state of an operator's list view.
type ViewSnapshot struct {
	Students   []models.Student  `json:"students"`
	Pagination models.Pagination `json:"pagination"`
	State      string            `json:"state"`
}

// ViewService keeps one list-view controller per operator. A view is
// created on first use with the operator's persisted preferences applied;
// durable filter choices are written back on every change.
type ViewService struct {
	repo    studentRepository
	prefs   *PreferenceService
	settle  time.Duration
	perPage int
	logger  *zap.Logger

	mu    sync.Mutex
	views map[string]*listview.Controller
}

// NewViewService constructs a ViewService. settle is the search debounce
// window.
func NewViewService(repo studentRepository, prefs *PreferenceService, settle time.Duration, perPage int, logger *zap.Logger) *ViewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ViewService{
		repo:    repo,
		prefs:   prefs,
		settle:  settle,
		perPage: perPage,
		logger:  logger,
		views:   map[string]*listview.Controller{},
	}
}

// view returns the operator's controller, creating and seeding it on first
// use.
func (s *ViewService) view(ctx context.Context, operator string) *listview.Controller {
	s.mu.Lock()
	ctrl, ok := s.views[operator]
	if !ok {
		ctrl = listview.NewController(s.fetch, s.settle, s.perPage, s.logger)
		s.views[operator] = ctrl
	}
	s.mu.Unlock()

	if !ok {
		if s.prefs != nil {
			ctrl.ApplyPreferences(ctx, s.prefs.Load(ctx, operator))
		} else {
			ctrl.Refresh(ctx)
		}
	}
	return ctrl
}

func (s *ViewService) fetch(ctx context.Context, q models.ListQuery) ([]models.Student, error) {
	return s.repo.List(ctx, q)
}

// Snapshot returns the operator's current view without changing it.
func (s *ViewService) Snapshot(ctx context.Context, operator string) ViewSnapshot {
	return snapshotOf(s.view(ctx, operator))
}

// Update applies a partial state change, persists the durable filter
// choices, and returns the resulting view. A debounced search change may
// still show the previous rows until the timer fires.
func (s *ViewService) Update(ctx context.Context, operator string, upd ViewUpdate) ViewSnapshot {
	ctrl := s.view(ctx, operator)

	if upd.Gender != nil {
		ctrl.SetGender(ctx, *upd.Gender)
	}
	if upd.Address != nil {
		ctrl.SetAddress(ctx, *upd.Address)
	}
	if upd.DateFrom != nil || upd.DateTo != nil {
		q := ctrl.Query()
		from, to := q.DateFrom, q.DateTo
		if upd.DateFrom != nil {
			from = *upd.DateFrom
		}
		if upd.DateTo != nil {
			to = *upd.DateTo
		}
		ctrl.SetDateRange(ctx, from, to)
	}
	if upd.Year != nil {
		ctrl.SetYear(ctx, *upd.Year)
	}
	if upd.SortBy != nil || upd.SortOrder != nil {
		q := ctrl.Query()
		sortBy, sortOrder := q.SortBy, q.SortOrder
		if upd.SortBy != nil {
			sortBy = *upd.SortBy
		}
		if upd.SortOrder != nil {
			sortOrder = *upd.SortOrder
		}
		ctrl.SetSort(ctx, sortBy, sortOrder)
	}
	if upd.PerPage != nil {
		ctrl.SetPerPage(ctx, *upd.PerPage)
	}
	if upd.Page != nil {
		ctrl.SetPage(ctx, *upd.Page)
	}
	if upd.Search != nil {
		ctrl.SetSearchTerm(*upd.Search)
	}

	s.persistPreferences(ctx, operator, ctrl.Query())
	return snapshotOf(ctrl)
}

// NoteMutation refreshes the operator's view after a successful create,
// update or delete.
func (s *ViewService) NoteMutation(ctx context.Context, operator string) {
	s.mu.Lock()
	ctrl, ok := s.views[operator]
	s.mu.Unlock()
	if ok {
		ctrl.NoteMutation(ctx)
	}
}

// Close stops every view's pending debounced fetch.
func (s *ViewService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ctrl := range s.views {
		ctrl.Close()
	}
	s.views = map[string]*listview.Controller{}
}

func (s *ViewService) persistPreferences(ctx context.Context, operator string, q models.ListQuery) {
	if s.prefs == nil {
		return
	}
	prefs := models.FilterPreferences{
		Search:    q.Search,
		Gender:    q.Gender,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Year:      q.Year,
	}
	if err := s.prefs.Save(ctx, operator, prefs); err != nil {
		s.logger.Warn("failed to persist view preferences", zap.Error(err))
	}
}

func snapshotOf(ctrl *listview.Controller) ViewSnapshot {
	students, pagination, state, _ := ctrl.Snapshot()
	return ViewSnapshot{
		Students:   students,
		Pagination: pagination,
		State:      state.String(),
	}
}
