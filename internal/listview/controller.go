package listview

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/osvita-dev/kids-registry-api/internal/models"
)

// State is the per-fetch-cycle phase of the list view.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "ready"
	}
}

// Fetcher loads the full filtered record set for a query. The controller
// always clears the page state before calling it.
type Fetcher func(ctx context.Context, q models.ListQuery) ([]models.Student, error)

// Controller owns the list-view state: the active filters, the fetched
// set, and the Loading/Ready/Error cycle. Filter, sort and page changes
// refetch immediately; search-term edits refetch after a debounce so rapid
// typing issues one request. Each fetch carries a monotonically increasing
// generation token and a completing fetch is applied only when its token
// is still the latest, so out-of-order completions cannot clobber a newer
// result.
type Controller struct {
	fetch    Fetcher
	debounce *Debouncer
	logger   *zap.Logger

	gen atomic.Uint64

	mu       sync.Mutex
	query    models.ListQuery
	students []models.Student
	state    State
	lastErr  error
}

// NewController constructs a controller around a fetcher. searchSettle is
// the quiet period for search-term edits.
func NewController(fetch Fetcher, searchSettle time.Duration, perPage int, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	return &Controller{
		fetch:    fetch,
		debounce: NewDebouncer(searchSettle),
		logger:   logger,
		query:    models.ListQuery{Page: 1, PerPage: perPage},
		students: []models.Student{},
		state:    StateReady,
	}
}

// Query returns a copy of the active filter/sort/page state.
func (c *Controller) Query() models.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Snapshot returns the current page slice, pagination and state.
func (c *Controller) Snapshot() ([]models.Student, models.Pagination, State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	page, pagination := Slice(c.students, c.query.Page, c.query.PerPage)
	return page, pagination, c.state, c.lastErr
}

// Refresh refetches the full filtered set immediately.
func (c *Controller) Refresh(ctx context.Context) {
	c.startFetch(ctx)
}

// SetSearchTerm updates the search term and schedules a debounced refetch;
// each keystroke restarts the timer so only the settled value fires.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.query.Search = term
	c.query.Page = 1
	c.mu.Unlock()
	c.debounce.Call(func() {
		c.startFetch(context.Background())
	})
}

// ApplyPreferences restores persisted filter choices onto the view, as at
// startup, and refetches.
func (c *Controller) ApplyPreferences(ctx context.Context, prefs models.FilterPreferences) {
	c.updateAndFetch(ctx, func(q *models.ListQuery) { *q = prefs.Apply(*q) })
}

// SetGender updates the gender filter and refetches.
func (c *Controller) SetGender(ctx context.Context, gender string) {
	c.updateAndFetch(ctx, func(q *models.ListQuery) { q.Gender = gender })
}

// SetAddress updates the address filter and refetches.
func (c *Controller) SetAddress(ctx context.Context, address string) {
	c.updateAndFetch(ctx, func(q *models.ListQuery) { q.Address = address })
}

// SetDateRange updates the inclusive birth-date bounds and refetches.
func (c *Controller) SetDateRange(ctx context.Context, from, to string) {
	c.updateAndFetch(ctx, func(q *models.ListQuery) {
		q.DateFrom = from
		q.DateTo = to
		q.Year = 0
	})
}

// SetYear applies the year shortcut, which overrides explicit bounds.
func (c *Controller) SetYear(ctx context.Context, year int) {
	c.updateAndFetch(ctx, func(q *models.ListQuery) { q.Year = year })
}

// SetSort updates the sort column and direction and refetches.
func (c *Controller) SetSort(ctx context.Context, sortBy, sortOrder string) {
	c.updateAndFetch(ctx, func(q *models.ListQuery) {
		q.SortBy = sortBy
		q.SortOrder = sortOrder
	})
}

// SetPage moves to another page of the already filtered set.
func (c *Controller) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	c.query.Page = page
	c.mu.Unlock()
	c.startFetch(ctx)
}

// SetPerPage changes the page size and resets to page 1.
func (c *Controller) SetPerPage(ctx context.Context, perPage int) {
	c.mu.Lock()
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	c.query.PerPage = perPage
	c.query.Page = 1
	c.mu.Unlock()
	c.startFetch(ctx)
}

// NoteMutation is called after a successful create, update or delete: the
// view resets to page 1 and reloads the full filtered set, so the visible
// list always reflects committed filters and sort.
func (c *Controller) NoteMutation(ctx context.Context) {
	c.mu.Lock()
	c.query.Page = 1
	c.mu.Unlock()
	c.startFetch(ctx)
}

// Close cancels any pending debounced fetch.
func (c *Controller) Close() {
	c.debounce.Stop()
}

func (c *Controller) updateAndFetch(ctx context.Context, mutate func(*models.ListQuery)) {
	c.mu.Lock()
	mutate(&c.query)
	c.query.Page = 1
	c.mu.Unlock()
	c.startFetch(ctx)
}

func (c *Controller) startFetch(ctx context.Context) {
	gen := c.gen.Add(1)

	c.mu.Lock()
	c.state = StateLoading
	q := c.query.WithoutPaging()
	c.mu.Unlock()

	students, err := c.fetch(ctx, q)
	c.apply(gen, students, err)
}

// apply installs a fetch result only if it belongs to the latest issued
// generation; a superseded result is discarded.
func (c *Controller) apply(gen uint64, students []models.Student, err error) {
	if gen != c.gen.Load() {
		c.logger.Debug("discarding superseded fetch", zap.Uint64("generation", gen))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.students = []models.Student{}
		c.state = StateError
		c.lastErr = err
		c.logger.Error("list fetch failed", zap.Error(err))
		return
	}
	if students == nil {
		students = []models.Student{}
	}
	c.students = students
	c.state = StateReady
	c.lastErr = nil
}
