package models

// FilterPreferences is the subset of list-view state persisted between
// sessions. Date bounds and the current page are deliberately excluded;
// only the durable choices survive a restart.
type FilterPreferences struct {
	Search    string `json:"search"`
	Gender    string `json:"gender"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
	Year      int    `json:"year,omitempty"`
}

// Apply copies the persisted choices onto a fresh list query.
func (p FilterPreferences) Apply(q ListQuery) ListQuery {
	q.Search = p.Search
	q.Gender = p.Gender
	q.SortBy = p.SortBy
	q.SortOrder = p.SortOrder
	q.Year = p.Year
	return q
}
