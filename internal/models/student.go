package models

import (
	"strings"
	"time"
)

// Gender values stored verbatim as the registry records them.
const (
	GenderMale   = "Ч"
	GenderFemale = "Ж"
)

// FilterAll is the sentinel meaning "no filter" on a dimension, distinct
// from an absent value.
const FilterAll = "all"

// DateOnly is the wire format for birth dates and date bounds.
const DateOnly = "2006-01-02"

// Student represents one child/guardian entry in the registry.
type Student struct {
	ID         string    `db:"id" json:"id"`
	ChildName  string    `db:"child_name" json:"child_name"`
	Gender     string    `db:"gender" json:"gender"`
	BirthDate  time.Time `db:"birth_date" json:"birth_date"`
	Address    string    `db:"address" json:"address"`
	ParentName string    `db:"parent_name" json:"parent_name"`
	SeqNumber  string    `db:"seq_number" json:"seq_number,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DedupeKey returns the case-insensitively trimmed identity tuple used by
// the duplicate guard. Two records with equal keys are considered the same
// child.
func (s Student) DedupeKey() string {
	parts := []string{
		s.ChildName,
		s.Gender,
		s.BirthDate.Format(DateOnly),
		s.Address,
		s.ParentName,
	}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// ListQuery captures the filter/sort/page state of the list view. Search,
// gender, address and the date bounds combine with AND semantics; the
// search term itself matches any of child_name, parent_name or address.
type ListQuery struct {
	Search    string
	Gender    string
	Address   string
	DateFrom  string
	DateTo    string
	Year      int
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// WithoutPaging returns a copy with the page state cleared, as used by the
// export path which always fetches the full filtered set.
func (q ListQuery) WithoutPaging() ListQuery {
	q.Page = 0
	q.PerPage = 0
	return q
}

// Pagination reports how a full filtered result set was sliced.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}
