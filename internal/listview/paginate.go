package listview

import "github.com/osvita-dev/kids-registry-api/internal/models"

// DefaultPerPage is used when a query does not carry a page size.
const DefaultPerPage = 10

// Slice cuts one page out of the full filtered result set. Pagination is
// entirely client-side: the store returns every matching row and pages are
// windows over that sequence. Concatenating pages 1..TotalPages reproduces
// the sequence with no gaps or overlaps. A page beyond the end yields an
// empty slice, not an error.
func Slice(students []models.Student, page, perPage int) ([]models.Student, models.Pagination) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(students)
	totalPages := total / perPage
	if total%perPage != 0 {
		totalPages++
	}

	// Clamp before multiplying: an arbitrary page value from a query
	// parameter must not overflow into a negative slice bound.
	start := total
	if page <= totalPages {
		start = (page - 1) * perPage
	}
	end := total
	if total-start > perPage {
		end = start + perPage
	}

	pagination := models.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalCount: total,
		TotalPages: totalPages,
	}
	return students[start:end], pagination
}
