package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/osvita-dev/kids-registry-api/internal/models"
)

const studentTable = "students_info"

// Columns an operator may sort by. Anything outside the map falls back to
// store-default order. Ties are left in store-defined order; there is no
// secondary sort key.
var sortColumns = map[string]string{
	"seq_number":  "seq_number",
	"child_name":  "child_name",
	"gender":      "gender",
	"birth_date":  "birth_date",
	"address":     "address",
	"parent_name": "parent_name",
	"created_at":  "created_at",
}

// BuildListQuery maps a list query onto a SQL statement and its arguments.
// Each dimension contributes a clause only when its input is present and
// not the "all" sentinel; the clauses are conjunctive, except the search
// term which matches any of child_name, parent_name or address. A set year
// overrides explicit date bounds with Jan 1 .. Dec 31 of that year.
func BuildListQuery(q models.ListQuery) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if search := strings.TrimSpace(q.Search); search != "" {
		n := len(args) + 1
		conditions = append(conditions,
			fmt.Sprintf("(child_name ILIKE $%d OR parent_name ILIKE $%d OR address ILIKE $%d)", n, n, n))
		args = append(args, "%"+search+"%")
	}
	if q.Gender != "" && q.Gender != models.FilterAll {
		conditions = append(conditions, fmt.Sprintf("gender = $%d", len(args)+1))
		args = append(args, q.Gender)
	}
	if q.Address != "" && q.Address != models.FilterAll {
		conditions = append(conditions, fmt.Sprintf("address ILIKE $%d", len(args)+1))
		args = append(args, "%"+q.Address+"%")
	}

	dateFrom, dateTo := q.DateFrom, q.DateTo
	if q.Year > 0 {
		dateFrom = fmt.Sprintf("%04d-01-01", q.Year)
		dateTo = fmt.Sprintf("%04d-12-31", q.Year)
	}
	if dateFrom != "" && dateFrom != models.FilterAll {
		conditions = append(conditions, fmt.Sprintf("birth_date >= $%d", len(args)+1))
		args = append(args, dateFrom)
	}
	if dateTo != "" && dateTo != models.FilterAll {
		conditions = append(conditions, fmt.Sprintf("birth_date <= $%d", len(args)+1))
		args = append(args, dateTo)
	}

	query := fmt.Sprintf(`SELECT id, child_name, gender, birth_date, address, parent_name, seq_number, created_at, updated_at
        FROM %s WHERE %s`, studentTable, strings.Join(conditions, " AND "))

	if column, ok := sortColumns[q.SortBy]; ok {
		order := "ASC"
		if strings.EqualFold(q.SortOrder, "desc") {
			order = "DESC"
		}
		query = fmt.Sprintf("%s ORDER BY %s %s", query, column, order)
	}

	return query, args
}

// StudentRepository is the collection gateway over the registry table.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns every record matching the query's filters. Pagination is
// applied by the caller, not here: the list view slices the full set.
func (r *StudentRepository) List(ctx context.Context, q models.ListQuery) ([]models.Student, error) {
	query, args := BuildListQuery(q)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Insert stores a new record, assigning its ID.
func (r *StudentRepository) Insert(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO ` + studentTable + ` (id, child_name, gender, birth_date, address, parent_name, seq_number, created_at, updated_at)
        VALUES (:id, :child_name, :gender, :birth_date, :address, :parent_name, :seq_number, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

// Update replaces the editable fields of an existing record. Last write
// wins; there is no concurrency check.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE ` + studentTable + ` SET child_name = :child_name, gender = :gender, birth_date = :birth_date, address = :address, parent_name = :parent_name, seq_number = :seq_number, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// FindByID fetches one record.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, child_name, gender, birth_date, address, parent_name, seq_number, created_at, updated_at
        FROM ` + studentTable + ` WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Delete removes a record permanently. The registry has no soft delete.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM ` + studentTable + ` WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
