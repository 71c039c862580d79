package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osvita-dev/kids-registry-api/internal/models"
)

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBuildListQueryNoFilters(t *testing.T) {
	query, args := BuildListQuery(models.ListQuery{})
	assert.Contains(t, query, "WHERE 1=1")
	assert.NotContains(t, query, "ILIKE")
	assert.NotContains(t, query, "gender =")
	assert.NotContains(t, query, "birth_date >=")
	assert.NotContains(t, query, "ORDER BY")
	assert.Empty(t, args)
}

func TestBuildListQuerySearchMatchesThreeFields(t *testing.T) {
	query, args := BuildListQuery(models.ListQuery{Search: "Іван"})
	assert.Contains(t, query, "(child_name ILIKE $1 OR parent_name ILIKE $1 OR address ILIKE $1)")
	require.Len(t, args, 1)
	assert.Equal(t, "%Іван%", args[0])
}

func TestBuildListQuerySentinelAddsNoClause(t *testing.T) {
	query, args := BuildListQuery(models.ListQuery{
		Gender:   models.FilterAll,
		Address:  models.FilterAll,
		DateFrom: models.FilterAll,
		DateTo:   models.FilterAll,
	})
	assert.Contains(t, query, "WHERE 1=1")
	assert.NotContains(t, query, "gender =")
	assert.NotContains(t, query, "birth_date")
	assert.Empty(t, args)
}

func TestBuildListQueryAllDimensions(t *testing.T) {
	query, args := BuildListQuery(models.ListQuery{
		Search:    "он",
		Gender:    models.GenderFemale,
		Address:   "Київ",
		DateFrom:  "2015-01-01",
		DateTo:    "2018-12-31",
		SortBy:    "child_name",
		SortOrder: "desc",
	})
	assert.Contains(t, query, "(child_name ILIKE $1 OR parent_name ILIKE $1 OR address ILIKE $1)")
	assert.Contains(t, query, "gender = $2")
	assert.Contains(t, query, "address ILIKE $3")
	assert.Contains(t, query, "birth_date >= $4")
	assert.Contains(t, query, "birth_date <= $5")
	assert.Contains(t, query, "ORDER BY child_name DESC")
	assert.Equal(t, []interface{}{"%он%", models.GenderFemale, "%Київ%", "2015-01-01", "2018-12-31"}, args)
}

func TestBuildListQueryYearOverridesBounds(t *testing.T) {
	_, args := BuildListQuery(models.ListQuery{
		Year:     2020,
		DateFrom: "2015-01-01",
		DateTo:   "2016-12-31",
	})
	assert.Equal(t, []interface{}{"2020-01-01", "2020-12-31"}, args)
}

func TestBuildListQueryRejectsUnknownSortColumn(t *testing.T) {
	query, _ := BuildListQuery(models.ListQuery{SortBy: "id; DROP TABLE students_info"})
	assert.NotContains(t, query, "ORDER BY")
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "child_name", "gender", "birth_date", "address", "parent_name", "seq_number", "created_at", "updated_at"}).
		AddRow("1", "Петренко Іван", "Ч", time.Now(), "вул. Шевченка 12", "Петренко Олена", "1", time.Now(), time.Now())
	mock.ExpectQuery("SELECT id, child_name, gender, birth_date, address, parent_name, seq_number, created_at, updated_at").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, students, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFiltered(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("gender = $2")).
		WithArgs("%анна%", "Ж").
		WillReturnRows(sqlmock.NewRows([]string{"id", "child_name", "gender", "birth_date", "address", "parent_name", "seq_number", "created_at", "updated_at"}))

	students, err := repo.List(context.Background(), models.ListQuery{Search: "анна", Gender: "Ж"})
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students_info").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{ChildName: "Петренко Іван", Gender: "Ч", BirthDate: time.Now(), Address: "вул. Шевченка 12"}
	err := repo.Insert(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("DELETE FROM students_info").
		WithArgs("id1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "id1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
