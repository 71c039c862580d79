package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
)

func exportFixture(n int) *mockStudentRepo {
	repo := &mockStudentRepo{}
	names := []string{"Петренко Іван", "Коваль Марія", "Шевчук Олег"}
	for i := 0; i < n; i++ {
		repo.students = append(repo.students, models.Student{
			ID:        uuidLike(i),
			ChildName: names[i%len(names)],
			Gender:    models.GenderMale,
			BirthDate: time.Date(2015, time.Month(i+1), 10, 0, 0, 0, 0, time.UTC),
			Address:   "вул. Шевченка 12",
		})
	}
	return repo
}

func uuidLike(i int) string {
	return strings.Repeat("0", 7) + string(rune('a'+i))
}

func TestExportEmptySetFails(t *testing.T) {
	svc := NewExportService(exportFixture(0), "", "", nil)

	_, err := svc.Export(context.Background(), models.ListQuery{}, FormatXLSX)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrExportEmpty.Code, appErrors.FromError(err).Code)
}

func TestExportXLSX(t *testing.T) {
	svc := NewExportService(exportFixture(3), "", "", nil)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 5, 30, 0, time.UTC)
	}

	result, err := svc.Export(context.Background(), models.ListQuery{Page: 2, PerPage: 1}, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Count, "export ignores pagination")
	assert.Equal(t, "KidsRegistry_2026-03-14__09-05-30.xlsx", result.FileName)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.ContentType)
	assert.NotEmpty(t, result.Content)
	// xlsx files are zip archives
	assert.Equal(t, []byte{'P', 'K'}, result.Content[:2])
}

func TestExportCSVContent(t *testing.T) {
	svc := NewExportService(exportFixture(2), "Zvit", "", nil)

	result, err := svc.Export(context.Background(), models.ListQuery{}, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Regexp(t, `^Zvit_\d{4}-\d{2}-\d{2}__\d{2}-\d{2}-\d{2}\.csv$`, result.FileName)

	body, hadBOM := strings.CutPrefix(string(result.Content), "\ufeff")
	assert.True(t, hadBOM, "csv must carry a UTF-8 BOM for Excel")
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Child Name,Gender,Birth Date,Address,Parent Name", strings.TrimSpace(lines[0]))
	assert.Contains(t, lines[1], "Петренко Іван")
	assert.Contains(t, lines[1], "2015-01-10")
}

func TestExportPDF(t *testing.T) {
	svc := NewExportService(exportFixture(1), "", "", nil)

	result, err := svc.Export(context.Background(), models.ListQuery{}, FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewExportService(exportFixture(1), "", "", nil)

	_, err := svc.Export(context.Background(), models.ListQuery{}, ExportFormat("docx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportDefaultsToXLSX(t *testing.T) {
	svc := NewExportService(exportFixture(1), "", "", nil)

	result, err := svc.Export(context.Background(), models.ListQuery{}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.FileName, ".xlsx"))
}
