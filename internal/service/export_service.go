package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/osvita-dev/kids-registry-api/internal/models"
	appErrors "github.com/osvita-dev/kids-registry-api/pkg/errors"
	"github.com/osvita-dev/kids-registry-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	FormatXLSX ExportFormat = "xlsx"
	FormatCSV  ExportFormat = "csv"
	FormatPDF  ExportFormat = "pdf"
)

// Fixed display column set and widths for exported registries.
var (
	exportHeaders = []string{"ID", "Child Name", "Gender", "Birth Date", "Address", "Parent Name"}
	exportWidths  = []float64{8, 25, 8, 15, 30, 25}
)

// ExportResult carries the rendered file and its metadata.
type ExportResult struct {
	Count       int
	FileName    string
	ContentType string
	Content     []byte
}

type exportRepository interface {
	List(ctx context.Context, q models.ListQuery) ([]models.Student, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService fetches the full set of records matching the current
// filters, with pagination never applied, and renders a spreadsheet-style
// file named from the current date and time.
type ExportService struct {
	repo       exportRepository
	xlsx       xlsxRenderer
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	filePrefix string
	sheetName  string
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(repo exportRepository, filePrefix, sheetName string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filePrefix == "" {
		filePrefix = "KidsRegistry"
	}
	if sheetName == "" {
		sheetName = "Students"
	}
	return &ExportService{
		repo:       repo,
		xlsx:       export.NewXLSXExporter(sheetName, exportWidths),
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(exportWidths),
		logger:     logger,
		filePrefix: filePrefix,
		sheetName:  sheetName,
		now:        time.Now,
	}
}

// Export renders every record matching the query's filters. Zero matching
// rows is an explicit failure, not an empty file; a gateway failure is
// returned with its cause attached and nothing is written.
func (s *ExportService) Export(ctx context.Context, q models.ListQuery, format ExportFormat) (*ExportResult, error) {
	students, err := s.repo.List(ctx, q.WithoutPaging())
	if err != nil {
		s.logger.Error("export fetch failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch records for export")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrExportEmpty, "")
	}

	dataset := buildExportDataset(students)

	var payload []byte
	var contentType string
	switch format {
	case FormatXLSX, "":
		payload, err = s.xlsx.Render(dataset)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		format = FormatXLSX
	case FormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case FormatPDF:
		payload, err = s.pdf.Render(dataset, s.sheetName)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	result := &ExportResult{
		Count:       len(students),
		FileName:    s.buildFileName(format),
		ContentType: contentType,
		Content:     payload,
	}
	s.logger.Info("export generated",
		zap.String("file", result.FileName),
		zap.Int("count", result.Count),
	)
	return result, nil
}

// buildFileName produces <Prefix>_<YYYY-MM-DD>__<HH-MM-SS>.<ext>.
func (s *ExportService) buildFileName(format ExportFormat) string {
	now := s.now()
	return fmt.Sprintf("%s_%s__%s.%s",
		s.filePrefix,
		now.Format("2006-01-02"),
		now.Format("15-04-05"),
		format,
	)
}

func buildExportDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, map[string]string{
			"ID":          s.ID,
			"Child Name":  s.ChildName,
			"Gender":      s.Gender,
			"Birth Date":  s.BirthDate.Format(models.DateOnly),
			"Address":     s.Address,
			"Parent Name": s.ParentName,
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}
