package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/plano-treino/internal/models"
	appErrors "github.com/noah-isme/plano-treino/pkg/errors"
	"github.com/noah-isme/plano-treino/pkg/export"
)

// ExportFormat names a rendered report format.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportResult is a rendered report ready to be written out.
type ExportResult struct {
	Filename string
	Format   ExportFormat
	Content  []byte
}

// ExportService renders a student's progress sheet: profile lines followed
// by the weight history table.
type ExportService struct {
	uow    ledgerUnitOfWork
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(repo ledgerRepository, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		uow:    ledgerUnitOfWork{repo: repo, locker: lockerOrDefault(nil)},
		csv:    csv,
		pdf:    pdf,
		logger: logger,
	}
}

// StudentProgress renders the student's weight history in the given format.
func (s *ExportService) StudentProgress(ctx context.Context, trainerLogin, id string, format ExportFormat) (*ExportResult, error) {
	ledger, err := s.uow.read(ctx, trainerLogin)
	if err != nil {
		return nil, err
	}
	student, err := findStudent(ledger, id)
	if err != nil {
		return nil, err
	}
	table := progressTable(student)

	var content []byte
	switch format {
	case ExportCSV:
		content, err = s.csv.Render(table)
	case ExportPDF:
		content, err = s.pdf.Render(table)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to render progress report")
	}

	s.logger.Debug("progress report rendered",
		zap.String("trainer", trainerLogin),
		zap.String("student_id", id),
		zap.String("format", string(format)),
		zap.Int("bytes", len(content)))
	return &ExportResult{
		Filename: sanitizeFilename(student.Login) + "_progress." + string(format),
		Format:   format,
		Content:  content,
	}, nil
}

func progressTable(student *models.StudentRecord) export.Table {
	rows := make([][]string, 0, len(student.WeightHistory))
	for _, entry := range student.WeightHistory {
		rows = append(rows, []string{entry.Date, formatNumber(entry.Weight)})
	}
	return export.Table{
		Title: student.Name,
		Caption: []string{
			"Login: " + student.Login,
			"Height: " + formatNumber(student.Height) + " cm",
			"Current weight: " + formatNumber(student.Weight) + " kg",
			"Completed workouts: " + strconv.Itoa(student.CompletedWorkouts),
		},
		Headers: []string{"date", "weight_kg"},
		Rows:    rows,
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
