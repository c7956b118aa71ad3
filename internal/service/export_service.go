package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
	"github.com/noah-isme/syntheses-api/pkg/export"
)

type recordLister interface {
	List(ctx context.Context, filter dto.ListFilter) ([]models.Record, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

var catalogueHeaders = []string{"ID", "Type", "Cours", "Titre", "Auteur", "Année", "Année scolaire", "Taille", "Date", "Likes", "Dislikes"}

// ExportFile is a rendered catalogue ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the record catalogue as CSV or PDF.
type ExportService struct {
	records recordLister
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(records recordLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter(';')
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{records: records, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Catalogue renders the records matching req in the requested format.
func (s *ExportService) Catalogue(ctx context.Context, req dto.ExportRequest) (*ExportFile, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = dto.ExportCSV
	}
	if format != dto.ExportCSV && format != dto.ExportPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be one of: csv pdf")
	}

	records, err := s.records.List(ctx, dto.ListFilter{Year: req.Year})
	if err != nil {
		return nil, err
	}
	dataset := buildCatalogue(records)

	title := "Synthèses"
	if req.Year != nil {
		title = fmt.Sprintf("Synthèses - Année %d", *req.Year)
	}
	base := "syntheses_" + s.now().Format("20060102_150405")

	var file ExportFile
	switch format {
	case dto.ExportPDF:
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		file = ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}
	default:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		file = ExportFile{Filename: base + ".csv", ContentType: "text/csv; charset=utf-8", Data: data}
	}

	s.logger.Info("catalogue exported", zap.String("format", format), zap.Int("rows", len(records)))
	return &file, nil
}

func buildCatalogue(records []models.Record) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, r := range records {
		year := ""
		if r.YearFilter != nil {
			year = strconv.Itoa(*r.YearFilter)
		}
		size := ""
		if r.Kind.HasArtifact() {
			size = fmt.Sprintf("%.2f MB", float64(r.SizeBytes)/(1<<20))
		}
		rows = append(rows, map[string]string{
			"ID":             strconv.FormatInt(r.ID, 10),
			"Type":           string(r.Kind),
			"Cours":          r.CourseName,
			"Titre":          r.Title,
			"Auteur":         r.AuthorHandle,
			"Année":          year,
			"Année scolaire": r.SchoolYearLabel,
			"Taille":         size,
			"Date":           r.AddedAt,
			"Likes":          strconv.Itoa(r.Likes),
			"Dislikes":       strconv.Itoa(r.Dislikes),
		})
	}
	return export.Dataset{Headers: catalogueHeaders, Rows: rows}
}
