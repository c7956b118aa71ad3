package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

type listerStub struct {
	records []models.Record
	filter  dto.ListFilter
}

func (l *listerStub) List(_ context.Context, filter dto.ListFilter) ([]models.Record, error) {
	l.filter = filter
	return l.records, nil
}

func newExportServiceForTest() (*ExportService, *listerStub) {
	lister := &listerStub{records: []models.Record{
		{ID: 2, Kind: models.KindPDF, CourseName: "Chimie", Title: "Acides", AuthorHandle: "élodie", SchoolYearLabel: "2023-2024", YearFilter: intPtr(2), SizeBytes: 3 << 20, AddedAt: "02/02/2024", Likes: 4},
		{ID: 1, Kind: models.KindVideo, CourseName: "Math", Title: "Intro", AuthorHandle: "bob", AddedAt: "01/02/2024", Dislikes: 1},
	}}
	svc := NewExportService(lister, zap.NewNop(), nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, lister
}

func TestExportCatalogueCSV(t *testing.T) {
	svc, lister := newExportServiceForTest()

	file, err := svc.Catalogue(context.Background(), dto.ExportRequest{Year: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, "syntheses_20240309_143000.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	require.NotNil(t, lister.filter.Year)
	assert.Equal(t, 2, *lister.filter.Year)

	lines := strings.Split(strings.TrimSpace(string(bytes.TrimPrefix(file.Data, []byte{0xEF, 0xBB, 0xBF}))), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID;Type;Cours;Titre;Auteur;Année;Année scolaire;Taille;Date;Likes;Dislikes", lines[0])
	assert.Equal(t, "2;pdf;Chimie;Acides;élodie;2;2023-2024;3.00 MB;02/02/2024;4;0", lines[1])
	assert.Equal(t, "1;video;Math;Intro;bob;;;;01/02/2024;0;1", lines[2])
}

func TestExportCataloguePDF(t *testing.T) {
	svc, _ := newExportServiceForTest()

	file, err := svc.Catalogue(context.Background(), dto.ExportRequest{Format: "PDF"})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestExportCatalogueRejectsFormat(t *testing.T) {
	svc, _ := newExportServiceForTest()

	_, err := svc.Catalogue(context.Background(), dto.ExportRequest{Format: "xlsx"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
