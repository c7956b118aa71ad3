package repository

import (
	"context"

	"github.com/noah-isme/syntheses-api/internal/models"
)

// RecordRepository persists the catalogue in fichiers.json, newest first.
type RecordRepository struct {
	*Document[models.Record]
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(path string, observer MutationObserver) *RecordRepository {
	return &RecordRepository{Document: NewDocument[models.Record]("records", path, observer)}
}

// NextID returns the id the next record would get. An unreadable store counts as empty.
func (r *RecordRepository) NextID(ctx context.Context) int64 {
	items, err := r.LoadAll(ctx)
	if err != nil {
		return 1
	}
	return NextID(items)
}

// SaveAll replaces the whole catalogue.
func (r *RecordRepository) SaveAll(ctx context.Context, records []models.Record) error {
	return r.Mutate(ctx, func([]models.Record) ([]models.Record, error) {
		return records, nil
	})
}
