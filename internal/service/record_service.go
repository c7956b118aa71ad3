package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/internal/repository"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

type auditJournal interface {
	AppendLog(ctx context.Context, action string) error
}

// RecordService lists and moderates catalogue entries.
type RecordService struct {
	store     recordStore
	storage   artifactStorage
	journal   auditJournal
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewRecordService constructs a RecordService.
func NewRecordService(store recordStore, storage artifactStorage, journal auditJournal, validate *validator.Validate, logger *zap.Logger) *RecordService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &RecordService{store: store, storage: storage, journal: journal, validator: validate, logger: logger, now: time.Now}
}

// List returns records in store order, optionally limited to one year.
func (s *RecordService) List(ctx context.Context, filter dto.ListFilter) ([]models.Record, error) {
	records, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to read records")
	}
	if filter.Year == nil {
		return records, nil
	}
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if r.YearFilter != nil && *r.YearFilter == *filter.Year {
			out = append(out, r)
		}
	}
	return out, nil
}

type relocation struct {
	from string
	to   string
}

// Edit applies a partial update. Changing the course or year of a file
// record moves its artifact; the move is undone if the store write fails.
func (s *RecordService) Edit(ctx context.Context, req dto.EditRequest) (*models.Record, error) {
	if !req.ID.Set {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	trimAll(&req.Type, &req.Title, &req.Course, &req.Author, &req.Description, &req.URL, &req.SchoolYear)
	if req.Type != "" && !models.Kind(req.Type).Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be one of: pdf zip video")
	}
	if req.URL != "" && !isWebURL(req.URL) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "url must be an absolute http(s) URL")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid edit payload")
	}

	var (
		before, after models.Record
		moved         *relocation
	)
	err := s.store.Mutate(ctx, func(records []models.Record) ([]models.Record, error) {
		idx := indexByID(records, req.ID.Value)
		if idx < 0 {
			return nil, repository.ErrNotFound
		}
		before = records[idx]
		updated := before.Clone()
		applyEdit(&updated, req)

		courseChanged := req.Course != "" && updated.CourseName != before.CourseName
		yearChanged := req.Year.Set && !sameYear(updated.YearFilter, before.YearFilter)
		if (courseChanged || yearChanged) && before.Kind.HasArtifact() && before.StorageLocator != "" {
			r, err := s.relocate(before, &updated)
			if err != nil {
				return nil, err
			}
			moved = r
		}

		after = updated
		out := make([]models.Record, len(records))
		copy(out, records)
		out[idx] = updated
		return out, nil
	})
	if err != nil {
		if moved != nil {
			s.rollback(moved)
		}
		return nil, s.mutationError(err, "failed to update record")
	}

	s.audit(ctx, fmt.Sprintf("%s modifié -> %s", before.Summary(), after.Summary()))
	s.logger.Info("record edited", zap.Int64("id", after.ID), zap.Bool("relocated", moved != nil))
	return &after, nil
}

func applyEdit(r *models.Record, req dto.EditRequest) {
	if req.Type != "" {
		r.Kind = models.Kind(req.Type)
	}
	if req.Title != "" {
		r.Title = sanitizeSegment(req.Title)
	}
	if req.Course != "" {
		r.CourseName = sanitizeSegment(req.Course)
	}
	if req.Author != "" {
		r.AuthorHandle = sanitizeSegment(req.Author)
	}
	if req.Description != "" {
		r.Description = req.Description
	}
	if req.SchoolYear != "" {
		r.SchoolYearLabel = req.SchoolYear
	}
	if y := req.Year.IntPtr(); y != nil {
		r.YearFilter = y
	}
	if req.URL != "" && r.Kind == models.KindVideo {
		r.StorageLocator = req.URL
	}
}

// relocate moves the artifact of before to the directory implied by updated.
// A missing source file leaves the locator untouched.
func (s *RecordService) relocate(before models.Record, updated *models.Record) (*relocation, error) {
	from, err := s.storage.FromLocator(before.StorageLocator)
	if err != nil {
		return nil, appErrors.Storage(err, "record points outside the upload directory")
	}
	if _, err := s.storage.Size(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("artifact missing, skipping relocation", zap.Int64("id", before.ID), zap.String("path", from))
			return nil, nil
		}
		return nil, appErrors.Storage(err, "failed to inspect artifact")
	}

	ext := filepath.Ext(before.FileName)
	if ext == "" {
		ext = filepath.Ext(from)
	}
	name := artifactName(updated.CourseName, updated.Title, updated.AuthorHandle, s.now(), ext)
	to, err := claimName(relocationDir(updated.CourseName, updated.YearFilter), name, func(to string) error {
		return s.storage.Move(from, to)
	})
	if err != nil {
		return nil, nameError(err, "failed to move artifact")
	}
	updated.StorageLocator = s.storage.Locator(to)
	updated.FileName = filepath.Base(to)
	return &relocation{from: from, to: to}, nil
}

func (s *RecordService) rollback(m *relocation) {
	if err := s.storage.Move(m.to, m.from); err != nil {
		s.logger.Error("failed to roll back artifact move", zap.String("from", m.to), zap.String("to", m.from), zap.Error(err))
	}
}

// Delete removes a record and then its artifact. A missing artifact is fine.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	var removed models.Record
	err := s.store.Mutate(ctx, func(records []models.Record) ([]models.Record, error) {
		idx := indexByID(records, id)
		if idx < 0 {
			return nil, repository.ErrNotFound
		}
		removed = records[idx]
		out := make([]models.Record, 0, len(records)-1)
		out = append(out, records[:idx]...)
		return append(out, records[idx+1:]...), nil
	})
	if err != nil {
		return s.mutationError(err, "failed to delete record")
	}

	if removed.Kind.HasArtifact() && removed.StorageLocator != "" {
		rel, err := s.storage.FromLocator(removed.StorageLocator)
		if err != nil {
			s.logger.Warn("artifact outside upload directory left in place", zap.Int64("id", id), zap.String("locator", removed.StorageLocator))
		} else if err := s.storage.Delete(rel); err != nil {
			s.logger.Warn("failed to delete artifact", zap.Int64("id", id), zap.String("file", rel), zap.Error(err))
		}
	}

	s.audit(ctx, removed.Summary()+" SUPPRIMÉ")
	s.logger.Info("record deleted", zap.Int64("id", id))
	return nil
}

// Vote records a like or dislike. A voter holds at most one choice per
// record; switching undoes the previous one and repeating it is a no-op.
func (s *RecordService) Vote(ctx context.Context, req dto.VoteRequest) (*models.VoteTally, error) {
	if !req.ID.Set {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	req.Vote = strings.ToLower(strings.TrimSpace(req.Vote))
	req.VoterID = strings.TrimSpace(req.VoterID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid vote payload")
	}
	if req.VoterID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "voter identity is required")
	}
	choice := models.VoteUp
	if req.Vote == dto.VoteDislike {
		choice = models.VoteDown
	}

	current, err := s.store.Find(ctx, req.ID.Value)
	if err != nil {
		return nil, s.mutationError(err, "failed to load record")
	}
	if previous, voted := current.VoterChoices[req.VoterID]; voted && previous == choice {
		return &models.VoteTally{Likes: current.Likes, Dislikes: current.Dislikes}, nil
	}

	var tally models.VoteTally
	err = s.store.Mutate(ctx, func(records []models.Record) ([]models.Record, error) {
		idx := indexByID(records, req.ID.Value)
		if idx < 0 {
			return nil, repository.ErrNotFound
		}
		rec := records[idx].Clone()
		tally = models.VoteTally{Likes: rec.Likes, Dislikes: rec.Dislikes}
		previous, voted := rec.VoterChoices[req.VoterID]
		if voted && previous == choice {
			return nil, repository.ErrNoChange
		}

		if voted {
			switch previous {
			case models.VoteUp:
				rec.Likes = decrement(rec.Likes)
			case models.VoteDown:
				rec.Dislikes = decrement(rec.Dislikes)
			}
		}
		if choice == models.VoteUp {
			rec.Likes++
		} else {
			rec.Dislikes++
		}
		if rec.VoterChoices == nil {
			rec.VoterChoices = make(map[string]models.VoteChoice)
		}
		rec.VoterChoices[req.VoterID] = choice
		tally = models.VoteTally{Likes: rec.Likes, Dislikes: rec.Dislikes}

		out := make([]models.Record, len(records))
		copy(out, records)
		out[idx] = rec
		return out, nil
	})
	if err != nil {
		return nil, s.mutationError(err, "failed to record vote")
	}
	return &tally, nil
}

func (s *RecordService) audit(ctx context.Context, action string) {
	if s.journal == nil {
		return
	}
	if err := s.journal.AppendLog(ctx, action); err != nil {
		s.logger.Warn("failed to append audit log", zap.String("action", action), zap.Error(err))
	}
}

func (s *RecordService) mutationError(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "record not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return appErrors.Storage(err, message)
}

func indexByID(records []models.Record, id int64) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func sameYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func decrement(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
