package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/pkg/archive"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
	"github.com/noah-isme/syntheses-api/pkg/notify"
)

type recordStore interface {
	LoadAll(ctx context.Context) ([]models.Record, error)
	Find(ctx context.Context, id int64) (models.Record, error)
	Prepend(ctx context.Context, build func(id int64) models.Record) (models.Record, error)
	Mutate(ctx context.Context, fn func([]models.Record) ([]models.Record, error)) error
}

type artifactStorage interface {
	CreateStream(filename string, r io.Reader) (int64, error)
	Reserve(filename string) error
	Size(filename string) (int64, error)
	Delete(filename string) error
	Move(from, to string) error
	Path(filename string) string
	Locator(filename string) string
	FromLocator(locator string) (string, error)
}

type tempStorage interface {
	SaveStream(filename string, r io.Reader) (int64, error)
	Delete(filename string) error
	Path(filename string) string
}

type archiveAssembler interface {
	Assemble(ctx context.Context, files []archive.Source, destination string) (int64, error)
}

type notificationDispatcher interface {
	Dispatch(msg notify.Message)
}

// FileUpload is one submitted file part.
type FileUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// UploadConfig bounds submissions.
type UploadConfig struct {
	MaxFileSize int64
	MaxFiles    int
}

// UploadService accepts the three submission shapes and records them.
type UploadService struct {
	store     recordStore
	storage   artifactStorage
	temp      tempStorage
	assembler archiveAssembler
	notifier  notificationDispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       UploadConfig
	now       func() time.Time
}

// NewUploadService constructs the service with defaults.
func NewUploadService(store recordStore, storage artifactStorage, temp tempStorage, assembler archiveAssembler, notifier notificationDispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg UploadConfig) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 20 * 1024 * 1024
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 20
	}
	return &UploadService{
		store:     store,
		storage:   storage,
		temp:      temp,
		assembler: assembler,
		notifier:  notifier,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// UploadSingle stores one PDF or ZIP file.
func (s *UploadService) UploadSingle(ctx context.Context, meta dto.UploadMetadata, file FileUpload) (res *dto.UploadResponse, err error) {
	defer func() { s.metrics.ObserveUpload("single", err) }()

	if err := s.checkMetadata(&meta); err != nil {
		return nil, err
	}
	if file.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no file was uploaded")
	}
	if file.Size > s.cfg.MaxFileSize {
		return nil, s.tooLarge(file.Filename)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if strings.EqualFold(meta.UploadType, string(models.KindZIP)) {
		ext = ".zip"
	}
	kind, ok := kindForExtension(ext)
	if !ok {
		if ext == "" {
			ext = "(none)"
		}
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFile, fmt.Sprintf("unsupported file type: %s", ext))
	}

	now := s.now()
	content := io.LimitReader(file.Content, s.cfg.MaxFileSize+1)
	var written int64
	rel, err := claimName(sanitizeSegment(meta.Course), artifactName(meta.Course, meta.Title, meta.Author, now, ext), func(rel string) error {
		n, err := s.storage.CreateStream(rel, content)
		written = n
		return err
	})
	if err != nil {
		return nil, nameError(err, "failed to store uploaded file")
	}
	if written > s.cfg.MaxFileSize {
		s.discard(rel)
		return nil, s.tooLarge(file.Filename)
	}

	rec, err := s.store.Prepend(ctx, func(id int64) models.Record {
		return s.newRecord(id, meta, kind, rel, written, now)
	})
	if err != nil {
		s.discard(rel)
		return nil, appErrors.Storage(err, "failed to save record")
	}

	s.logger.Info("summary uploaded", zap.Int64("id", rec.ID), zap.String("kind", string(kind)), zap.String("file", rec.FileName), zap.Int64("size", written))
	s.notifier.Dispatch(notify.Message{
		Subject: fmt.Sprintf("Nouvelle synthèse ajoutée: %s", rec.Title),
		Body: fmt.Sprintf("Une nouvelle synthèse a été ajoutée:\n\nCours: %s\nTitre: %s\nAuteur: %s\nDescription: %s\nTaille: %.2f MB",
			rec.CourseName, rec.Title, rec.AuthorHandle, describe(rec.Description), float64(written)/(1<<20)),
	})
	return &dto.UploadResponse{
		Message: fmt.Sprintf("Synthèse ajoutée par %s : %s", rec.AuthorHandle, rec.Title),
		Record:  rec,
	}, nil
}

// UploadMulti assembles several parts into one ZIP archive.
func (s *UploadService) UploadMulti(ctx context.Context, meta dto.UploadMetadata, files []FileUpload) (res *dto.UploadResponse, err error) {
	defer func() { s.metrics.ObserveUpload("multi", err) }()

	if err := s.checkMetadata(&meta); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files were uploaded")
	}
	if len(files) > s.cfg.MaxFiles {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("too many files: at most %d are allowed", s.cfg.MaxFiles))
	}

	parts := make([]string, 0, len(files))
	defer func() {
		for _, p := range parts {
			if err := s.temp.Delete(p); err != nil {
				s.logger.Warn("failed to remove temp part", zap.String("part", p), zap.Error(err))
			}
		}
	}()

	sources := make([]archive.Source, 0, len(files))
	for _, f := range files {
		if f.Content == nil {
			continue
		}
		if f.Size > s.cfg.MaxFileSize {
			return nil, s.tooLarge(f.Filename)
		}
		part := uuid.NewString()
		parts = append(parts, part)
		written, err := s.temp.SaveStream(part, io.LimitReader(f.Content, s.cfg.MaxFileSize+1))
		if err != nil {
			return nil, appErrors.Storage(err, "failed to buffer uploaded file")
		}
		if written > s.cfg.MaxFileSize {
			return nil, s.tooLarge(f.Filename)
		}
		sources = append(sources, archive.Source{SourcePath: s.temp.Path(part), DisplayName: f.Filename})
	}
	if len(sources) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files were uploaded")
	}

	now := s.now()
	rel, err := claimName(sanitizeSegment(meta.Course), artifactName(meta.Course, meta.Title, meta.Author, now, ".zip"), s.storage.Reserve)
	if err != nil {
		return nil, nameError(err, "failed to reserve the archive name")
	}
	size, err := s.assembler.Assemble(ctx, sources, s.storage.Path(rel))
	if err != nil {
		s.discard(rel)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, appErrors.Storage(err, "failed to assemble the uploaded files")
	}

	rec, err := s.store.Prepend(ctx, func(id int64) models.Record {
		return s.newRecord(id, meta, models.KindZIP, rel, size, now)
	})
	if err != nil {
		s.discard(rel)
		return nil, appErrors.Storage(err, "failed to save record")
	}

	s.logger.Info("bundle uploaded", zap.Int64("id", rec.ID), zap.Int("parts", len(sources)), zap.Int64("size", size))
	s.notifier.Dispatch(notify.Message{
		Subject: fmt.Sprintf("Nouveau fichier assemblé ajouté: %s", rec.Title),
		Body: fmt.Sprintf("Un nouveau fichier assemblé a été ajouté:\n\nCours: %s\nTitre: %s\nAuteur: %s\nNombre de fichiers: %d\nDescription: %s",
			rec.CourseName, rec.Title, rec.AuthorHandle, len(sources), describe(rec.Description)),
	})
	return &dto.UploadResponse{
		Message: fmt.Sprintf("Fichier assemblé créé par %s : %s (%d fichiers)", rec.AuthorHandle, rec.Title, len(sources)),
		Record:  rec,
	}, nil
}

// UploadVideo registers an external video link.
func (s *UploadService) UploadVideo(ctx context.Context, req dto.VideoSubmission) (res *dto.UploadResponse, err error) {
	defer func() { s.metrics.ObserveUpload("video", err) }()

	req.VideoURL = strings.TrimSpace(req.VideoURL)
	if err := s.checkMetadata(&req.UploadMetadata); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid video payload")
	}
	if !isWebURL(req.VideoURL) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "videoUrl must be an absolute http(s) URL")
	}

	now := s.now()
	rec, err := s.store.Prepend(ctx, func(id int64) models.Record {
		rec := s.newRecord(id, req.UploadMetadata, models.KindVideo, "", 0, now)
		rec.StorageLocator = req.VideoURL
		rec.FileName = "video-" + uuid.NewString()
		return rec
	})
	if err != nil {
		return nil, appErrors.Storage(err, "failed to save record")
	}

	s.logger.Info("video registered", zap.Int64("id", rec.ID))
	s.notifier.Dispatch(notify.Message{
		Subject: fmt.Sprintf("Nouvelle vidéo ajoutée: %s", rec.Title),
		Body: fmt.Sprintf("Une nouvelle vidéo a été ajoutée:\n\nCours: %s\nTitre: %s\nAuteur: %s\nLien: %s\nDescription: %s",
			rec.CourseName, rec.Title, rec.AuthorHandle, rec.StorageLocator, describe(rec.Description)),
	})
	return &dto.UploadResponse{
		Message: fmt.Sprintf("Vidéo ajoutée par %s : %s", rec.AuthorHandle, rec.Title),
		Record:  rec,
	}, nil
}

func (s *UploadService) checkMetadata(meta *dto.UploadMetadata) error {
	trimAll(&meta.Course, &meta.Title, &meta.Author, &meta.Description, &meta.SchoolYear, &meta.UploadType)
	if err := s.validator.Struct(meta); err != nil {
		return validationError(err, "invalid upload metadata")
	}
	return nil
}

func (s *UploadService) newRecord(id int64, meta dto.UploadMetadata, kind models.Kind, rel string, size int64, now time.Time) models.Record {
	rec := models.Record{
		ID:              id,
		Kind:            kind,
		CourseName:      sanitizeSegment(meta.Course),
		Title:           sanitizeSegment(meta.Title),
		AuthorHandle:    sanitizeSegment(meta.Author),
		Description:     meta.Description,
		SizeBytes:       size,
		SchoolYearLabel: meta.SchoolYear,
		YearFilter:      meta.Year.IntPtr(),
		AddedAt:         models.DisplayDate(now),
	}
	if rel != "" {
		rec.StorageLocator = s.storage.Locator(rel)
		rec.FileName = filepath.Base(rel)
	}
	return rec
}

func nameError(err error, message string) error {
	if errors.Is(err, errNoFreeName) {
		return appErrors.Clone(appErrors.ErrStorage, "could not find a free file name")
	}
	return appErrors.Storage(err, message)
}

func (s *UploadService) discard(rel string) {
	if err := s.storage.Delete(rel); err != nil {
		s.logger.Warn("failed to remove orphan artifact", zap.String("file", rel), zap.Error(err))
	}
}

func (s *UploadService) tooLarge(name string) error {
	return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s exceeds the %d MB limit", name, s.cfg.MaxFileSize>>20))
}

func kindForExtension(ext string) (models.Kind, bool) {
	switch ext {
	case ".pdf":
		return models.KindPDF, true
	case ".zip":
		return models.KindZIP, true
	}
	return "", false
}

func isWebURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func describe(description string) string {
	if description == "" {
		return "Aucune description"
	}
	return description
}
