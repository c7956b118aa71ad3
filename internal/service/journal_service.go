package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/internal/repository"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

type journalDocument[T models.Identified[T]] interface {
	LoadAll(ctx context.Context) ([]T, error)
	Append(ctx context.Context, build func(id int64) T) (T, error)
	Delete(ctx context.Context, id int64) (T, error)
	Clear(ctx context.Context) error
}

// JournalService handles the public chat and the admin audit log.
type JournalService struct {
	chat      journalDocument[models.ChatEntry]
	logs      journalDocument[models.LogEntry]
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewJournalService constructs a JournalService.
func NewJournalService(chat journalDocument[models.ChatEntry], logs journalDocument[models.LogEntry], validate *validator.Validate, logger *zap.Logger) *JournalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &JournalService{chat: chat, logs: logs, validator: validate, logger: logger, now: time.Now}
}

// AddMessage appends a chat message.
func (s *JournalService) AddMessage(ctx context.Context, req dto.MessageRequest) (*models.ChatEntry, error) {
	trimAll(&req.Author, &req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid message")
	}
	entry, err := s.chat.Append(ctx, func(id int64) models.ChatEntry {
		return models.ChatEntry{ID: id, Date: models.DisplayDateTime(s.now()), Author: req.Author, Message: req.Message}
	})
	if err != nil {
		return nil, journalError(err, "failed to save message")
	}
	return &entry, nil
}

// ListMessages returns the chat in posting order.
func (s *JournalService) ListMessages(ctx context.Context) ([]models.ChatEntry, error) {
	entries, err := s.chat.LoadAll(ctx)
	if err != nil {
		return nil, journalError(err, "failed to read messages")
	}
	return entries, nil
}

// DeleteMessage removes one chat message.
func (s *JournalService) DeleteMessage(ctx context.Context, id int64) error {
	if _, err := s.chat.Delete(ctx, id); err != nil {
		return journalError(err, "failed to delete message")
	}
	s.logger.Info("chat message deleted", zap.Int64("id", id))
	return nil
}

// ListLogs returns the audit journal in insertion order.
func (s *JournalService) ListLogs(ctx context.Context) ([]models.LogEntry, error) {
	entries, err := s.logs.LoadAll(ctx)
	if err != nil {
		return nil, journalError(err, "failed to read logs")
	}
	return entries, nil
}

// DeleteLog removes one audit entry.
func (s *JournalService) DeleteLog(ctx context.Context, id int64) error {
	if _, err := s.logs.Delete(ctx, id); err != nil {
		return journalError(err, "failed to delete log")
	}
	return nil
}

// DeleteAllLogs empties the audit journal.
func (s *JournalService) DeleteAllLogs(ctx context.Context) error {
	if err := s.logs.Clear(ctx); err != nil {
		return journalError(err, "failed to clear logs")
	}
	s.logger.Info("audit journal cleared")
	return nil
}

// AppendLog records an admin action.
func (s *JournalService) AppendLog(ctx context.Context, action string) error {
	_, err := s.logs.Append(ctx, func(id int64) models.LogEntry {
		return models.LogEntry{ID: id, Date: models.DisplayDateTime(s.now()), Action: action}
	})
	if err != nil {
		return journalError(err, "failed to append log")
	}
	return nil
}

func journalError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, "entry not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return appErrors.Storage(err, message)
}
