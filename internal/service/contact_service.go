package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/pkg/notify"
)

const notProvided = "Non fourni"

// ContactService forwards the public contact form to the operator.
type ContactService struct {
	notifier  notificationDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(notifier notificationDispatcher, validate *validator.Validate, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ContactService{notifier: notifier, validator: validate, logger: logger}
}

// Ask validates the form and queues the notification. Delivery happens later.
func (s *ContactService) Ask(ctx context.Context, req dto.ContactRequest) error {
	trimAll(&req.NomDiscord, &req.Discord, &req.NomDiscordQuestion, &req.Email, &req.Message)
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid contact form")
	}

	s.notifier.Dispatch(notify.Message{
		Subject: "Nouveau message de contact",
		Body: fmt.Sprintf("Message de contact :\n\nNom Discord : %s\nEmail : %s\nMessage :\n%s",
			orNotProvided(req.Handle()), orNotProvided(req.Email), req.Message),
	})
	s.logger.Info("contact message queued")
	return nil
}

func orNotProvided(v string) string {
	if v == "" {
		return notProvided
	}
	return v
}
