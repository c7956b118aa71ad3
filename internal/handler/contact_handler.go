package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

type contactService interface {
	Ask(ctx context.Context, req dto.ContactRequest) error
}

// ContactHandler relays the public contact form.
type ContactHandler struct {
	service contactService
}

// NewContactHandler constructs the handler.
func NewContactHandler(svc contactService) *ContactHandler {
	return &ContactHandler{service: svc}
}

// Ask godoc
// @Summary Send a question to the operator
// @Tags Contact
// @Accept json
// @Produce json
// @Param payload body dto.ContactRequest true "Contact form"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /ask-question [post]
func (h *ContactHandler) Ask(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid contact payload"))
		return
	}
	if err := h.service.Ask(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"message": "Message envoyé avec succès"})
}
