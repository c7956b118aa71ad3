package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

type journalService interface {
	AddMessage(ctx context.Context, req dto.MessageRequest) (*models.ChatEntry, error)
	ListMessages(ctx context.Context) ([]models.ChatEntry, error)
	DeleteMessage(ctx context.Context, id int64) error
	ListLogs(ctx context.Context) ([]models.LogEntry, error)
	DeleteLog(ctx context.Context, id int64) error
	DeleteAllLogs(ctx context.Context) error
}

// JournalHandler serves the chat and the audit log.
type JournalHandler struct {
	service journalService
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(svc journalService) *JournalHandler {
	return &JournalHandler{service: svc}
}

// AddMessage godoc
// @Summary Post a chat message
// @Tags Chat
// @Accept json
// @Produce json
// @Param payload body dto.MessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /add-message [post]
func (h *JournalHandler) AddMessage(c *gin.Context) {
	var req dto.MessageRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid message payload"))
		return
	}
	entry, err := h.service.AddMessage(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// ListMessages godoc
// @Summary List chat messages
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /get-messages [get]
func (h *JournalHandler) ListMessages(c *gin.Context) {
	entries, err := h.service.ListMessages(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// DeleteMessage godoc
// @Summary Delete a chat message
// @Tags Chat
// @Param id path int true "Message ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /delete-message/{id} [delete]
func (h *JournalHandler) DeleteMessage(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteMessage)
}

// ListLogs godoc
// @Summary List admin audit entries
// @Tags Logs
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /get-logs [get]
func (h *JournalHandler) ListLogs(c *gin.Context) {
	entries, err := h.service.ListLogs(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// DeleteLog godoc
// @Summary Delete one audit entry
// @Tags Logs
// @Param id path int true "Log ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /delete-log/{id} [delete]
func (h *JournalHandler) DeleteLog(c *gin.Context) {
	h.deleteByID(c, h.service.DeleteLog)
}

// DeleteAllLogs godoc
// @Summary Clear the audit log
// @Tags Logs
// @Success 204
// @Router /delete-all-logs [delete]
func (h *JournalHandler) DeleteAllLogs(c *gin.Context) {
	if err := h.service.DeleteAllLogs(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *JournalHandler) deleteByID(c *gin.Context, del func(context.Context, int64) error) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := del(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
