package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

// VoterCookie is set by the site's consent script to identify a browser.
const VoterCookie = "userId"

type recordService interface {
	List(ctx context.Context, filter dto.ListFilter) ([]models.Record, error)
	Edit(ctx context.Context, req dto.EditRequest) (*models.Record, error)
	Delete(ctx context.Context, id int64) error
	Vote(ctx context.Context, req dto.VoteRequest) (*models.VoteTally, error)
}

// RecordHandler exposes the catalogue and its moderation.
type RecordHandler struct {
	service recordService
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(svc recordService) *RecordHandler {
	return &RecordHandler{service: svc}
}

// List godoc
// @Summary List summaries
// @Description Returns the catalogue newest first, optionally filtered by year
// @Tags Records
// @Produce json
// @Param annee query int false "Year filter"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /get-files [get]
func (h *RecordHandler) List(c *gin.Context) {
	year, err := yearQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.service.List(c.Request.Context(), dto.ListFilter{Year: year})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"total": len(records)})
}

// Edit godoc
// @Summary Edit a summary
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.EditRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /edit-file [post]
func (h *RecordHandler) Edit(c *gin.Context) {
	var req dto.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid edit payload"))
		return
	}
	rec, err := h.service.Edit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec)
}

// Delete godoc
// @Summary Delete a summary
// @Tags Records
// @Produce json
// @Param id path int true "Record ID"
// @Success 204
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /delete-file/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Vote godoc
// @Summary Like or dislike a summary
// @Tags Records
// @Accept json
// @Produce json
// @Param payload body dto.VoteRequest true "Vote"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vote [post]
func (h *RecordHandler) Vote(c *gin.Context) {
	var req dto.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid vote payload"))
		return
	}
	req.VoterID = voterIdentity(c, req.VoterID)

	tally, err := h.service.Vote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tally)
}

// voterIdentity prefers the body, then the consent cookie, then the client IP.
func voterIdentity(c *gin.Context, fromBody string) string {
	if fromBody != "" {
		return fromBody
	}
	if v, err := c.Cookie(VoterCookie); err == nil && v != "" {
		return v
	}
	return c.ClientIP()
}
