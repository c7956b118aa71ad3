package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/service"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

type exportService interface {
	Catalogue(ctx context.Context, req dto.ExportRequest) (*service.ExportFile, error)
}

// ExportHandler streams catalogue exports.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Catalogue godoc
// @Summary Export the catalogue
// @Tags Export
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Param annee query int false "Year filter"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/export [get]
func (h *ExportHandler) Catalogue(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid export query"))
		return
	}
	year, err := yearQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Year = year

	file, err := h.service.Catalogue(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
