package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	"github.com/noah-isme/syntheses-api/internal/service"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
	"github.com/noah-isme/syntheses-api/pkg/response"
)

type uploadService interface {
	UploadSingle(ctx context.Context, meta dto.UploadMetadata, file service.FileUpload) (*dto.UploadResponse, error)
	UploadMulti(ctx context.Context, meta dto.UploadMetadata, files []service.FileUpload) (*dto.UploadResponse, error)
	UploadVideo(ctx context.Context, req dto.VideoSubmission) (*dto.UploadResponse, error)
}

// UploadHandler accepts summary submissions.
type UploadHandler struct {
	service         uploadService
	maxRequestBytes int64
}

// NewUploadHandler constructs the handler. maxRequestBytes caps a whole
// request body; zero disables the cap.
func NewUploadHandler(svc uploadService, maxRequestBytes int64) *UploadHandler {
	return &UploadHandler{service: svc, maxRequestBytes: maxRequestBytes}
}

// Upload godoc
// @Summary Upload a summary
// @Description Stores a PDF or ZIP sent as multipart "fichier", or registers a video link sent as JSON or with uploadType=video
// @Tags Uploads
// @Accept multipart/form-data,json
// @Produce json
// @Param fichier formData file false "PDF or ZIP file"
// @Param cours formData string true "Course"
// @Param titre formData string true "Title"
// @Param nomDiscord formData string true "Author handle"
// @Param anneeScolaire formData string true "School year label"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	h.limitBody(c)

	switch c.ContentType() {
	case binding.MIMEJSON:
		var req dto.VideoSubmission
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, invalidPayload(err, "invalid video payload"))
			return
		}
		h.video(c, req)
	case binding.MIMEMultipartPOSTForm:
		header, err := c.FormFile("fichier")
		if err == nil {
			h.single(c, header)
			return
		}
		if tooLarge(err) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "request body too large"))
			return
		}
		if isVideoForm(c) {
			h.videoForm(c)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "no file was uploaded"))
	case binding.MIMEPOSTForm:
		if isVideoForm(c) {
			h.videoForm(c)
			return
		}
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unrecognized upload type"))
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unrecognized upload type"))
	}
}

// UploadMulti godoc
// @Summary Upload several files as one archive
// @Description Assembles the "fichiers[]" parts into a single ZIP entry
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param fichiers[] formData file true "Files to bundle"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /upload-multi [post]
func (h *UploadHandler) UploadMulti(c *gin.Context) {
	h.limitBody(c)

	form, err := c.MultipartForm()
	if err != nil {
		if tooLarge(err) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, "request body too large"))
			return
		}
		response.Error(c, invalidPayload(err, "multipart form expected"))
		return
	}
	var meta dto.UploadMetadata
	if err := c.ShouldBindWith(&meta, binding.FormMultipart); err != nil {
		response.Error(c, invalidPayload(err, "invalid upload metadata"))
		return
	}

	headers := form.File["fichiers[]"]
	if len(headers) == 0 {
		headers = form.File["fichiers"]
	}
	files := make([]service.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			response.Error(c, invalidPayload(err, "could not read uploaded file"))
			return
		}
		defer f.Close()
		files = append(files, service.FileUpload{Filename: fh.Filename, Size: fh.Size, Content: f})
	}

	res, err := h.service.UploadMulti(c.Request.Context(), meta, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

func (h *UploadHandler) single(c *gin.Context, header *multipart.FileHeader) {
	var meta dto.UploadMetadata
	if err := c.ShouldBindWith(&meta, binding.FormMultipart); err != nil {
		response.Error(c, invalidPayload(err, "invalid upload metadata"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, invalidPayload(err, "could not read uploaded file"))
		return
	}
	defer f.Close()

	res, err := h.service.UploadSingle(c.Request.Context(), meta, service.FileUpload{Filename: header.Filename, Size: header.Size, Content: f})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

func (h *UploadHandler) videoForm(c *gin.Context) {
	var req dto.VideoSubmission
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid video payload"))
		return
	}
	h.video(c, req)
}

func (h *UploadHandler) video(c *gin.Context, req dto.VideoSubmission) {
	res, err := h.service.UploadVideo(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

func (h *UploadHandler) limitBody(c *gin.Context) {
	if h.maxRequestBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxRequestBytes)
	}
}

func isVideoForm(c *gin.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.PostForm("uploadType")), string(models.KindVideo))
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
