package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/service/extraction"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// PageHandler serves the browser upload flow.
type PageHandler struct {
	service  extraction.Extractor
	logger   logger.Logger
	maxBatch int64
}

type pageData struct {
	Messages    []models.StatusMessage
	Accept      string
	ShowResult  bool
	Records     int64
	DownloadURL string
}

func NewPageHandler(service extraction.Extractor, log logger.Logger, maxBatch int64) *PageHandler {
	return &PageHandler{
		service:  service,
		logger:   log.Named("page"),
		maxBatch: maxBatch,
	}
}

// Index 上传页面
func (h *PageHandler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, pageData{})
}

// Process runs a batch from the upload form and renders its messages.
func (h *PageHandler) Process(c *gin.Context) {
	files, err := formFiles(c, h.maxBatch)
	if err != nil {
		h.render(c, uploadStatus(err), pageData{Messages: []models.StatusMessage{
			{Level: models.LevelError, Text: "Invalid upload: " + err.Error()},
		}})
		return
	}

	result, err := h.service.ProcessBatch(c.Request.Context(), extraction.FromMultipart(files))
	if err != nil {
		h.logger.Error("Batch aborted", logger.Error(err))
		data := pageData{Messages: []models.StatusMessage{{Level: models.LevelError, Text: err.Error()}}}
		if result != nil {
			data.Messages = append(result.Messages, data.Messages...)
		}
		h.render(c, http.StatusInternalServerError, data)
		return
	}

	data := pageData{Messages: result.Messages}
	if len(files) > 0 {
		count, err := h.service.Count(c.Request.Context())
		if err != nil {
			h.logger.Error("Failed to count records", logger.Error(err))
		}
		data.ShowResult = true
		data.Records = count
		data.DownloadURL = "/download"
	}
	h.render(c, http.StatusOK, data)
}

func (h *PageHandler) render(c *gin.Context, status int, data pageData) {
	data.Accept = acceptList(h.service.SupportedTypes())
	c.HTML(status, "index.tmpl", data)
}

// acceptList renders file types as an input accept attribute, e.g. ".pdf,.xlsx".
func acceptList(types []models.FileType) string {
	exts := make([]string, len(types))
	for i, t := range types {
		exts[i] = "." + string(t)
	}
	return strings.Join(exts, ",")
}

// formFiles returns the files of the "files" field. A request without a
// multipart body yields no files. A positive limit caps the request body.
func formFiles(c *gin.Context, limit int64) ([]*multipart.FileHeader, error) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return form.File["files"], nil
}

// uploadStatus maps a form parsing error to a response status.
func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
