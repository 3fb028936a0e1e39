package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/text-extractor/internal/service/extraction"
	"github.com/feichai0017/text-extractor/pkg/converters"
	"github.com/feichai0017/text-extractor/pkg/logger"
	"github.com/feichai0017/text-extractor/pkg/storage"
)

type DocumentHandler struct {
	service  extraction.Extractor
	logger   logger.Logger
	maxBatch int64
}

// ErrorResponse 定义错误响应结构
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewDocumentHandler(service extraction.Extractor, log logger.Logger, maxBatch int64) *DocumentHandler {
	return &DocumentHandler{
		service:  service,
		logger:   log.Named("api"),
		maxBatch: maxBatch,
	}
}

// ProcessBatch 批量处理文档
func (h *DocumentHandler) ProcessBatch(c *gin.Context) {
	files, err := formFiles(c, h.maxBatch)
	if err != nil {
		h.handleError(c, uploadStatus(err), "Invalid form data", err)
		return
	}

	result, err := h.service.ProcessBatch(c.Request.Context(), extraction.FromMultipart(files))
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to process files", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListRecords 返回所有已提取的记录
func (h *DocumentHandler) ListRecords(c *gin.Context) {
	records, err := h.service.Records(c.Request.Context())
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// DownloadResult 下载处理结果
func (h *DocumentHandler) DownloadResult(c *gin.Context) {
	var conv converters.DocumentConverter = converters.NewTextConverter()
	if c.Query("format") == "json" {
		conv = converters.NewJSONConverter()
	}
	h.sendArtifact(c, conv)
}

// ExportResult 导出处理结果到对象存储
func (h *DocumentHandler) ExportResult(c *gin.Context) {
	key, err := h.service.Export(c.Request.Context())
	if errors.Is(err, storage.ErrExportDisabled) {
		h.handleError(c, http.StatusNotFound, "Export is not configured", err)
		return
	}
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to export result", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Export completed",
		"key":     key,
	})
}

// GetExport 下载已导出的结果
func (h *DocumentHandler) GetExport(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, err := h.service.ExportedArtifact(c.Request.Context(), key)
	switch {
	case errors.Is(err, storage.ErrExportDisabled):
		h.handleError(c, http.StatusNotFound, "Export is not configured", err)
		return
	case errors.Is(err, extraction.ErrUnknownExport):
		h.handleError(c, http.StatusBadRequest, "Invalid export key", err)
		return
	case err != nil:
		h.handleError(c, http.StatusNotFound, "Export not found", err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", path.Base(key)))
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Error("Failed to stream export",
			logger.String("key", key),
			logger.Error(err),
		)
	}
}

func (h *DocumentHandler) sendArtifact(c *gin.Context, conv converters.DocumentConverter) {
	data, err := h.service.Artifact(c.Request.Context(), conv)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to build result", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", conv.FileName()))
	c.Data(http.StatusOK, conv.ContentType(), data)
}

// handleError 统一错误处理
func (h *DocumentHandler) handleError(c *gin.Context, status int, message string, err error) {
	h.logger.Error(message,
		logger.String("path", c.Request.URL.Path),
		logger.Error(err),
	)

	response := ErrorResponse{
		Message: message,
	}
	if err != nil {
		response.Error = err.Error()
	}

	c.JSON(status, response)
}
