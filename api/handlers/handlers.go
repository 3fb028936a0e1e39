package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/text-extractor/internal/service/extraction"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Handlers struct {
	Document *DocumentHandler
	Page     *PageHandler
}

// NewHandlers wires the handlers. maxBatch caps an upload request body in
// bytes; zero leaves it unbounded.
func NewHandlers(
	extractionService extraction.Extractor,
	logger logger.Logger,
	maxBatch int64,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(extractionService, logger, maxBatch),
		Page:     NewPageHandler(extractionService, logger, maxBatch),
	}
}

// Templates parses the embedded HTML pages.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))
}

// Health reports that the process is serving.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
