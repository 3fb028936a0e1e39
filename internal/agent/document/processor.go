package document

import (
	"context"
	"fmt"

	"github.com/feichai0017/text-extractor/internal/agent/ocr"
	"github.com/feichai0017/text-extractor/internal/agent/tools"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/store"
)

// Reporter receives the user-visible status messages of a batch.
type Reporter interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

// Processor 文档处理器接口
type Processor interface {
	// Type is the upload extension the processor handles.
	Type() models.FileType

	// Label names the kind of file in user-facing messages, e.g. "PDF file".
	Label() string

	// Process extracts the upload and writes its records through rec. It
	// returns how many records were stored. On error nothing is stored.
	Process(ctx context.Context, upload models.Upload, rec store.Recorder, rep Reporter) (int, error)
}

// PageOCR rasterizes a PDF and runs OCR over every page.
type PageOCR struct {
	Rasterizer tools.Rasterizer
	Engine     ocr.Engine
	DPI        int
}

// Text returns the page texts joined with newlines.
func (p PageOCR) Text(ctx context.Context, pdfPath string) (string, error) {
	pages, err := p.Rasterizer.Rasterize(ctx, pdfPath, p.DPI)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize pdf: %w", err)
	}
	return ocr.RecognizePages(ctx, p.Engine, pages)
}
