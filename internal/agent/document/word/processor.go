package word

import (
	"context"
	"fmt"
	"os"

	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/agent/tools"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Processor converts a Word document to PDF and OCRs the result.
type Processor struct {
	converter tools.Converter
	pages     document.PageOCR
	tempRoot  string
	logger    logger.Logger
}

// NewProcessor creates the intermediate PDF under tempRoot ("" means os.TempDir).
func NewProcessor(converter tools.Converter, pages document.PageOCR, tempRoot string, log logger.Logger) *Processor {
	return &Processor{
		converter: converter,
		pages:     pages,
		tempRoot:  tempRoot,
		logger:    log.Named("word"),
	}
}

func (p *Processor) Type() models.FileType { return models.Word }

func (p *Processor) Label() string { return "Word file with OCR" }

func (p *Processor) Process(ctx context.Context, upload models.Upload, rec store.Recorder, rep document.Reporter) (int, error) {
	rep.Info("Processing Word file with OCR...")

	tmpDir, err := os.MkdirTemp(p.tempRoot, "word-ocr-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			p.logger.Error("Failed to remove temp directory",
				logger.String("dir", tmpDir),
				logger.Error(err),
			)
		}
	}()

	pdfPath, err := p.converter.ConvertToPDF(ctx, upload.Path, tmpDir)
	if err != nil {
		return 0, fmt.Errorf("failed to convert to pdf: %w", err)
	}

	content, err := p.pages.Text(ctx, pdfPath)
	if err != nil {
		return 0, err
	}

	if _, err := rec.Insert(ctx, upload.Name, content); err != nil {
		return 0, err
	}

	rep.Success(fmt.Sprintf("Successfully processed Word file with OCR: %s", upload.Name))
	return 1, nil
}
