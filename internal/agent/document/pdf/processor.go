package pdf

import (
	"context"
	"fmt"

	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Processor OCRs every page of an uploaded PDF into a single record.
type Processor struct {
	pages  document.PageOCR
	logger logger.Logger
}

func NewProcessor(pages document.PageOCR, log logger.Logger) *Processor {
	return &Processor{
		pages:  pages,
		logger: log.Named("pdf"),
	}
}

func (p *Processor) Type() models.FileType { return models.PDF }

func (p *Processor) Label() string { return "PDF file" }

func (p *Processor) Process(ctx context.Context, upload models.Upload, rec store.Recorder, rep document.Reporter) (int, error) {
	rep.Info("Processing PDF file...")

	content, err := p.pages.Text(ctx, upload.Path)
	if err != nil {
		return 0, err
	}

	record, err := rec.Insert(ctx, upload.Name, content)
	if err != nil {
		return 0, err
	}

	p.logger.Info("PDF processed",
		logger.String("filename", upload.Name),
		logger.Uint("recordId", record.ID),
	)
	rep.Success(fmt.Sprintf("Successfully processed PDF: %s", upload.Name))
	return 1, nil
}
