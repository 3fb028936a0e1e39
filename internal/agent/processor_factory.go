package agent

import (
	"context"
	"fmt"
	"strings"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/agent/document/excel"
	"github.com/feichai0017/text-extractor/internal/agent/document/pdf"
	"github.com/feichai0017/text-extractor/internal/agent/document/word"
	"github.com/feichai0017/text-extractor/internal/agent/ocr"
	"github.com/feichai0017/text-extractor/internal/agent/tools"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Extension returns the part of name after its final period, lowercased.
// Names without a period have no extension.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

// ProcessorFactory routes uploads to the processor registered for their extension.
type ProcessorFactory struct {
	processors map[models.FileType]document.Processor
	engine     ocr.Engine
	logger     logger.Logger
}

// NewProcessorFactory registers the given processors by their Type.
func NewProcessorFactory(log logger.Logger, processors ...document.Processor) *ProcessorFactory {
	factory := &ProcessorFactory{
		processors: make(map[models.FileType]document.Processor, len(processors)),
		logger:     log.Named("dispatcher"),
	}
	for _, p := range processors {
		factory.processors[p.Type()] = p
	}
	return factory
}

// NewDefaultFactory wires the PDF, Excel and Word processors from configuration.
func NewDefaultFactory(ctx context.Context, c *cfg.AppConfig, log logger.Logger) (*ProcessorFactory, error) {
	engine, err := ocr.New(ctx, c, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create ocr engine: %w", err)
	}

	pages := document.PageOCR{
		Rasterizer: tools.NewPdftoppm(c.PdftoppmPath, c.ToolTimeout, log),
		Engine:     engine,
		DPI:        c.DPI,
	}
	converter := tools.NewSoffice(c.SofficePath, c.ToolTimeout, log)

	factory := NewProcessorFactory(log,
		pdf.NewProcessor(pages, log),
		excel.NewProcessor(log),
		word.NewProcessor(converter, pages, c.WorkDir, log),
	)
	factory.engine = engine
	return factory, nil
}

// GetProcessor returns the processor for fileName, or false when the
// extension is not supported.
func (f *ProcessorFactory) GetProcessor(fileName string) (document.Processor, bool) {
	ext := Extension(fileName)
	processor, ok := f.processors[models.FileType(ext)]
	if !ok {
		f.logger.Debug("No processor for extension",
			logger.String("filename", fileName),
			logger.String("extension", ext),
		)
		return nil, false
	}
	return processor, true
}

// Supported lists the registered file types.
func (f *ProcessorFactory) Supported() []models.FileType {
	types := make([]models.FileType, 0, len(f.processors))
	for _, t := range []models.FileType{models.PDF, models.Excel, models.Word} {
		if _, ok := f.processors[t]; ok {
			types = append(types, t)
		}
	}
	return types
}

// Close releases the OCR engine.
func (f *ProcessorFactory) Close() error {
	if f.engine == nil {
		return nil
	}
	return f.engine.Close()
}
