// Package ocr turns rasterized page images into text.
package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Engine recognizes the text on a single page image.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (string, error)
	Close() error
}

// RecognizePages runs e over pages in order and joins the page texts with a newline.
func RecognizePages(ctx context.Context, e Engine, pages []image.Image) (string, error) {
	texts := make([]string, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := e.Recognize(ctx, page)
		if err != nil {
			return "", fmt.Errorf("failed to recognize page %d: %w", i+1, err)
		}
		texts = append(texts, text)
	}
	return strings.Join(texts, "\n"), nil
}

// New builds the engine selected by c.OCREngine.
func New(ctx context.Context, c *cfg.AppConfig, log logger.Logger) (Engine, error) {
	var (
		engine Engine
		err    error
	)
	switch c.OCREngine {
	case "tesseract":
		opts := DefaultTesseractOptions()
		opts.Languages = c.OCRLanguages
		opts.DPI = c.DPI
		engine, err = NewTesseractEngine(opts)
	case "textract":
		engine, err = NewTextractEngine(ctx, cfg.GetTextractConfig(), log)
	default:
		return nil, fmt.Errorf("unsupported ocr engine: %s", c.OCREngine)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s engine: %w", c.OCREngine, err)
	}

	if c.Preprocess {
		engine = WithPreprocessing(engine, DefaultPreprocessors()...)
	}
	log.Info("OCR engine ready",
		logger.String("engine", engine.Name()),
		logger.Bool("preprocess", c.Preprocess),
	)
	return engine, nil
}
