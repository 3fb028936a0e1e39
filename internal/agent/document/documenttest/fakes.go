// Package documenttest holds in-memory stand-ins for the collaborators of the
// document processors.
package documenttest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"github.com/feichai0017/text-extractor/internal/models"
)

// Recorder keeps inserted records in memory.
type Recorder struct {
	mu      sync.Mutex
	Records []models.ExtractedRecord
	Err     error
}

func (r *Recorder) Insert(_ context.Context, fileName, content string) (*models.ExtractedRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	rec := models.ExtractedRecord{ID: uint(len(r.Records) + 1), FileName: fileName, Content: content}
	r.Records = append(r.Records, rec)
	return &rec, nil
}

// Reporter collects status messages in order.
type Reporter struct {
	Messages []models.StatusMessage
}

func (r *Reporter) add(level models.MessageLevel, msg string) {
	r.Messages = append(r.Messages, models.StatusMessage{Level: level, Text: msg})
}

func (r *Reporter) Info(msg string)    { r.add(models.LevelInfo, msg) }
func (r *Reporter) Success(msg string) { r.add(models.LevelSuccess, msg) }
func (r *Reporter) Warning(msg string) { r.add(models.LevelWarning, msg) }
func (r *Reporter) Error(msg string)   { r.add(models.LevelError, msg) }

// Texts returns the messages at level.
func (r *Reporter) Texts(level models.MessageLevel) []string {
	var out []string
	for _, m := range r.Messages {
		if m.Level == level {
			out = append(out, m.Text)
		}
	}
	return out
}

// Rasterizer returns Pages images for every PDF, each one Width() == page number.
type Rasterizer struct {
	Pages int
	Err   error
	Calls []string
	DPIs  []int
}

func (r *Rasterizer) Rasterize(_ context.Context, pdfPath string, dpi int) ([]image.Image, error) {
	r.Calls = append(r.Calls, pdfPath)
	r.DPIs = append(r.DPIs, dpi)
	if r.Err != nil {
		return nil, r.Err
	}
	pages := make([]image.Image, r.Pages)
	for i := range pages {
		img := image.NewGray(image.Rect(0, 0, i+1, 1))
		img.Set(0, 0, color.White)
		pages[i] = img
	}
	return pages, nil
}

// Engine answers "text of page N" where N is the image width.
type Engine struct {
	Err error
}

func (e *Engine) Name() string { return "fake" }

func (e *Engine) Recognize(_ context.Context, img image.Image) (string, error) {
	if e.Err != nil {
		return "", e.Err
	}
	return fmt.Sprintf("text of page %d", img.Bounds().Dx()), nil
}

func (e *Engine) Close() error { return nil }

// Converter writes a placeholder PDF named after the source.
type Converter struct {
	Err    error
	OutDir string
}

func (c *Converter) ConvertToPDF(_ context.Context, srcPath, outDir string) (string, error) {
	c.OutDir = outDir
	if c.Err != nil {
		return "", c.Err
	}
	if _, err := os.Stat(outDir); err != nil {
		return "", errors.New("output directory does not exist")
	}
	stem := filepath.Base(srcPath)
	stem = stem[:len(stem)-len(filepath.Ext(stem))]
	out := filepath.Join(outDir, stem+".pdf")
	return out, os.WriteFile(out, []byte("%PDF-1.4"), 0o644)
}
