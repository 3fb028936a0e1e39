package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract OCR engine modes.
const (
	OEMTesseractOnly = 0
	OEMLSTMOnly      = 1
	OEMCombined      = 2
	OEMDefault       = 3
)

// TesseractOptions configures a TesseractEngine.
type TesseractOptions struct {
	Languages   []string
	PageSegMode gosseract.PageSegMode
	EngineMode  int
	DPI         int
}

// DefaultTesseractOptions: LSTM only, one uniform block of text per page, 300 DPI.
func DefaultTesseractOptions() TesseractOptions {
	return TesseractOptions{
		Languages:   []string{"eng"},
		PageSegMode: gosseract.PSM_SINGLE_BLOCK,
		EngineMode:  OEMLSTMOnly,
		DPI:         300,
	}
}

// TesseractEngine runs the local Tesseract library through gosseract.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	opts          TesseractOptions
	configPath    string
}

// NewTesseractEngine writes the init-only settings (engine mode) to a Tesseract
// config file that every client loads. Close removes it.
func NewTesseractEngine(opts TesseractOptions) (*TesseractEngine, error) {
	f, err := os.CreateTemp("", "tesseract-*.cfg")
	if err != nil {
		return nil, fmt.Errorf("failed to create tesseract config: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "tessedit_ocr_engine_mode %d\n", opts.EngineMode); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("failed to write tesseract config: %w", err)
	}

	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		opts:          opts,
		configPath:    f.Name(),
	}, nil
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize uses a fresh client per page.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := e.clientFactory()
	defer client.Close()

	if err := client.SetConfigFile(e.configPath); err != nil {
		return "", fmt.Errorf("failed to set config file: %w", err)
	}
	if len(e.opts.Languages) > 0 {
		if err := client.SetLanguage(e.opts.Languages...); err != nil {
			return "", fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(e.opts.PageSegMode); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if e.opts.DPI > 0 {
		if err := client.SetVariable("user_defined_dpi", strconv.Itoa(e.opts.DPI)); err != nil {
			return "", fmt.Errorf("failed to set dpi: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return text, nil
}

func (e *TesseractEngine) Close() error {
	if err := os.Remove(e.configPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
