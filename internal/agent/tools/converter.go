package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Converter turns an office document into a PDF.
type Converter interface {
	// ConvertToPDF writes the PDF into outDir and returns its path.
	ConvertToPDF(ctx context.Context, srcPath, outDir string) (string, error)
}

// Soffice converts with a headless LibreOffice.
type Soffice struct {
	binary  string
	timeout time.Duration
	logger  logger.Logger
	run     commandRunner
}

func NewSoffice(binary string, timeout time.Duration, log logger.Logger) *Soffice {
	if binary == "" {
		binary = "soffice"
	}
	return &Soffice{
		binary:  binary,
		timeout: timeout,
		logger:  log.Named("soffice"),
		run:     execRunner,
	}
}

// ConvertToPDF uses a profile directory inside outDir so a desktop LibreOffice
// session does not swallow the request.
func (s *Soffice) ConvertToPDF(ctx context.Context, srcPath, outDir string) (string, error) {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	profile := "file://" + filepath.ToSlash(filepath.Join(absOut, ".profile"))

	if err := runWithTimeout(ctx, s.run, s.timeout, s.binary,
		"-env:UserInstallation="+profile,
		"--headless",
		"--convert-to", "pdf",
		"--outdir", absOut,
		srcPath,
	); err != nil {
		return "", err
	}

	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	pdfPath := filepath.Join(absOut, stem+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("converter produced no pdf for %s: %w", filepath.Base(srcPath), err)
	}

	s.logger.Debug("Converted document", logger.String("src", srcPath), logger.String("pdf", pdfPath))
	return pdfPath, nil
}
