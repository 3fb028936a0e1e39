package tools

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/ledongthuc/pdf"

	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Rasterizer renders every page of a PDF into an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, dpi int) ([]image.Image, error)
}

// Pdftoppm renders pages with poppler's pdftoppm.
type Pdftoppm struct {
	binary  string
	timeout time.Duration
	logger  logger.Logger
	run     commandRunner
}

func NewPdftoppm(binary string, timeout time.Duration, log logger.Logger) *Pdftoppm {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &Pdftoppm{
		binary:  binary,
		timeout: timeout,
		logger:  log.Named("pdftoppm"),
		run:     execRunner,
	}
}

// Rasterize renders into a private directory, decodes the pages in page order
// and removes the directory before returning.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath string, dpi int) ([]image.Image, error) {
	outDir, err := os.MkdirTemp("", "pdfpages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create raster directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	prefix := filepath.Join(outDir, "page")
	if err := runWithTimeout(ctx, p.run, p.timeout, p.binary,
		"-r", strconv.Itoa(dpi), "-png", pdfPath, prefix,
	); err != nil {
		return nil, err
	}

	files, err := pageFiles(prefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no pages rendered from %s", filepath.Base(pdfPath))
	}

	if want, err := PageCount(pdfPath); err != nil {
		p.logger.Debug("Could not read page count", logger.String("path", pdfPath), logger.Error(err))
	} else if want != len(files) {
		p.logger.Warn("Rendered page count differs from document",
			logger.String("path", pdfPath),
			logger.Int("expected", want),
			logger.Int("rendered", len(files)),
		)
	}

	pages := make([]image.Image, 0, len(files))
	for _, f := range files {
		img, err := imaging.Open(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode page %s: %w", filepath.Base(f), err)
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// pageFiles lists <prefix>-N.png sorted by N. pdftoppm zero-pads N by the
// digit count of the last page, so lexical order alone is not trusted.
func pageFiles(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return pageNumber(matches[i]) < pageNumber(matches[j])
	})
	return matches, nil
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	n, err := strconv.Atoi(base[strings.LastIndex(base, "-")+1:])
	if err != nil {
		return -1
	}
	return n
}

// PageCount reads the page tree of the PDF at path.
func PageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return r.NumPage(), nil
}
