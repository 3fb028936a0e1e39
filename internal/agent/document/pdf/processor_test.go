package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/agent/document/documenttest"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

func TestProcessTwoPagePDF(t *testing.T) {
	raster := &documenttest.Rasterizer{Pages: 2}
	p := NewProcessor(document.PageOCR{Rasterizer: raster, Engine: &documenttest.Engine{}, DPI: 300}, logger.NewTestLogger())
	rec := &documenttest.Recorder{}
	rep := &documenttest.Reporter{}

	n, err := p.Process(context.Background(), models.Upload{Name: "scan.pdf", Path: "/stage/scan.pdf"}, rec, rep)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, rec.Records, 1)
	assert.Equal(t, "scan.pdf", rec.Records[0].FileName)
	assert.Equal(t, "text of page 1\ntext of page 2", rec.Records[0].Content)

	assert.Equal(t, []string{"/stage/scan.pdf"}, raster.Calls)
	assert.Equal(t, []int{300}, raster.DPIs)
	assert.Equal(t, []string{"Processing PDF file..."}, rep.Texts(models.LevelInfo))
	assert.Equal(t, []string{"Successfully processed PDF: scan.pdf"}, rep.Texts(models.LevelSuccess))
}

func TestProcessStoresNothingOnOCRFailure(t *testing.T) {
	p := NewProcessor(document.PageOCR{
		Rasterizer: &documenttest.Rasterizer{Pages: 3},
		Engine:     &documenttest.Engine{Err: errors.New("tesseract crashed")},
		DPI:        300,
	}, logger.NewTestLogger())
	rec := &documenttest.Recorder{}
	rep := &documenttest.Reporter{}

	n, err := p.Process(context.Background(), models.Upload{Name: "scan.pdf", Path: "scan.pdf"}, rec, rep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tesseract crashed")
	assert.Zero(t, n)
	assert.Empty(t, rec.Records)
	assert.Empty(t, rep.Texts(models.LevelSuccess))
}

func TestProcessRasterFailure(t *testing.T) {
	p := NewProcessor(document.PageOCR{
		Rasterizer: &documenttest.Rasterizer{Err: errors.New("pdftoppm: not found")},
		Engine:     &documenttest.Engine{},
		DPI:        300,
	}, logger.NewTestLogger())
	rec := &documenttest.Recorder{}

	_, err := p.Process(context.Background(), models.Upload{Name: "a.pdf", Path: "a.pdf"}, rec, &documenttest.Reporter{})
	assert.ErrorContains(t, err, "failed to rasterize pdf")
	assert.Empty(t, rec.Records)
}
