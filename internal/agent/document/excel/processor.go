package excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Processor stores one record per worksheet, all under the upload's name.
type Processor struct {
	logger logger.Logger
}

func NewProcessor(log logger.Logger) *Processor {
	return &Processor{logger: log.Named("excel")}
}

func (p *Processor) Type() models.FileType { return models.Excel }

func (p *Processor) Label() string { return "Excel file" }

type sheet struct {
	name    string
	content string
}

// Process parses every sheet before writing, so a broken workbook stores nothing.
func (p *Processor) Process(ctx context.Context, upload models.Upload, rec store.Recorder, rep document.Reporter) (int, error) {
	rep.Info("Processing Excel file...")

	sheets, err := readSheets(upload.Path)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, s := range sheets {
		rep.Info(fmt.Sprintf("Processing sheet: %s", s.name))
		if _, err := rec.Insert(ctx, upload.Name, s.content); err != nil {
			return stored, err
		}
		stored++
	}

	p.logger.Info("Workbook processed",
		logger.String("filename", upload.Name),
		logger.Int("sheets", len(sheets)),
	)
	return stored, nil
}

func readSheets(path string) ([]sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheets = append(sheets, sheet{name: name, content: RenderTable(rows)})
	}
	return sheets, nil
}
