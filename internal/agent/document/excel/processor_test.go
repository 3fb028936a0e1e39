package excel

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/feichai0017/text-extractor/internal/agent/document/documenttest"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

func writeWorkbook(t *testing.T, path string, sheets map[string][][]interface{}, order []string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestProcessWorkbookOneRecordPerSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budget.xlsx")
	writeWorkbook(t, path, map[string][][]interface{}{
		"Q1": {{"item", "cost"}, {"paper", 12}, {"toner", 140}},
		"Q2": {{"item", "cost"}, {"desk", 300}},
	}, []string{"Q1", "Q2"})

	rec := &documenttest.Recorder{}
	rep := &documenttest.Reporter{}
	n, err := NewProcessor(logger.NewTestLogger()).Process(context.Background(), models.Upload{Name: "budget.xlsx", Path: path}, rec, rep)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, rec.Records, 2)
	for _, r := range rec.Records {
		assert.Equal(t, "budget.xlsx", r.FileName)
	}
	assert.Equal(t, " item cost\npaper   12\ntoner  140", rec.Records[0].Content)
	assert.Equal(t, "item cost\ndesk  300", rec.Records[1].Content)

	assert.Equal(t, []string{
		"Processing Excel file...",
		"Processing sheet: Q1",
		"Processing sheet: Q2",
	}, rep.Texts(models.LevelInfo))
	assert.Empty(t, rep.Texts(models.LevelSuccess), "workbooks report per sheet only")
}

func TestProcessCorruptWorkbookStoresNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a zip"), 0o644))

	rec := &documenttest.Recorder{}
	_, err := NewProcessor(logger.NewTestLogger()).Process(context.Background(), models.Upload{Name: "broken.xlsx", Path: path}, rec, &documenttest.Reporter{})
	require.Error(t, err)
	assert.Empty(t, rec.Records)
}

func TestProcessWorkbookInsertFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "one.xlsx")
	writeWorkbook(t, path, map[string][][]interface{}{"Data": {{"a"}, {1}}}, []string{"Data"})

	rec := &documenttest.Recorder{Err: errors.New("database is locked")}
	_, err := NewProcessor(logger.NewTestLogger()).Process(context.Background(), models.Upload{Name: "one.xlsx", Path: path}, rec, &documenttest.Reporter{})
	assert.ErrorContains(t, err, "database is locked")
}
