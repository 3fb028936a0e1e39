package extraction

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/feichai0017/text-extractor/internal/agent"
	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/agent/document/documenttest"
	"github.com/feichai0017/text-extractor/internal/agent/document/excel"
	"github.com/feichai0017/text-extractor/internal/agent/document/pdf"
	"github.com/feichai0017/text-extractor/internal/agent/document/word"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/pkg/converters"
	"github.com/feichai0017/text-extractor/pkg/logger"
	"github.com/feichai0017/text-extractor/pkg/storage"
	"github.com/feichai0017/text-extractor/pkg/storage/local"
)

type fixture struct {
	svc     *ExtractionService
	store   *store.Store
	engine  *documenttest.Engine
	conv    *documenttest.Converter
	workDir string
	log     *logger.TestLogger
}

func newFixture(t *testing.T, opts ...func(*ServiceConfig)) *fixture {
	t.Helper()
	log := logger.NewTestLogger()

	st, err := store.Open(filepath.Join(t.TempDir(), "records.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Reset(context.Background()))

	engine := &documenttest.Engine{}
	conv := &documenttest.Converter{}
	pages := document.PageOCR{Rasterizer: &documenttest.Rasterizer{Pages: 2}, Engine: engine, DPI: 300}
	workDir := t.TempDir()
	factory := agent.NewProcessorFactory(log,
		pdf.NewProcessor(pages, log),
		excel.NewProcessor(log),
		word.NewProcessor(conv, pages, workDir, log),
	)

	config := &ServiceConfig{WorkDir: workDir, MaxFileSize: 1 << 20}
	for _, opt := range opts {
		opt(config)
	}
	svc := NewService(factory, st, nil, log, config)
	return &fixture{svc: svc, store: st, engine: engine, conv: conv, workDir: workDir, log: log}
}

func memFile(name string, data []byte) UploadFile {
	return UploadFile{
		Name: name,
		Size: int64(len(data)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func workbook(t *testing.T, sheets ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetSheetRow(name, "A1", &[]interface{}{"col"}))
		require.NoError(t, f.SetSheetRow(name, "A2", &[]interface{}{name}))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func docx(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func messages(result *models.BatchResult, level models.MessageLevel) []string {
	var out []string
	for _, m := range result.Messages {
		if m.Level == level {
			out = append(out, m.Text)
		}
	}
	return out
}

func TestProcessBatchEmpty(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.svc.ProcessBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []models.StatusMessage{{Level: models.LevelWarning, Text: "Please upload files to process."}}, result.Messages)

	records, err := fx.svc.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProcessBatchMixedFiles(t *testing.T) {
	fx := newFixture(t)

	result, err := fx.svc.ProcessBatch(context.Background(), []UploadFile{
		memFile("scan.PDF", documenttest.MinimalPDF(2)),
		memFile("notes.txt", []byte("plain text")),
		memFile("budget.xlsx", workbook(t, "Q1", "Q2")),
		memFile("memo.docx", docx(t)),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 4, result.RecordsCreated)
	assert.NotEmpty(t, result.BatchID)

	records, err := fx.svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"scan.PDF", "budget.xlsx", "budget.xlsx", "memo.docx"},
		[]string{records[0].FileName, records[1].FileName, records[2].FileName, records[3].FileName})
	assert.Equal(t, "text of page 1\ntext of page 2", records[0].Content)
	assert.Equal(t, "col\n Q1", records[1].Content)

	require.Len(t, result.Files, 3)
	assert.Equal(t, models.FileSummary{
		Name:    "scan.PDF",
		Type:    models.PDF,
		Size:    int64(len(documenttest.MinimalPDF(2))),
		SHA256:  result.Files[0].SHA256,
		Pages:   2,
		Records: 1,
		Status:  models.FileProcessed,
	}, result.Files[0])
	assert.Len(t, result.Files[0].SHA256, 64)
	assert.Equal(t, 2, result.Files[1].Records)

	count, err := fx.svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	last := result.Messages[len(result.Messages)-1]
	assert.Equal(t, models.StatusMessage{Level: models.LevelSuccess, Text: "Files processed successfully."}, last)
	for _, m := range result.Messages {
		assert.NotContains(t, m.Text, "notes.txt", "unsupported files are skipped silently")
	}
}

func TestProcessBatchFailureContinues(t *testing.T) {
	fx := newFixture(t)
	fx.engine.Err = errors.New("tesseract exploded")

	result, err := fx.svc.ProcessBatch(context.Background(), []UploadFile{
		memFile("bad.pdf", documenttest.MinimalPDF(1)),
		memFile("broken.xlsx", []byte("PK\x03\x04 not really a workbook")),
		memFile("good.xlsx", workbook(t, "Only")),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, result.Processed)

	errs := messages(result, models.LevelError)
	require.Len(t, errs, 2)
	assert.True(t, strings.HasPrefix(errs[0], "Error processing PDF file: "), errs[0])
	assert.Contains(t, errs[0], "tesseract exploded")
	assert.True(t, strings.HasPrefix(errs[1], "Error processing Excel file: "), errs[1])

	records, err := fx.svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "good.xlsx", records[0].FileName)
	assert.Equal(t, []string{"Files processed successfully."}, messages(result, models.LevelSuccess))
}

func TestProcessBatchAcceptsPDFsThePageCounterCannotRead(t *testing.T) {
	fx := newFixture(t)

	v20 := documenttest.MinimalPDF(1)
	copy(v20, "%PDF-2.0")
	padded := append(documenttest.MinimalPDF(1), make([]byte, 200)...)

	result, err := fx.svc.ProcessBatch(context.Background(), []UploadFile{
		memFile("modern.pdf", v20),
		memFile("padded.pdf", padded),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Empty(t, messages(result, models.LevelError))

	records, err := fx.svc.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "modern.pdf", records[0].FileName)
	assert.Equal(t, "padded.pdf", records[1].FileName)
}

func TestProcessBatchPageLimit(t *testing.T) {
	fx := newFixture(t, func(c *ServiceConfig) { c.MaxPDFPages = 1 })

	result, err := fx.svc.ProcessBatch(context.Background(), []UploadFile{
		memFile("long.pdf", documenttest.MinimalPDF(2)),
		memFile("short.pdf", documenttest.MinimalPDF(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Processed)

	errs := messages(result, models.LevelError)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "pdf has 2 pages, limit is 1")
	assert.Equal(t, models.FileFailed, result.Files[0].Status)
	assert.Equal(t, models.FileProcessed, result.Files[1].Status)
}

func TestProcessBatchRejectsInvalidUploads(t *testing.T) {
	fx := newFixture(t)

	big := make([]byte, 2<<20)
	copy(big, documenttest.MinimalPDF(1))

	result, err := fx.svc.ProcessBatch(context.Background(), []UploadFile{
		memFile("huge.pdf", big),
		memFile("empty.docx", nil),
		memFile("fake.pdf", []byte("hello there")),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Failed)

	errs := messages(result, models.LevelError)
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "file too large")
	assert.True(t, strings.HasPrefix(errs[1], "Error processing Word file with OCR: "), errs[1])
	assert.Contains(t, errs[2], "invalid MIME type")
	assert.Empty(t, fx.conv.OutDir, "the converter never ran")
}

func TestProcessBatchRemovesStagingDirectory(t *testing.T) {
	fx := newFixture(t)
	fx.engine.Err = errors.New("boom")

	_, err := fx.svc.ProcessBatch(context.Background(), []UploadFile{
		memFile("a.pdf", documenttest.MinimalPDF(1)),
		memFile("b.docx", docx(t)),
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(fx.workDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessBatchCancelled(t *testing.T) {
	fx := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := fx.svc.ProcessBatch(ctx, []UploadFile{memFile("a.pdf", documenttest.MinimalPDF(1))})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Processed)
}

func TestArtifact(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, err := fx.store.Insert(ctx, "a.pdf", "alpha")
	require.NoError(t, err)
	_, err = fx.store.Insert(ctx, "b.xlsx", "beta")
	require.NoError(t, err)

	data, err := fx.svc.Artifact(ctx, converters.NewTextConverter())
	require.NoError(t, err)
	assert.Equal(t, "File: a.pdf\n\nalpha\n\nFile: b.xlsx\n\nbeta", string(data))
}

func TestExportDisabled(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.svc.Export(context.Background())
	assert.ErrorIs(t, err, storage.ErrExportDisabled)
}

func TestExportLocal(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	_, err := fx.store.Insert(ctx, "a.pdf", "alpha")
	require.NoError(t, err)

	root := t.TempDir()
	exporter, err := local.NewLocalStorage(root, fx.log)
	require.NoError(t, err)
	fx.svc.exporter = exporter
	fx.svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	key, err := fx.svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "exports/extracted_text-20240102T030405Z.txt", key)

	data, err := os.ReadFile(filepath.Join(root, "exports", "extracted_text-20240102T030405Z.txt"))
	require.NoError(t, err)
	assert.Equal(t, "File: a.pdf\n\nalpha", string(data))
}

func TestExportRetention(t *testing.T) {
	fx := newFixture(t, func(c *ServiceConfig) { c.ExportRetention = 24 * time.Hour })
	ctx := context.Background()

	root := t.TempDir()
	exporter, err := local.NewLocalStorage(root, fx.log)
	require.NoError(t, err)
	fx.svc.exporter = exporter

	_, err = exporter.Store(ctx, strings.NewReader("stale"), "exports/extracted_text-old.txt")
	require.NoError(t, err)
	past := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "exports", "extracted_text-old.txt"), past, past))

	key, err := fx.svc.Export(ctx)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "exports", "extracted_text-old.txt"))
	assert.True(t, os.IsNotExist(err), "expired export removed")
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(key)))
	assert.NoError(t, err, "fresh export kept")
}

func TestExportedArtifact(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.ExportedArtifact(ctx, "exports/x.txt")
	assert.ErrorIs(t, err, storage.ErrExportDisabled)

	exporter, err := local.NewLocalStorage(t.TempDir(), fx.log)
	require.NoError(t, err)
	fx.svc.exporter = exporter
	_, err = fx.store.Insert(ctx, "a.pdf", "alpha")
	require.NoError(t, err)

	key, err := fx.svc.Export(ctx)
	require.NoError(t, err)

	rc, err := fx.svc.ExportedArtifact(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "File: a.pdf\n\nalpha", string(data))

	for _, bad := range []string{"records.db", "exports/../records.db", "exports//x.txt"} {
		_, err := fx.svc.ExportedArtifact(ctx, bad)
		assert.ErrorIs(t, err, ErrUnknownExport, bad)
	}
}

func TestSupportedTypes(t *testing.T) {
	fx := newFixture(t)
	assert.Equal(t, []models.FileType{models.PDF, models.Excel, models.Word}, fx.svc.SupportedTypes())
}

func TestFromPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	files, err := FromPaths([]string{path})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "report.pdf", files[0].Name)
	assert.Equal(t, int64(4), files[0].Size)

	_, err = FromPaths([]string{dir})
	assert.Error(t, err)
	_, err = FromPaths([]string{filepath.Join(dir, "missing.pdf")})
	assert.Error(t, err)
}

func TestStageStripsDirectories(t *testing.T) {
	dir := t.TempDir()
	path, n, err := stage(dir, memFile("../../etc/evil.pdf", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "evil.pdf"), path)
	assert.Equal(t, int64(1), n)
}
