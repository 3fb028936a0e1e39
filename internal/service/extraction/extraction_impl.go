package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/internal/agent"
	"github.com/feichai0017/text-extractor/internal/agent/document"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/internal/utils/validator"
	"github.com/feichai0017/text-extractor/pkg/converters"
	"github.com/feichai0017/text-extractor/pkg/logger"
	"github.com/feichai0017/text-extractor/pkg/storage"
)

const (
	msgNoFiles = "Please upload files to process."
	msgDone    = "Files processed successfully."
)

// ErrUnknownExport is returned for keys outside the export area.
var ErrUnknownExport = errors.New("unknown export")

// Dispatcher picks the processor for an upload name.
type Dispatcher interface {
	GetProcessor(fileName string) (document.Processor, bool)
	Supported() []models.FileType
}

// RecordStore is the part of the record store the service needs.
type RecordStore interface {
	store.Recorder
	QueryAll(ctx context.Context) ([]models.ExtractedRecord, error)
	Count(ctx context.Context) (int64, error)
}

// ServiceConfig 服务配置
type ServiceConfig struct {
	WorkDir         string
	MaxFileSize     int64
	MaxPDFPages     int           // 0 表示不限制
	ExportRetention time.Duration // 0 keeps every export
}

type ExtractionService struct {
	mu         sync.Mutex
	dispatcher Dispatcher
	records    RecordStore
	validator  *validator.DocumentValidator
	exporter   storage.Storage
	logger     logger.Logger
	config     *ServiceConfig
	now        func() time.Time
}

// NewService wires a service. exporter may be nil, which disables Export.
func NewService(
	dispatcher Dispatcher,
	records RecordStore,
	exporter storage.Storage,
	log logger.Logger,
	config *ServiceConfig,
) *ExtractionService {
	if config == nil {
		config = &ServiceConfig{
			WorkDir:     os.TempDir(),
			MaxFileSize: 50 * 1024 * 1024, // 50MB
		}
	}

	return &ExtractionService{
		dispatcher: dispatcher,
		records:    records,
		validator:  newValidator(log, config),
		exporter:   exporter,
		logger:     log.Named("extraction"),
		config:     config,
		now:        time.Now,
	}
}

func newValidator(log logger.Logger, config *ServiceConfig) *validator.DocumentValidator {
	vc := validator.DefaultValidatorConfig(config.MaxFileSize)
	vc.MaxPageCount = config.MaxPDFPages
	return validator.NewDocumentValidator(log, vc)
}

// GetService builds the service from application config. The returned
// cleanup closes the OCR engine.
func GetService(ctx context.Context, c *cfg.AppConfig, records RecordStore, log logger.Logger) (*ExtractionService, func() error, error) {
	factory, err := agent.NewDefaultFactory(ctx, c, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize processor factory: %w", err)
	}

	exporter, err := storage.NewStorage(ctx, c, log)
	switch {
	case errors.Is(err, storage.ErrExportDisabled):
		exporter = nil
	case err != nil:
		factory.Close()
		return nil, nil, fmt.Errorf("failed to initialize export storage: %w", err)
	}

	svc := NewService(factory, records, exporter, log, &ServiceConfig{
		WorkDir:         c.WorkDir,
		MaxFileSize:     c.MaxUploadBytes(),
		MaxPDFPages:     c.MaxPDFPages,
		ExportRetention: c.ExportRetain,
	})
	return svc, factory.Close, nil
}

// ProcessBatch 批量处理文件
//
// Files are handled one at a time. Unsupported extensions are skipped without
// a message; any failure of a supported file becomes an error message and the
// batch moves on. Batches never overlap.
func (s *ExtractionService) ProcessBatch(ctx context.Context, files []UploadFile) (*models.BatchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &models.BatchResult{
		BatchID:   uuid.New().String(),
		StartedAt: s.now(),
	}
	ctx = logger.NewContext(ctx, result.BatchID)
	log := logger.FromContext(ctx, s.logger)
	rep := newBatchReporter(log)
	defer func() {
		result.Messages = rep.messages
		result.FinishedAt = s.now()
	}()

	if len(files) == 0 {
		rep.Warning(msgNoFiles)
		return result, nil
	}

	dir := filepath.Join(s.config.WorkDir, "batch-"+result.BatchID)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return result, fmt.Errorf("failed to create batch directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Error("Failed to remove batch directory",
				logger.String("dir", dir),
				logger.Error(err),
			)
		}
	}()

	log.Info("Starting batch", logger.Int("files", len(files)))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		proc, ok := s.dispatcher.GetProcessor(f.Name)
		if !ok {
			result.Skipped++
			continue
		}

		summary, err := s.processFile(ctx, dir, f, proc, rep)
		result.Files = append(result.Files, summary)
		result.RecordsCreated += summary.Records
		if err != nil {
			result.Failed++
			rep.Error(fmt.Sprintf("Error processing %s: %v", proc.Label(), err))
			continue
		}
		result.Processed++
	}

	rep.Success(msgDone)
	log.Info("Batch finished",
		logger.Int("processed", result.Processed),
		logger.Int("skipped", result.Skipped),
		logger.Int("failed", result.Failed),
		logger.Int("records", result.RecordsCreated),
	)
	return result, nil
}

func (s *ExtractionService) processFile(ctx context.Context, dir string, f UploadFile, proc document.Processor, rep document.Reporter) (models.FileSummary, error) {
	summary := models.FileSummary{
		Name:   f.Name,
		Type:   proc.Type(),
		Size:   f.Size,
		Status: models.FileFailed,
	}
	if s.config.MaxFileSize > 0 && f.Size > s.config.MaxFileSize {
		return summary, fmt.Errorf("%w: %d bytes, limit is %d", validator.ErrFileTooLarge, f.Size, s.config.MaxFileSize)
	}

	stagedPath, size, err := stage(dir, f)
	if err != nil {
		return summary, err
	}
	summary.Size = size
	upload := models.Upload{Name: f.Name, Path: stagedPath, Size: size}

	info, err := s.validator.ValidateFile(upload, proc.Type())
	if info != nil {
		summary.SHA256 = info.Hash
		summary.Pages = info.PageCount
	}
	if err != nil {
		return summary, err
	}

	start := s.now()
	n, err := proc.Process(ctx, upload, s.records, rep)
	summary.Records = n
	logger.FromContext(ctx, s.logger).Debug("File processed",
		logger.String("filename", f.Name),
		logger.String("sha256", summary.SHA256),
		logger.Int("records", n),
		logger.Duration("elapsed", s.now().Sub(start)),
	)
	if err != nil {
		return summary, err
	}
	summary.Status = models.FileProcessed
	return summary, nil
}

// Records 返回所有记录
func (s *ExtractionService) Records(ctx context.Context) ([]models.ExtractedRecord, error) {
	records, err := s.records.QueryAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

func (s *ExtractionService) Count(ctx context.Context) (int64, error) {
	return s.records.Count(ctx)
}

func (s *ExtractionService) SupportedTypes() []models.FileType {
	return s.dispatcher.Supported()
}

func (s *ExtractionService) Artifact(ctx context.Context, conv converters.DocumentConverter) ([]byte, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return conv.Convert(records)
}

func (s *ExtractionService) Export(ctx context.Context) (string, error) {
	if s.exporter == nil {
		return "", storage.ErrExportDisabled
	}

	data, err := s.Artifact(ctx, converters.NewTextConverter())
	if err != nil {
		return "", err
	}

	key, err := s.exporter.Store(ctx, bytes.NewReader(data), storage.ExportKey(s.now()))
	if err != nil {
		return "", fmt.Errorf("failed to export artifact: %w", err)
	}

	s.logger.Info("Artifact exported",
		logger.String("key", key),
		logger.Int("bytes", len(data)),
	)

	if s.config.ExportRetention > 0 {
		threshold := s.now().Add(-s.config.ExportRetention)
		if err := s.exporter.CleanupBefore(ctx, threshold); err != nil {
			s.logger.Warn("Failed to clean up old exports",
				logger.Time("threshold", threshold),
				logger.Error(err),
			)
		}
	}
	return key, nil
}

// ExportedArtifact opens an exported artifact by key. Only keys under the
// export prefix are served.
func (s *ExtractionService) ExportedArtifact(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.exporter == nil {
		return nil, storage.ErrExportDisabled
	}
	if !strings.HasPrefix(key, storage.ExportPrefix) || path.Clean(key) != key {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExport, key)
	}
	return s.exporter.Get(ctx, key)
}
