package store

import (
	"context"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// Recorder is the write side handed to extractors.
type Recorder interface {
	Insert(ctx context.Context, fileName, content string) (*models.ExtractedRecord, error)
}

// Store is the single-writer handle on the extracted_text_new table.
type Store struct {
	db     *gorm.DB
	logger logger.Logger
}

// Open connects to the SQLite file at path. The table is not touched; call Reset.
func Open(path string, log logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return &Store{db: db, logger: log.Named("store")}, nil
}

// Reset drops and recreates the table. Everything stored by a previous run is lost.
func (s *Store) Reset(ctx context.Context) error {
	migrator := s.db.WithContext(ctx).Migrator()
	if migrator.HasTable(&models.ExtractedRecord{}) {
		if err := migrator.DropTable(&models.ExtractedRecord{}); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
		s.logger.Info("Dropped existing table", logger.String("table", models.ExtractedRecord{}.TableName()))
	}
	if err := migrator.CreateTable(&models.ExtractedRecord{}); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Insert appends one record and commits it.
func (s *Store) Insert(ctx context.Context, fileName, content string) (*models.ExtractedRecord, error) {
	record := &models.ExtractedRecord{FileName: fileName, Content: content}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to insert record for %s: %w", fileName, err)
	}
	s.logger.Debug("Record stored",
		logger.Uint("id", record.ID),
		logger.String("filename", fileName),
		logger.Int("contentLength", len(content)),
	)
	return record, nil
}

// QueryAll returns every record in insertion order.
func (s *Store) QueryAll(ctx context.Context) ([]models.ExtractedRecord, error) {
	var records []models.ExtractedRecord
	if err := s.db.WithContext(ctx).Order("id asc").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ExtractedRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
