package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/pkg/logger"
	"github.com/feichai0017/text-extractor/pkg/storage/local"
	"github.com/feichai0017/text-extractor/pkg/storage/minio"
	"github.com/feichai0017/text-extractor/pkg/storage/s3"
)

// StorageType 定义存储类型
type StorageType string

const (
	StorageTypeNone  StorageType = "none"
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
	StorageTypeMinio StorageType = "minio"
)

// ErrExportDisabled is returned when no export backend is configured.
var ErrExportDisabled = errors.New("artifact export is disabled")

// Storage 接口定义
type Storage interface {
	// Store 存储文件
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get 获取文件
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// CleanupBefore 清理过期文件
	CleanupBefore(ctx context.Context, threshold time.Time) error
}

// NewStorage 创建存储实例的工厂方法
func NewStorage(ctx context.Context, c *cfg.AppConfig, log logger.Logger) (Storage, error) {
	switch StorageType(c.ExportBackend) {
	case StorageTypeNone, "":
		return nil, ErrExportDisabled
	case StorageTypeLocal:
		return local.NewLocalStorage(c.ExportDir, log)
	case StorageTypeS3:
		return s3.NewS3Storage(ctx, cfg.GetS3Config(), log)
	case StorageTypeMinio:
		return minio.NewMinioStorage(ctx, cfg.GetMinioConfig(), log)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.ExportBackend)
	}
}

// ExportPrefix is where exported artifacts live in every backend.
const ExportPrefix = "exports/"

// ExportKey names an exported artifact by its UTC creation time.
func ExportKey(now time.Time) string {
	return fmt.Sprintf(ExportPrefix+"extracted_text-%s.txt", now.UTC().Format("20060102T150405Z"))
}
