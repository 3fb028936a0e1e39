package local

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/feichai0017/text-extractor/pkg/logger"
)

// LocalStorage keeps objects as files below a root directory.
type LocalStorage struct {
	root   string
	logger logger.Logger
}

func NewLocalStorage(root string, log logger.Logger) (*LocalStorage, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &LocalStorage{root: root, logger: log.Named("local-storage")}, nil
}

func (l *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return filepath.Join(l.root, clean), nil
}

// Store 实现 Storage 接口的 Store 方法
func (l *LocalStorage) Store(ctx context.Context, reader io.Reader, key string) (string, error) {
	path, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	if _, err := io.Copy(f, reader); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to store file: %w", err)
	}

	l.logger.Info("Stored file", logger.String("path", path))
	return key, nil
}

// Get 实现 Storage 接口的 Get 方法
func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

// Delete 实现 Storage 接口的 Delete 方法
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// CleanupBefore 实现 Storage 接口的 CleanupBefore 方法
func (l *LocalStorage) CleanupBefore(ctx context.Context, threshold time.Time) error {
	return filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(threshold) {
			return nil
		}

		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		if err := l.Delete(ctx, filepath.ToSlash(rel)); err != nil {
			l.logger.Error("Failed to delete expired file",
				logger.String("path", path),
				logger.Error(err),
			)
			return nil
		}
		l.logger.Info("Deleted expired file",
			logger.String("path", path),
			logger.Time("lastModified", info.ModTime()),
		)
		return nil
	})
}
