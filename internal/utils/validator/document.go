package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrEmptyFile       = errors.New("file is empty")
	ErrMimeMismatch    = errors.New("content does not match extension")
	ErrTooManyPages    = errors.New("too many pages")
	errUnsupportedType = errors.New("unsupported file type")
)

// ValidatorConfig 验证器配置
type ValidatorConfig struct {
	MaxFileSize  int64                        // 最大文件大小（字节）
	AllowedTypes map[models.FileType][]string // 允许的文件类型 {类型: []MIME类型}
	MaxPageCount int                          // PDF最大页数, 0 表示不限制
}

// DefaultValidatorConfig returns the rules for the three supported upload types.
// xlsx and docx are zip containers, which is all content sniffing can tell.
func DefaultValidatorConfig(maxFileSize int64) *ValidatorConfig {
	return &ValidatorConfig{
		MaxFileSize: maxFileSize,
		AllowedTypes: map[models.FileType][]string{
			models.PDF:   {"application/pdf"},
			models.Excel: {"application/zip"},
			models.Word:  {"application/zip"},
		},
	}
}

// ValidationError 验证错误
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.err }

// FileInfo 文件信息
type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Type      string `json:"type"`
	Hash      string `json:"hash"`
	PageCount int    `json:"pageCount,omitempty"`
}

// DocumentValidator 文档验证器
type DocumentValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

// NewDocumentValidator 创建新的文档验证器
func NewDocumentValidator(log logger.Logger, config *ValidatorConfig) *DocumentValidator {
	if config == nil {
		config = DefaultValidatorConfig(50 * 1024 * 1024)
	}
	return &DocumentValidator{
		logger: log.Named("validator"),
		config: config,
	}
}

// ValidateFile checks a staged upload of type ft. A returned *ValidationError
// wraps one of the sentinel errors of this package.
func (v *DocumentValidator) ValidateFile(upload models.Upload, ft models.FileType) (*FileInfo, error) {
	f, err := os.Open(upload.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	info := &FileInfo{
		Filename: upload.Name,
		Size:     stat.Size(),
		Type:     string(ft),
	}

	if err := v.performBasicValidation(info); err != nil {
		return info, err
	}

	// 计算文件哈希
	if info.Hash, err = calculateHash(f); err != nil {
		return nil, fmt.Errorf("failed to calculate hash: %w", err)
	}

	if info.MimeType, err = detectMimeType(f); err != nil {
		return nil, fmt.Errorf("failed to detect mime type: %w", err)
	}
	if err := v.validateMimeType(info, ft); err != nil {
		return info, err
	}

	if ft == models.PDF {
		if err := v.validatePDF(f, info); err != nil {
			return info, err
		}
	}

	v.logger.Debug("File validated",
		logger.String("filename", info.Filename),
		logger.String("mimeType", info.MimeType),
		logger.String("hash", info.Hash),
		logger.Int64("size", info.Size),
	)
	return info, nil
}

// 基本验证
func (v *DocumentValidator) performBasicValidation(info *FileInfo) error {
	if info.Size == 0 {
		return &ValidationError{Code: "EMPTY_FILE", Message: "file is empty", err: ErrEmptyFile}
	}
	if v.config.MaxFileSize > 0 && info.Size > v.config.MaxFileSize {
		return &ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("file size exceeds maximum limit of %d bytes", v.config.MaxFileSize),
			err:     ErrFileTooLarge,
		}
	}
	return nil
}

// MIME类型验证
func (v *DocumentValidator) validateMimeType(info *FileInfo, ft models.FileType) error {
	allowed, ok := v.config.AllowedTypes[ft]
	if !ok {
		return &ValidationError{Code: "INVALID_FILE_TYPE", Message: fmt.Sprintf("file type %s is not allowed", ft), err: errUnsupportedType}
	}
	for _, mime := range allowed {
		if mime == info.MimeType {
			return nil
		}
	}
	return &ValidationError{
		Code:    "INVALID_MIME_TYPE",
		Message: fmt.Sprintf("invalid MIME type %s for .%s file", info.MimeType, ft),
		err:     ErrMimeMismatch,
	}
}

// validatePDF enforces the page limit when the pdf reader can count pages.
// The reader is stricter than poppler (header versions, trailing bytes), so a
// parse failure is left for the rasterizer to judge.
func (v *DocumentValidator) validatePDF(f *os.File, info *FileInfo) error {
	n, err := pageCount(f, info.Size)
	if err != nil {
		v.logger.Debug("Page count unavailable",
			logger.String("filename", info.Filename),
			logger.Error(err),
		)
		return nil
	}
	info.PageCount = n
	if v.config.MaxPageCount > 0 && info.PageCount > v.config.MaxPageCount {
		return &ValidationError{
			Code:    "TOO_MANY_PAGES",
			Message: fmt.Sprintf("pdf has %d pages, limit is %d", info.PageCount, v.config.MaxPageCount),
			err:     ErrTooManyPages,
		}
	}
	return nil
}

func pageCount(f io.ReaderAt, size int64) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	r, err := pdf.NewReader(f, size)
	if err != nil {
		return 0, err
	}
	return r.NumPage(), nil
}

// 检测MIME类型
func detectMimeType(f io.ReadSeeker) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	buffer := make([]byte, 512)
	n, err := f.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(buffer[:n]), nil
}

// 计算文件哈希
func calculateHash(f io.ReadSeeker) (string, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
