package config

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	appOnce   sync.Once
	appConfig *AppConfig
)

// AppConfig holds the settings of the extraction service and CLI.
type AppConfig struct {
	Addr           string        `yaml:"addr"`
	DatabasePath   string        `yaml:"databasePath"`
	WorkDir        string        `yaml:"workDir"`
	MaxUploadMB    int           `yaml:"maxUploadMB"`
	MaxBatchMB     int           `yaml:"maxBatchMB"`
	MaxPDFPages    int           `yaml:"maxPdfPages"`
	DPI            int           `yaml:"dpi"`
	OCREngine      string        `yaml:"ocrEngine"`
	OCRLanguages   []string      `yaml:"ocrLanguages"`
	Preprocess     bool          `yaml:"preprocess"`
	PdftoppmPath   string        `yaml:"pdftoppmPath"`
	SofficePath    string        `yaml:"sofficePath"`
	ToolTimeout    time.Duration `yaml:"toolTimeout"`
	ExportBackend  string        `yaml:"exportBackend"`
	ExportDir      string        `yaml:"exportDir"`
	ExportRetain   time.Duration `yaml:"exportRetention"`
	CORSOrigins    []string      `yaml:"corsOrigins"`
	LogLevel       string        `yaml:"logLevel"`
	LogEncoding    string        `yaml:"logEncoding"`
	LogOutputPaths []string      `yaml:"logOutputPaths"`
}

// MaxUploadBytes converts MaxUploadMB to bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// MaxBatchBytes converts MaxBatchMB to bytes.
func (c *AppConfig) MaxBatchBytes() int64 {
	return int64(c.MaxBatchMB) * 1024 * 1024
}

// DefaultAppConfig returns the built-in defaults.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Addr:           ":8080",
		DatabasePath:   "extracted_text_new.db",
		WorkDir:        os.TempDir(),
		MaxUploadMB:    50,
		MaxBatchMB:     200,
		DPI:            300,
		OCREngine:      "tesseract",
		OCRLanguages:   []string{"eng"},
		PdftoppmPath:   "pdftoppm",
		SofficePath:    "soffice",
		ExportBackend:  "none",
		ExportDir:      "exports",
		CORSOrigins:    []string{"*"},
		LogLevel:       "info",
		LogEncoding:    "json",
		LogOutputPaths: []string{"stdout", "logs/app.log"},
	}
}

// LoadAppConfig builds a fresh config: defaults, then the YAML file named by
// EXTRACTOR_CONFIG (if any), then environment variables.
func LoadAppConfig() (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path := os.Getenv("EXTRACTOR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	envString("EXTRACTOR_ADDR", &cfg.Addr)
	envString("DATABASE_PATH", &cfg.DatabasePath)
	envString("WORK_DIR", &cfg.WorkDir)
	envInt("MAX_UPLOAD_MB", &cfg.MaxUploadMB)
	envInt("MAX_BATCH_MB", &cfg.MaxBatchMB)
	envInt("MAX_PDF_PAGES", &cfg.MaxPDFPages)
	envInt("OCR_DPI", &cfg.DPI)
	envString("OCR_ENGINE", &cfg.OCREngine)
	envList("OCR_LANGUAGES", &cfg.OCRLanguages)
	envBool("OCR_PREPROCESS", &cfg.Preprocess)
	envString("PDFTOPPM_PATH", &cfg.PdftoppmPath)
	envString("SOFFICE_PATH", &cfg.SofficePath)
	envDuration("TOOL_TIMEOUT", &cfg.ToolTimeout)
	envString("EXPORT_BACKEND", &cfg.ExportBackend)
	envString("EXPORT_DIR", &cfg.ExportDir)
	envDuration("EXPORT_RETENTION", &cfg.ExportRetain)
	envList("CORS_ORIGINS", &cfg.CORSOrigins)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("LOG_ENCODING", &cfg.LogEncoding)
	envList("LOG_OUTPUT_PATHS", &cfg.LogOutputPaths)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *AppConfig) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("maxUploadMB must be positive, got %d", c.MaxUploadMB)
	}
	if c.MaxBatchMB < c.MaxUploadMB {
		return fmt.Errorf("maxBatchMB (%d) must be at least maxUploadMB (%d)", c.MaxBatchMB, c.MaxUploadMB)
	}
	if c.MaxPDFPages < 0 {
		return fmt.Errorf("maxPdfPages must not be negative, got %d", c.MaxPDFPages)
	}
	if c.ExportRetain < 0 {
		return fmt.Errorf("exportRetention must not be negative, got %s", c.ExportRetain)
	}
	if c.ToolTimeout < 0 {
		return fmt.Errorf("toolTimeout must not be negative, got %s", c.ToolTimeout)
	}
	switch c.OCREngine {
	case "tesseract", "textract":
	default:
		return fmt.Errorf("unsupported ocr engine: %s", c.OCREngine)
	}
	switch c.ExportBackend {
	case "none", "local", "s3", "minio":
	default:
		return fmt.Errorf("unsupported export backend: %s", c.ExportBackend)
	}
	return nil
}

// GetAppConfig returns the process-wide config, loaded once.
func GetAppConfig() *AppConfig {
	appOnce.Do(func() {
		loadEnv()
		cfg, err := LoadAppConfig()
		if err != nil {
			log.Fatalf("invalid configuration: %v", err)
		}
		appConfig = cfg
	})
	return appConfig
}
