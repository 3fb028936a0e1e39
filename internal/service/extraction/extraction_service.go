package extraction

import (
	"context"
	"io"

	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/converters"
)

// Extractor is the session surface shared by the HTTP handlers and the CLI.
type Extractor interface {
	// ProcessBatch stages, dispatches and extracts files one after another.
	ProcessBatch(ctx context.Context, files []UploadFile) (*models.BatchResult, error)
	// Records lists every stored record in insertion order.
	Records(ctx context.Context) ([]models.ExtractedRecord, error)
	// Count returns how many records are stored.
	Count(ctx context.Context) (int64, error)
	// SupportedTypes lists the file types the batch dispatches.
	SupportedTypes() []models.FileType
	// Artifact renders all stored records with conv.
	Artifact(ctx context.Context, conv converters.DocumentConverter) ([]byte, error)
	// Export stores the text artifact in the configured backend and returns its key.
	Export(ctx context.Context) (string, error)
	// ExportedArtifact opens an artifact previously stored by Export.
	ExportedArtifact(ctx context.Context, key string) (io.ReadCloser, error)
}
