package converters

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/feichai0017/text-extractor/internal/models"
)

// DocumentConverter 定义文档转换器接口
type DocumentConverter interface {
	Convert(records []models.ExtractedRecord) ([]byte, error)
	ContentType() string
	FileName() string
}

// TextConverter renders the download artifact: one "File: <name>" block per
// record, blocks separated by a blank line.
type TextConverter struct{}

func NewTextConverter() *TextConverter {
	return &TextConverter{}
}

func (c *TextConverter) Convert(records []models.ExtractedRecord) ([]byte, error) {
	blocks := make([]string, 0, len(records))
	for _, r := range records {
		blocks = append(blocks, fmt.Sprintf("File: %s\n\n%s", r.FileName, r.Content))
	}
	return []byte(strings.Join(blocks, "\n\n")), nil
}

func (c *TextConverter) ContentType() string { return "text/plain" }

func (c *TextConverter) FileName() string { return "extracted_text.txt" }

// ProcessedDocument 定义 JSON 导出的文档结构
type ProcessedDocument struct {
	Status      string           `json:"status"`
	Records     []RecordContent  `json:"records"`
	Metadata    DocumentMetadata `json:"metadata"`
	ProcessedAt time.Time        `json:"processedAt"`
}

// RecordContent 定义单条记录内容
type RecordContent struct {
	ID       uint   `json:"id"`
	FileName string `json:"fileName"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// DocumentMetadata 定义文档元数据
type DocumentMetadata struct {
	FileNames   []string `json:"fileNames"`
	RecordCount int      `json:"recordCount"`
	TotalChars  int      `json:"totalChars"`
}

// JSONConverter 实现文档转换器
type JSONConverter struct {
	now func() time.Time
}

func NewJSONConverter() *JSONConverter {
	return &JSONConverter{now: time.Now}
}

// Build assembles the document without encoding it.
func (c *JSONConverter) Build(records []models.ExtractedRecord) *ProcessedDocument {
	doc := &ProcessedDocument{
		Status:      "completed",
		ProcessedAt: c.now().UTC(),
		Records:     make([]RecordContent, 0, len(records)),
		Metadata: DocumentMetadata{
			FileNames:   make([]string, 0),
			RecordCount: len(records),
		},
	}

	// 文件名按首次出现的顺序去重
	seen := make(map[string]bool)
	for i, r := range records {
		doc.Records = append(doc.Records, RecordContent{
			ID:       r.ID,
			FileName: r.FileName,
			Text:     r.Content,
			Position: i + 1,
		})
		doc.Metadata.TotalChars += len([]rune(r.Content))
		if !seen[r.FileName] {
			seen[r.FileName] = true
			doc.Metadata.FileNames = append(doc.Metadata.FileNames, r.FileName)
		}
	}
	return doc
}

func (c *JSONConverter) Convert(records []models.ExtractedRecord) ([]byte, error) {
	data, err := json.MarshalIndent(c.Build(records), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

func (c *JSONConverter) ContentType() string { return "application/json" }

func (c *JSONConverter) FileName() string { return "extracted_text.json" }
