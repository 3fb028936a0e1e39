package models

import (
	"time"
)

// FileType 文件类型
type FileType string

const (
	PDF   FileType = "pdf"
	Excel FileType = "xlsx"
	Word  FileType = "docx"
)

// ExtractedRecord is one persisted row of extracted text.
type ExtractedRecord struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName string `gorm:"column:file_name" json:"fileName"`
	Content  string `gorm:"column:content;type:text" json:"content"`
}

// TableName pins the table name shared with earlier deployments.
func (ExtractedRecord) TableName() string {
	return "extracted_text_new"
}

// MessageLevel mirrors the severities shown to the user.
type MessageLevel string

const (
	LevelInfo    MessageLevel = "info"
	LevelSuccess MessageLevel = "success"
	LevelWarning MessageLevel = "warning"
	LevelError   MessageLevel = "error"
)

// StatusMessage 用户可见的处理消息
type StatusMessage struct {
	Level MessageLevel `json:"level"`
	Text  string       `json:"text"`
}

// FileStatus is the outcome of one dispatched upload.
type FileStatus string

const (
	FileProcessed FileStatus = "processed"
	FileFailed    FileStatus = "failed"
)

// FileSummary describes one dispatched upload of a batch.
type FileSummary struct {
	Name    string     `json:"name"`
	Type    FileType   `json:"type"`
	Size    int64      `json:"size"`
	SHA256  string     `json:"sha256,omitempty"`
	Pages   int        `json:"pages,omitempty"`
	Records int        `json:"records"`
	Status  FileStatus `json:"status"`
}

// BatchResult summarises one trigger of the process action.
type BatchResult struct {
	BatchID        string          `json:"batchId"`
	Messages       []StatusMessage `json:"messages"`
	Files          []FileSummary   `json:"files"`
	Processed      int             `json:"processed"`
	Skipped        int             `json:"skipped"`
	Failed         int             `json:"failed"`
	RecordsCreated int             `json:"recordsCreated"`
	StartedAt      time.Time       `json:"startedAt"`
	FinishedAt     time.Time       `json:"finishedAt"`
}

// Upload is a file handed to a batch, already staged on disk.
type Upload struct {
	Name string
	Path string
	Size int64
}
