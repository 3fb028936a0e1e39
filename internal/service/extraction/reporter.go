package extraction

import (
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// batchReporter records the messages of one batch and mirrors them to the log.
type batchReporter struct {
	messages []models.StatusMessage
	logger   logger.Logger
}

func newBatchReporter(log logger.Logger) *batchReporter {
	return &batchReporter{logger: log}
}

func (r *batchReporter) Info(msg string) {
	r.add(models.LevelInfo, msg)
	r.logger.Info(msg)
}

func (r *batchReporter) Success(msg string) {
	r.add(models.LevelSuccess, msg)
	r.logger.Info(msg)
}

func (r *batchReporter) Warning(msg string) {
	r.add(models.LevelWarning, msg)
	r.logger.Warn(msg)
}

func (r *batchReporter) Error(msg string) {
	r.add(models.LevelError, msg)
	r.logger.Error(msg)
}

func (r *batchReporter) add(level models.MessageLevel, msg string) {
	r.messages = append(r.messages, models.StatusMessage{Level: level, Text: msg})
}
