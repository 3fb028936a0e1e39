package converters

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/text-extractor/internal/models"
)

var records = []models.ExtractedRecord{
	{ID: 1, FileName: "a.pdf", Content: "hello"},
	{ID: 2, FileName: "b.xlsx", Content: "x y\n1 2"},
	{ID: 3, FileName: "b.xlsx", Content: ""},
}

func TestTextConverter(t *testing.T) {
	c := NewTextConverter()

	out, err := c.Convert(records)
	require.NoError(t, err)
	assert.Equal(t, "File: a.pdf\n\nhello\n\nFile: b.xlsx\n\nx y\n1 2\n\nFile: b.xlsx\n\n", string(out))
	assert.Equal(t, "text/plain", c.ContentType())
	assert.Equal(t, "extracted_text.txt", c.FileName())

	out, err = c.Convert(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestJSONConverter(t *testing.T) {
	c := NewJSONConverter()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	out, err := c.Convert(records)
	require.NoError(t, err)

	var doc ProcessedDocument
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "completed", doc.Status)
	assert.Equal(t, fixed, doc.ProcessedAt)
	assert.Equal(t, []string{"a.pdf", "b.xlsx"}, doc.Metadata.FileNames)
	assert.Equal(t, 3, doc.Metadata.RecordCount)
	assert.Equal(t, 12, doc.Metadata.TotalChars)
	require.Len(t, doc.Records, 3)
	assert.Equal(t, 3, doc.Records[2].Position)
	assert.Equal(t, uint(2), doc.Records[1].ID)
}
