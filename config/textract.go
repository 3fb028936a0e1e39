package config

import (
	"sync"
)

var (
	textractOnce   sync.Once
	textractConfig *TextractConfig
)

// TextractConfig is used when OCR_ENGINE=textract.
type TextractConfig struct {
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	MinConfidence int
}

func GetTextractConfig() *TextractConfig {
	textractOnce.Do(func() {
		loadEnv()

		textractConfig = &TextractConfig{MinConfidence: 0}
		envString("AWS_REGION", &textractConfig.Region)
		envString("AWS_TEXTRACT_ENDPOINT", &textractConfig.Endpoint)
		envString("AWS_ACCESS_KEY", &textractConfig.AccessKey)
		envString("AWS_SECRET_KEY", &textractConfig.SecretKey)
		envInt("TEXTRACT_MIN_CONFIDENCE", &textractConfig.MinConfidence)
	})
	return textractConfig
}
