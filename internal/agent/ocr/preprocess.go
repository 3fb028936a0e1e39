package ocr

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImagePreprocessor 图像预处理接口
type ImagePreprocessor interface {
	Process(img image.Image) (image.Image, error)
}

// 灰度处理器
type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
	return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

// 对比度处理器
type ContrastProcessor struct {
	percentage float64
}

func NewContrastProcessor(percentage float64) *ContrastProcessor {
	return &ContrastProcessor{percentage: percentage}
}

func (p *ContrastProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, p.percentage), nil
}

// 锐化处理器
type SharpenProcessor struct {
	sigma float64
}

func NewSharpenProcessor(sigma float64) *SharpenProcessor {
	return &SharpenProcessor{sigma: sigma}
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, p.sigma), nil
}

// DefaultPreprocessors is the pipeline enabled by OCR_PREPROCESS.
func DefaultPreprocessors() []ImagePreprocessor {
	return []ImagePreprocessor{
		NewGrayscaleProcessor(),
		NewContrastProcessor(20),
		NewSharpenProcessor(0.5),
	}
}

// ApplyPreprocessing runs img through steps in order.
func ApplyPreprocessing(img image.Image, steps []ImagePreprocessor) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	result := img
	for _, step := range steps {
		var err error
		result, err = step.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed: %w", err)
		}
		if result == nil {
			return nil, fmt.Errorf("preprocessor returned nil image")
		}
	}
	return result, nil
}

type preprocessingEngine struct {
	Engine
	steps []ImagePreprocessor
}

// WithPreprocessing wraps e so every page passes through steps before recognition.
func WithPreprocessing(e Engine, steps ...ImagePreprocessor) Engine {
	if len(steps) == 0 {
		return e
	}
	return &preprocessingEngine{Engine: e, steps: steps}
}

func (p *preprocessingEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	processed, err := ApplyPreprocessing(img, p.steps)
	if err != nil {
		return "", err
	}
	return p.Engine.Recognize(ctx, processed)
}
