package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

// textractAPI is the subset of the Textract client we call.
type textractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

// TextractEngine sends each page image to AWS Textract.
type TextractEngine struct {
	client        textractAPI
	minConfidence float32
	logger        logger.Logger
}

func NewTextractEngine(ctx context.Context, tc *cfg.TextractConfig, log logger.Logger) (*TextractEngine, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if tc.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(tc.Region))
	}
	if tc.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(tc.AccessKey, tc.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	client := textract.NewFromConfig(awsCfg, func(o *textract.Options) {
		if tc.Endpoint != "" {
			o.BaseEndpoint = aws.String(tc.Endpoint)
		}
	})

	return newTextractEngine(client, float32(tc.MinConfidence), log), nil
}

func newTextractEngine(client textractAPI, minConfidence float32, log logger.Logger) *TextractEngine {
	return &TextractEngine{
		client:        client,
		minConfidence: minConfidence,
		logger:        log.Named("textract"),
	}
}

func (e *TextractEngine) Name() string { return "textract" }

func (e *TextractEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: buf.Bytes()},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	lines := lineTexts(out.Blocks, e.minConfidence)
	e.logger.Debug("Textract page recognized",
		logger.Int("blocks", len(out.Blocks)),
		logger.Int("lines", len(lines)),
	)
	return strings.Join(lines, "\n"), nil
}

func (e *TextractEngine) Close() error {
	return nil
}

// lineTexts keeps LINE blocks at or above minConfidence, in response order.
func lineTexts(blocks []types.Block, minConfidence float32) []string {
	var texts []string
	for _, block := range blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < minConfidence {
			continue
		}
		texts = append(texts, *block.Text)
	}
	return texts
}
