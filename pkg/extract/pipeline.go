// Layered text extraction for uploaded documents. Stage order is fixed: OCR
// first (robust for scans), embedded text second (cheap), original caption
// last. Each stage swallows its own failure so a message is never emptied.
package extract

import (
	"context"
	"strings"

	"ai-docchat-be/internal/pkg/logger"
)

// OCRReader is the external OCR capability.
type OCRReader interface {
	PDF(ctx context.Context, data []byte) (string, error)
}

// TextReader is the external embedded-PDF-text capability.
type TextReader interface {
	Text(ctx context.Context, data []byte) (string, error)
}

type Pipeline struct {
	ocr    OCRReader
	reader TextReader
	logger logger.ILogger
}

func NewPipeline(ocr OCRReader, reader TextReader, log logger.ILogger) *Pipeline {
	return &Pipeline{
		ocr:    ocr,
		reader: reader,
		logger: log,
	}
}

// BuildMessageContent returns the text to persist for a message. The first
// stage returning non-empty text wins; with no document, or when every stage
// comes back empty, the caption is returned unchanged. It never errors.
func (p *Pipeline) BuildMessageContent(ctx context.Context, caption string, document []byte) string {
	if len(document) == 0 {
		return caption
	}

	if text := p.tryOCR(ctx, document); text != "" {
		return text
	}
	if text := p.tryEmbeddedText(ctx, document); text != "" {
		return text
	}

	return caption
}

func (p *Pipeline) tryOCR(ctx context.Context, document []byte) string {
	if p.ocr == nil {
		return ""
	}
	text, err := p.ocr.PDF(ctx, document)
	if err != nil {
		p.logger.Warn("Extract", "OCR stage failed, falling back", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return strings.TrimSpace(text)
}

func (p *Pipeline) tryEmbeddedText(ctx context.Context, document []byte) string {
	if p.reader == nil {
		return ""
	}
	text, err := p.reader.Text(ctx, document)
	if err != nil {
		p.logger.Warn("Extract", "Embedded text stage failed, falling back", map[string]interface{}{"error": err.Error()})
		return ""
	}
	return strings.TrimSpace(text)
}
