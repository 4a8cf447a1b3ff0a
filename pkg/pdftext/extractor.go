package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
)

// DocumentReader loads raw document bytes by relative path.
type DocumentReader interface {
	Read(ctx context.Context, path string) ([]byte, error)
}

// Extractor pulls plain text out of stored PDF documents.
type Extractor struct {
	documents DocumentReader
	logger    zerolog.Logger
}

// NewExtractor constructs an extractor reading through the given document source.
func NewExtractor(documents DocumentReader, logger zerolog.Logger) *Extractor {
	return &Extractor{
		documents: documents,
		logger:    logger.With().Str("component", "pdf_extractor").Logger(),
	}
}

// Extract returns the plain text of the document at path. Any failure yields an empty string.
func (e *Extractor) Extract(ctx context.Context, path string) string {
	log := e.logger.With().Str("path", path).Logger()

	if strings.TrimSpace(path) == "" {
		log.Warn().Msg("no document path provided")
		return ""
	}

	content, err := e.documents.Read(ctx, path)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read document")
		return ""
	}

	text, err := parse(content)
	if err != nil {
		log.Warn().Err(err).Msg("failed to extract text from pdf")
		return ""
	}

	text = clean(text)
	if text == "" {
		log.Warn().Msg("no text content found in pdf")
	}

	return text
}

func parse(content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	if len(content) == 0 {
		return "", fmt.Errorf("empty document")
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var builder strings.Builder
	for index := 1; index <= reader.NumPage(); index++ {
		page := reader.Page(index)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		builder.WriteString(pageText)
		builder.WriteString("\n\n")
	}

	return builder.String(), nil
}

func clean(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
