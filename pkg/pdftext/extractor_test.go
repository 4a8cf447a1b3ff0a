package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type memoryDocuments map[string][]byte

func (m memoryDocuments) Read(_ context.Context, path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, errors.New("document not found")
	}
	return content, nil
}

// onePagePDF renders a single page showing each line with the standard Helvetica font.
func onePagePDF(lines ...string) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 12 Tf 14 TL 72 720 Td")
	for i, line := range lines {
		if i > 0 {
			content.WriteString(" T*")
		}
		fmt.Fprintf(&content, " (%s) Tj", line)
	}
	content.WriteString(" ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
	}

	var doc bytes.Buffer
	doc.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, object := range objects {
		offsets[i] = doc.Len()
		fmt.Fprintf(&doc, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}

	xref := doc.Len()
	fmt.Fprintf(&doc, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, offset := range offsets {
		fmt.Fprintf(&doc, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&doc, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return doc.Bytes()
}

func TestExtractReturnsPageText(t *testing.T) {
	extractor := NewExtractor(memoryDocuments{
		"cv/ada.pdf": onePagePDF("Go developer", "Paris"),
	}, zerolog.Nop())

	require.Equal(t, "Go developer\nParis", extractor.Extract(context.Background(), "cv/ada.pdf"))
}

func TestExtractMissingDocumentReturnsEmpty(t *testing.T) {
	extractor := NewExtractor(memoryDocuments{}, zerolog.Nop())

	require.NotPanics(t, func() {
		require.Equal(t, "", extractor.Extract(context.Background(), "cv/missing.pdf"))
	})
}

func TestExtractEmptyPathReturnsEmpty(t *testing.T) {
	extractor := NewExtractor(memoryDocuments{}, zerolog.Nop())
	require.Equal(t, "", extractor.Extract(context.Background(), "  "))
}

func TestExtractUnparseableDocumentReturnsEmpty(t *testing.T) {
	extractor := NewExtractor(memoryDocuments{
		"cv/garbage.pdf":   []byte("this is not a pdf document"),
		"cv/truncated.pdf": []byte("%PDF-1.4\n1 0 obj\n<<"),
		"cv/empty.pdf":     {},
	}, zerolog.Nop())

	for _, path := range []string{"cv/garbage.pdf", "cv/truncated.pdf", "cv/empty.pdf"} {
		require.Equal(t, "", extractor.Extract(context.Background(), path), path)
	}
}

func TestCleanDropsBlankLines(t *testing.T) {
	require.Equal(t, "Go developer\nParis", clean("  Go developer \n\n\n Paris\n\n"))
	require.Equal(t, "", clean(" \n \n"))
}
