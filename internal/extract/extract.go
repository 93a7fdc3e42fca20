// Package extract pulls plain text out of uploaded PDF documents.
package extract

import (
	"bytes"
	"context"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
)

// headerWindow is how far into the file the %PDF- marker may appear.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// PDFExtractor extracts text with MuPDF. It keeps no state between calls.
type PDFExtractor struct{}

func NewPDFExtractor() *PDFExtractor { return &PDFExtractor{} }

// Extract returns the text of every page joined by blank lines.
func (PDFExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.New(apperr.KindUnsupportedFormat, "Document is empty")
	}
	head := data
	if len(head) > headerWindow {
		head = head[:headerWindow]
	}
	if !bytes.Contains(head, pdfMagic) {
		return "", apperr.New(apperr.KindUnsupportedFormat, "Document is not a valid PDF")
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnsupportedFormat, err, "Failed to parse PDF")
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			return "", apperr.Wrap(apperr.KindUnsupportedFormat, err, "Failed to read PDF page %d", i+1)
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(text))
	}

	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", apperr.New(apperr.KindEmptyContent, "No text could be extracted from the PDF")
	}
	return out, nil
}
