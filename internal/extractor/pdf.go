package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"podium/internal/config"
	"podium/internal/infrastructure/storage"

	"github.com/ledongthuc/pdf"
)

// minPageChars is the threshold below which a page is treated as scanned
// and handed to OCR.
const minPageChars = 100

// PDFExtractor pulls an uploaded PDF out of the object store and extracts
// its embedded text page by page. Pages without extractable text fall back
// to OCR when an engine is configured.
type PDFExtractor struct {
	store  *storage.Store
	ocr    *ocrEngine
	logger *log.Logger
}

func NewPDFExtractor(store *storage.Store, cfg config.ExtractorConfig, logger *log.Logger) *PDFExtractor {
	e := &PDFExtractor{store: store, logger: logger}
	if cfg.OCREnabled {
		e.ocr = newOCREngine(cfg.PdftoppmPath, logger)
	}
	return e
}

func (e *PDFExtractor) Extract(ctx context.Context, key string) Result {
	rc, err := e.store.Download(ctx, key)
	if err != nil {
		return Errored(fmt.Errorf("download %s: %w", key, err))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return Errored(fmt.Errorf("read %s: %w", key, err))
	}

	text, err := e.extractText(ctx, data)
	if err != nil {
		return Errored(err)
	}
	return OK(CleanText(text))
}

func (e *PDFExtractor) extractText(ctx context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		pageText := e.pageText(reader, i)
		if len(strings.TrimSpace(pageText)) < minPageChars && e.ocr != nil {
			ocrText, err := e.ocr.PageText(ctx, data, i)
			if err != nil {
				if e.logger != nil {
					e.logger.Printf("ocr page %d failed: %v", i, err)
				}
			} else if len(strings.TrimSpace(ocrText)) > len(strings.TrimSpace(pageText)) {
				pageText = ocrText
			}
		}

		if strings.TrimSpace(pageText) != "" {
			sb.WriteString(pageText)
			sb.WriteString("\n\n")
		}
	}

	return sb.String(), nil
}

func (e *PDFExtractor) pageText(reader *pdf.Reader, pageNum int) string {
	defer func() {
		// The pdf package panics on some malformed content streams;
		// treat those pages as empty rather than killing the request.
		_ = recover()
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// IsPDF sniffs the PDF magic bytes. Uploads are validated with this before
// anything is written to the bucket.
func IsPDF(data []byte) bool {
	return len(data) >= 5 && bytes.HasPrefix(data, []byte("%PDF-"))
}
