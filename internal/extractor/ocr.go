package extractor

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/otiai10/gosseract/v2"
)

// ocrEngine rasterizes a single PDF page with pdftoppm and runs Tesseract
// on the image. Rasterization is delegated to the poppler binary; text
// recognition to the Tesseract bindings.
type ocrEngine struct {
	pdftoppm string
	logger   *log.Logger
}

func newOCREngine(pdftoppmPath string, logger *log.Logger) *ocrEngine {
	return &ocrEngine{pdftoppm: pdftoppmPath, logger: logger}
}

func (o *ocrEngine) PageText(ctx context.Context, pdfData []byte, page int) (string, error) {
	dir, err := os.MkdirTemp("", "podium-ocr-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	pdfPath := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(pdfPath, pdfData, 0o600); err != nil {
		return "", err
	}

	outPrefix := filepath.Join(dir, "page")
	cmd := exec.CommandContext(ctx, o.pdftoppm,
		"-f", fmt.Sprint(page),
		"-l", fmt.Sprint(page),
		"-r", "200",
		"-png",
		pdfPath, outPrefix,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, out)
	}

	imgPath, err := findRenderedPage(dir)
	if err != nil {
		return "", err
	}
	imgData, err := os.ReadFile(imgPath)
	if err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImageFromBytes(imgData); err != nil {
		return "", fmt.Errorf("tesseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

// pdftoppm zero-pads the page suffix depending on total page count, so
// glob instead of reconstructing the name.
func findRenderedPage(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "page*.png"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no rendered page image")
	}
	return matches[0], nil
}
