package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"visionrag/internal/port"
)

// PDFExtractor extracts per-page text and renders page images by shelling out
// to the poppler tools (pdfinfo, pdftotext, pdftoppm). The tools are external
// collaborators; the runner indirection keeps them testable.
type PDFExtractor struct {
	runner port.CommandRunner
}

func NewPDFExtractor(runner port.CommandRunner) *PDFExtractor {
	return &PDFExtractor{runner: runner}
}

// PageCount reads the page count via pdfinfo.
func (p *PDFExtractor) PageCount(ctx context.Context, path string) (int, error) {
	out, err := p.runner.Run(ctx, nil, "pdfinfo", path)
	if err != nil {
		return 0, err
	}

	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("unparseable page count %q: %w", line, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no page count in pdfinfo output")
}

// PageText extracts the text of one 1-based page via pdftotext.
func (p *PDFExtractor) PageText(ctx context.Context, path string, page int) (string, error) {
	n := strconv.Itoa(page)
	out, err := p.runner.Run(ctx, nil, "pdftotext", "-f", n, "-l", n, path, "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// PageImage renders one 1-based page to PNG bytes via pdftoppm.
func (p *PDFExtractor) PageImage(ctx context.Context, path string, page int) ([]byte, error) {
	n := strconv.Itoa(page)
	return p.runner.Run(ctx, nil, "pdftoppm", "-png", "-r", "150", "-f", n, "-l", n, path)
}

// OCRExtractor recognizes text in a rendered page image via tesseract. OCR is
// an optional fallback for scanned PDFs whose pages carry no extractable text.
type OCRExtractor struct {
	runner port.CommandRunner
	lang   string
}

func NewOCRExtractor(runner port.CommandRunner, lang string) *OCRExtractor {
	if lang == "" {
		lang = "eng"
	}
	return &OCRExtractor{runner: runner, lang: lang}
}

func (o *OCRExtractor) Lang() string { return o.lang }

// Text runs OCR over PNG image bytes.
func (o *OCRExtractor) Text(ctx context.Context, image []byte) (string, error) {
	out, err := o.runner.Run(ctx, image, "tesseract", "stdin", "stdout", "-l", o.lang)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
