// Package parser holds the per-format extractors used by ingestion: plain
// text, docx, pdf (text, page images, optional OCR), standalone images and
// market CSV files.
package parser

import "os"

// ReadText reads a whole .txt or .md file as text.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
