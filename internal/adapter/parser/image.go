package parser

import (
	"bytes"
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"
)

// ReadImage reads a .png/.jpg/.jpeg file and verifies it decodes before the
// bytes are handed to the image embedding gateway. Undecodable files are
// rejected here so ingestion can log and skip them.
func ReadImage(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return data, nil
}
