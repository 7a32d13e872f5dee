package port

// TextEmbedder generates vector embeddings for text.
type TextEmbedder interface {
	// EmbedTexts generates one L2-normalized vector per input text.
	EmbedTexts(texts []string) ([][]float32, error)

	// Dimension returns the embedding vector dimension.
	Dimension() int

	// ModelName returns the name of the embedding model.
	ModelName() string
}

// ImageEmbedder generates vector embeddings for encoded images.
type ImageEmbedder interface {
	// EmbedImage generates an L2-normalized vector for one PNG or JPEG
	// encoded image.
	EmbedImage(data []byte) ([]float32, error)

	Dimension() int

	ModelName() string
}
