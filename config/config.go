package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"visionrag/internal/router"
)

// Config holds all configuration for the visionrag tool.
type Config struct {
	Embed     EmbedConfig     `yaml:"embed"`
	OCR       OCRConfig       `yaml:"ocr"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Storage   StorageConfig   `yaml:"storage"`
	Router    RouterConfig    `yaml:"router"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbedConfig describes the external embedding models. The models themselves
// are black boxes reached over an OpenAI-compatible HTTP API.
type EmbedConfig struct {
	Provider   string `yaml:"provider"` // "openai", "mock"
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`
	DimText    int    `yaml:"dim_text"`
	DimImage   int    `yaml:"dim_image"`
	BaseURL    string `yaml:"base_url"`
	APIKeyEnv  string `yaml:"api_key_env"` // Environment variable for API key
	BatchSize  int    `yaml:"batch_size"`
	// CacheEnabled memoizes text embeddings in a bbolt file under the
	// storage directory, so re-ingesting unchanged chunks skips the API.
	CacheEnabled bool `yaml:"cache_enabled"`
}

// OCRConfig controls the optional OCR fallback for scanned PDFs.
type OCRConfig struct {
	Enabled bool   `yaml:"enabled"`
	Lang    string `yaml:"lang"`
}

// RetrievalConfig holds query-time settings.
type RetrievalConfig struct {
	TopKText  int `yaml:"top_k_text"`
	TopKImage int `yaml:"top_k_image"`
}

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	CSVBlockRows int      `yaml:"csv_block_rows"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
}

// StorageConfig holds the persisted store location.
type StorageConfig struct {
	VectorDir string `yaml:"vector_dir"`
}

// RouterConfig optionally overrides the built-in routing rules.
type RouterConfig struct {
	Rules []router.Rule `yaml:"rules"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Embed: EmbedConfig{
			Provider:     "openai",
			TextModel:    "sentence-transformers/all-MiniLM-L6-v2",
			ImageModel:   "clip-ViT-B-32",
			DimText:      384,
			DimImage:     512,
			BaseURL:      "http://localhost:8080/v1",
			APIKeyEnv:    "VISIONRAG_API_KEY",
			BatchSize:    100,
			CacheEnabled: true,
		},
		OCR: OCRConfig{
			Enabled: false,
			Lang:    "eng",
		},
		Retrieval: RetrievalConfig{
			TopKText:  5,
			TopKImage: 4,
		},
		Ingest: IngestConfig{
			ChunkSize:    600,
			ChunkOverlap: 80,
			CSVBlockRows: 30,
			Includes:     []string{"**/*"},
			Excludes:     []string{"**/.git/**", "**/embeddings/**"},
		},
		Storage: StorageConfig{
			VectorDir: "data/embeddings",
		},
		Logging: LoggingConfig{
			Verbose: false,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for visionrag.yaml,
// then configs/settings.yaml).
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"visionrag.yaml", filepath.Join("configs", "settings.yaml")} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// EmbedCachePath returns the path of the embedding cache database inside the
// storage directory.
func (c *Config) EmbedCachePath() string {
	return filepath.Join(c.Storage.VectorDir, "embed_cache.db")
}
