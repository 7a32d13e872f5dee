package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"visionrag/config"
	"visionrag/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "visionrag",
	Short: "Vision-RAG - index mixed-format documents and answer questions over them",
	Long: `visionrag ingests heterogeneous documents (txt/md, docx, pdf, images,
market CSV time series) into a dual-modality vector store and answers
natural-language questions by routing them to a task type and retrieving the
most relevant stored content.

Example usage:
  visionrag ingest --docs data/docs    # Build the vector store
  visionrag ask -q "ETH price trend"   # Query it`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		// Embedding API keys live in the environment; .env files are a
		// convenience for local runs.
		for _, env := range []string{".env.local", ".env"} {
			if _, statErr := os.Stat(env); statErr == nil {
				_ = godotenv.Load(env)
				break
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger.SetVerbose(verbose || cfg.Logging.Verbose)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./visionrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}
