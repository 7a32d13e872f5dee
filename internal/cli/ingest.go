package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"visionrag/internal/adapter/chunker"
	"visionrag/internal/adapter/fs"
	"visionrag/internal/adapter/parser"
	"visionrag/internal/adapter/store"
	"visionrag/internal/usecase"
)

var (
	ingestDocs    string
	ingestRebuild bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector store from a document directory",
	Long: `Scan a directory tree of mixed-format documents (txt/md, docx, pdf,
png/jpg, market csv), embed their content and persist the text and image
indices with aligned metadata under the configured storage directory.

Examples:
  visionrag ingest --docs data/docs
  visionrag ingest --docs data/docs --rebuild`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringVar(&ingestDocs, "docs", "data/docs", "directory to ingest")
	ingestCmd.Flags().BoolVar(&ingestRebuild, "rebuild", false, "clear the storage directory before ingesting")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	docsDir, err := filepath.Abs(ingestDocs)
	if err != nil {
		return fmt.Errorf("invalid docs path: %w", err)
	}
	info, err := os.Stat(docsDir)
	if err != nil {
		return fmt.Errorf("docs path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("docs path is not a directory: %s", docsDir)
	}

	vectorDir := cfg.Storage.VectorDir
	if ingestRebuild {
		if err := os.RemoveAll(vectorDir); err != nil {
			return fmt.Errorf("failed to clear storage directory: %w", err)
		}
	}
	if err := os.MkdirAll(vectorDir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	textEmb, closeCache, err := newTextEmbedder(cfg, true)
	if err != nil {
		return err
	}
	if closeCache != nil {
		defer closeCache()
	}
	imageEmb, err := newImageEmbedder(cfg)
	if err != nil {
		return err
	}

	runner := parser.NewExecRunner()
	pdf := parser.NewPDFExtractor(runner)
	var ocr *parser.OCRExtractor
	if cfg.OCR.Enabled {
		ocr = parser.NewOCRExtractor(runner, cfg.OCR.Lang)
	}

	st := store.New(cfg.Embed.DimText, cfg.Embed.DimImage)
	ingestUC := usecase.NewIngestUseCase(
		fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes),
		chunker.New(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		textEmb,
		imageEmb,
		pdf,
		ocr,
		parser.NewMarketCSVParser(cfg.Ingest.CSVBlockRows),
		st,
	)

	fmt.Printf("Scanning %s...\n", docsDir)

	var bar *progressbar.ProgressBar
	progress := func(processed, total int, currentFile string) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(processed)
	}

	result, err := ingestUC.Run(cmd.Context(), docsDir, progress)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if err := st.Save(vectorDir); err != nil {
		return fmt.Errorf("failed to persist store: %w", err)
	}

	fmt.Printf("\nIngestion complete (run %s):\n", result.RunID)
	fmt.Printf("  Files indexed:  %d\n", result.FilesIndexed)
	fmt.Printf("  Files skipped:  %d (unsupported format)\n", result.FilesSkipped)
	fmt.Printf("  Text vectors:   %d\n", result.TextVectors)
	fmt.Printf("  Image vectors:  %d\n", result.ImageVectors)

	if len(result.Errors) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, e := range result.Errors {
			fmt.Printf("  - %s: %s\n", e.File, e.Reason)
		}
	}

	fmt.Printf("\nIndex stored at: %s\n", vectorDir)
	return nil
}
