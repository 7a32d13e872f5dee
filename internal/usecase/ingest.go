package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"visionrag/internal/adapter/chunker"
	"visionrag/internal/adapter/fs"
	"visionrag/internal/adapter/parser"
	"visionrag/internal/adapter/store"
	"visionrag/internal/domain"
	"visionrag/internal/logger"
	"visionrag/internal/port"
)

// IngestUseCase walks a document source, dispatches per file-type parsers,
// chunks text, calls the embedding gateway and appends vectors plus metadata
// into the store. Ingestion is best-effort: a bad file or page is recorded
// and skipped, never aborting the run.
type IngestUseCase struct {
	walker   *fs.Walker
	chunker  *chunker.WordChunker
	textEmb  port.TextEmbedder
	imageEmb port.ImageEmbedder
	pdf      *parser.PDFExtractor
	ocr      *parser.OCRExtractor // nil when OCR is disabled
	csv      *parser.MarketCSVParser
	store    *store.DualStore
}

func NewIngestUseCase(
	walker *fs.Walker,
	chk *chunker.WordChunker,
	textEmb port.TextEmbedder,
	imageEmb port.ImageEmbedder,
	pdf *parser.PDFExtractor,
	ocr *parser.OCRExtractor,
	csv *parser.MarketCSVParser,
	st *store.DualStore,
) *IngestUseCase {
	return &IngestUseCase{
		walker:   walker,
		chunker:  chk,
		textEmb:  textEmb,
		imageEmb: imageEmb,
		pdf:      pdf,
		ocr:      ocr,
		csv:      csv,
		store:    st,
	}
}

// FileError records one skipped file or page.
type FileError struct {
	File   string
	Reason string
}

// IngestResult is the structured end-of-run report.
type IngestResult struct {
	RunID        string
	FilesIndexed int
	FilesSkipped int
	TextVectors  int
	ImageVectors int
	Errors       []FileError
}

// ProgressFunc reports ingestion progress to the caller.
type ProgressFunc func(processed, total int, currentFile string)

// Run ingests every discoverable file under docsDir. The returned error only
// covers failures of the run itself (unreadable root); per-file failures land
// in the result's error list.
func (u *IngestUseCase) Run(ctx context.Context, docsDir string, progress ProgressFunc) (*IngestResult, error) {
	files, err := u.walker.Walk(docsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", docsDir, err)
	}

	result := &IngestResult{RunID: uuid.New().String()}

	for i, path := range files {
		if progress != nil {
			progress(i, len(files), path)
		}

		name := filepath.Base(path)
		var fileErr error

		switch strings.ToLower(filepath.Ext(path)) {
		case ".txt", ".md":
			fileErr = u.ingestText(path, domain.SourceText)
		case ".docx":
			fileErr = u.ingestDocx(path)
		case ".pdf":
			fileErr = u.ingestPDF(ctx, path, result)
		case ".png", ".jpg", ".jpeg":
			fileErr = u.ingestImage(path)
		case ".csv":
			fileErr = u.ingestCSV(path)
		default:
			result.FilesSkipped++
			continue
		}

		if fileErr != nil {
			logger.Warn("ingest failed for %s: %v", name, fileErr)
			result.Errors = append(result.Errors, FileError{File: name, Reason: fileErr.Error()})
			continue
		}
		result.FilesIndexed++
	}
	if progress != nil {
		progress(len(files), len(files), "")
	}

	result.TextVectors = u.store.TextCount()
	result.ImageVectors = u.store.ImageCount()
	return result, nil
}

// ingestText handles whole-file text sources (.txt, .md and extracted docx).
func (u *IngestUseCase) ingestText(path string, kind domain.SourceType) error {
	text, err := parser.ReadText(path)
	if err != nil {
		return err
	}
	return u.addChunks(text, domain.Metadata{Type: kind, File: filepath.Base(path)})
}

func (u *IngestUseCase) ingestDocx(path string) error {
	text, err := parser.ExtractDocx(path)
	if err != nil {
		return err
	}
	return u.addChunks(text, domain.Metadata{Type: domain.SourceDocx, File: filepath.Base(path)})
}

// ingestPDF indexes a PDF three ways: per-page extracted text, per-page
// rendered images, and (when enabled) per-page OCR text. Page-level failures
// are recorded and the remaining pages still go in.
func (u *IngestUseCase) ingestPDF(ctx context.Context, path string, result *IngestResult) error {
	name := filepath.Base(path)

	pages, err := u.pdf.PageCount(ctx, path)
	if err != nil {
		return err
	}

	for page := 1; page <= pages; page++ {
		text, err := u.pdf.PageText(ctx, path, page)
		if err != nil {
			u.pageWarn(result, name, page, "text extraction", err)
		} else if strings.TrimSpace(text) != "" {
			meta := domain.Metadata{Type: domain.SourcePDFText, File: name, Page: page}
			if err := u.addChunks(text, meta); err != nil {
				u.pageWarn(result, name, page, "text embedding", err)
			}
		}

		image, err := u.pdf.PageImage(ctx, path, page)
		if err != nil {
			u.pageWarn(result, name, page, "page render", err)
			continue
		}

		vec, err := u.imageEmb.EmbedImage(image)
		if err != nil {
			u.pageWarn(result, name, page, "image embedding", err)
		} else {
			meta := domain.Metadata{Type: domain.SourcePDFImage, File: name, Page: page}
			if err := u.store.AddImage(vec, meta); err != nil {
				return err
			}
		}

		if u.ocr == nil {
			continue
		}
		ocrText, err := u.ocr.Text(ctx, image)
		if err != nil {
			u.pageWarn(result, name, page, "ocr", err)
			continue
		}
		meta := domain.Metadata{Type: domain.SourcePDFOCR, File: name, Page: page, Lang: u.ocr.Lang()}
		if err := u.addChunks(ocrText, meta); err != nil {
			u.pageWarn(result, name, page, "ocr embedding", err)
		}
	}
	return nil
}

func (u *IngestUseCase) ingestImage(path string) error {
	data, err := parser.ReadImage(path)
	if err != nil {
		return err
	}
	vec, err := u.imageEmb.EmbedImage(data)
	if err != nil {
		return err
	}
	return u.store.AddImage(vec, domain.Metadata{Type: domain.SourceImage, File: filepath.Base(path)})
}

func (u *IngestUseCase) ingestCSV(path string) error {
	blocks, err := u.csv.Parse(path)
	if err != nil {
		return err
	}
	if len(blocks) == 0 {
		return nil
	}

	texts := make([]string, len(blocks))
	for i, b := range blocks {
		texts[i] = b.Text
	}
	vecs, err := u.textEmb.EmbedTexts(texts)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	originDir := parser.OriginDir(path)
	for i, vec := range vecs {
		meta := domain.Metadata{
			Type:      domain.SourceCSV,
			File:      name,
			SourceSet: blocks[i].SourceSet,
			OriginDir: originDir,
		}
		if err := u.store.AddText(vec, meta); err != nil {
			return err
		}
	}
	return nil
}

// addChunks chunks text, embeds each chunk and appends the vectors with
// copies of the metadata template.
func (u *IngestUseCase) addChunks(text string, meta domain.Metadata) error {
	chunks := u.chunker.Chunk(text)
	if len(chunks) == 0 {
		return nil
	}
	vecs, err := u.textEmb.EmbedTexts(chunks)
	if err != nil {
		return err
	}
	for _, vec := range vecs {
		if err := u.store.AddText(vec, meta); err != nil {
			return err
		}
	}
	return nil
}

func (u *IngestUseCase) pageWarn(result *IngestResult, file string, page int, stage string, err error) {
	logger.Warn("%s failed (%s p.%d): %v", stage, file, page, err)
	result.Errors = append(result.Errors, FileError{
		File:   fmt.Sprintf("%s p.%d", file, page),
		Reason: fmt.Sprintf("%s: %v", stage, err),
	})
}
