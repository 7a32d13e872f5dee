package domain

// SourceType tags where an indexed vector came from.
type SourceType string

const (
	SourceText     SourceType = "text"
	SourceDocx     SourceType = "docx"
	SourcePDFText  SourceType = "pdf_text"
	SourcePDFImage SourceType = "pdf_image"
	SourcePDFOCR   SourceType = "pdf_ocr"
	SourceImage    SourceType = "image"
	SourceCSV      SourceType = "csv"
)

// Metadata describes the provenance of a single stored vector. The record at
// position i of a metadata sequence describes the vector at position i of the
// paired index; there is no separate record identifier.
type Metadata struct {
	Type SourceType `json:"type"`
	File string     `json:"file"`
	// Page is the 1-based page number, set only for paginated sources.
	Page int `json:"page,omitempty"`
	// Lang is the OCR language code, set only for OCR-derived text.
	Lang string `json:"lang,omitempty"`
	// SourceSet holds the sorted distinct market provenance tags seen
	// within one CSV block (coingecko, binance, mixed).
	SourceSet []string `json:"source_set,omitempty"`
	// OriginDir is the immediate parent directory of a CSV source.
	OriginDir string `json:"origin_dir,omitempty"`
}

// Hit is one retrieval result: a cosine similarity in [-1, 1] plus the
// metadata of the matched vector.
type Hit struct {
	Score float64  `json:"score"`
	Meta  Metadata `json:"meta"`
}

type TaskType string

const (
	TaskTextQA     TaskType = "text_qa"
	TaskVisionQA   TaskType = "vision_qa"
	TaskTableToCSV TaskType = "table_to_csv"
	TaskCalc       TaskType = "calc"
)

// Plan is the router's classification of a question: a task type plus a
// descriptive ordered step plan returned to the caller.
type Plan struct {
	Task  TaskType `json:"task"`
	Steps []string `json:"steps"`
}

// Response is the answer envelope returned by Ask. It is always well-formed:
// failure paths carry an explanatory Answer and an empty hit list.
type Response struct {
	Plan   Plan   `json:"plan"`
	Hits   []Hit  `json:"hits"`
	Answer string `json:"answer"`
}
