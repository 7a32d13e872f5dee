package parser

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultCSVBlockRows is the fixed number of consecutive rows embedded as one
// chunk. A design constant, not derived from content.
const DefaultCSVBlockRows = 30

// MarketBlock is one embeddable block of serialized market rows.
type MarketBlock struct {
	// Text is the newline-joined row serialization of the block.
	Text string
	// SourceSet is the sorted distinct provenance tags seen in the block.
	SourceSet []string
}

// MarketCSVParser normalizes market time-series CSV files (CoinGecko,
// Binance, merged) into fixed blocks of row lines with provenance metadata.
type MarketCSVParser struct {
	blockRows int
}

func NewMarketCSVParser(blockRows int) *MarketCSVParser {
	if blockRows <= 0 {
		blockRows = DefaultCSVBlockRows
	}
	return &MarketCSVParser{blockRows: blockRows}
}

// OriginDir returns the name of the immediate parent directory of a CSV
// source, used to infer default provenance.
func OriginDir(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// DefaultSource maps an origin directory to its provenance tag.
func DefaultSource(originDir string) string {
	switch originDir {
	case "markets":
		return "coingecko"
	case "markets_binance":
		return "binance"
	default:
		return "mixed"
	}
}

// Parse reads the CSV, normalizes column names to lowercase, synthesizes the
// required columns (date, price, market_cap, total_volume) as empty when
// absent, and groups the serialized rows into fixed blocks.
func (p *MarketCSVParser) Parse(path string) ([]MarketBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	defaultSource := DefaultSource(OriginDir(path))
	_, hasSourceCol := cols["source"]

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var lines []string
	var sources []string
	for _, row := range records[1:] {
		src := defaultSource
		if hasSourceCol {
			if v := field(row, "source"); v != "" {
				src = v
			}
		}
		line := fmt.Sprintf("%s on %s: price=%s, market_cap=%s, volume=%s (src=%s)",
			stem,
			field(row, "date"),
			field(row, "price"),
			field(row, "market_cap"),
			field(row, "total_volume"),
			src)
		lines = append(lines, line)
		sources = append(sources, src)
	}

	var blocks []MarketBlock
	for i := 0; i < len(lines); i += p.blockRows {
		end := i + p.blockRows
		if end > len(lines) {
			end = len(lines)
		}
		blocks = append(blocks, MarketBlock{
			Text:      strings.Join(lines[i:end], "\n"),
			SourceSet: distinctSorted(sources[i:end]),
		})
	}
	return blocks, nil
}

func distinctSorted(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var out []string
	for _, t := range tags {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
