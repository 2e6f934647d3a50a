// Package extract reads raw spreadsheet exports into rows for the engine.
// It assigns each row a stable id at ingestion; nothing downstream ever
// reassigns it.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"cleanse/internal/engine"
	"cleanse/pkg/records"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Options configures CSV extraction. All fields are optional.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// HeaderMap maps source header names to canonical field names.
	HeaderMap map[string]string
}

// CSV reads all rows from r. The first line is the header; each data line
// becomes one engine.Row with a 1-based id in file order. Cells missing from
// a short line are nil; present-but-empty cells are empty strings, which the
// empty-row detector treats as blank.
//
// The reader is configured leniently (LazyQuotes, variable field counts) so
// real-world exports with unescaped quotes or ragged rows still parse.
func CSV(r io.Reader, opt Options) ([]engine.Row, []string, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	rawHeader, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("extract: read header: %w", err)
	}
	header := canonicalHeader(rawHeader, opt.HeaderMap)

	var rows []engine.Row
	var id int64
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("extract: read row: %w", err)
		}
		id++
		rec := make(records.Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(cells) {
				rec[name] = cells[i]
			} else {
				rec[name] = nil
			}
		}
		rows = append(rows, engine.Row{ID: id, Fields: rec})
	}
	return rows, header, nil
}

// CSVFile opens path and extracts it with CSV.
func CSVFile(path string, opt Options) ([]engine.Row, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("extract: open %s: %w", path, err)
	}
	defer f.Close()
	return CSV(f, opt)
}

// canonicalHeader trims, strips a leading BOM, and applies the header map.
func canonicalHeader(raw []string, headerMap map[string]string) []string {
	out := make([]string, len(raw))
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if headerMap != nil {
			if mapped, ok := headerMap[name]; ok && mapped != "" {
				name = mapped
			}
		}
		out[i] = name
	}
	return out
}
