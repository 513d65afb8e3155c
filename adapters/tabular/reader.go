// Package tabular turns uploaded delimited text and spreadsheet files into tables.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statdash/domain/core"
	"statdash/domain/table"
	"statdash/internal"

	"github.com/xuri/excelize/v2"
)

// Supported input formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Options controls how an input file is decoded
type Options struct {
	Name      string
	Encoding  string // "utf-8" (default) or "latin-1"
	Delimiter rune   // 0 sniffs the delimiter from the header line
	Format    string // "csv" (default) or "xlsx"
	MaxRows   int    // 0 means unlimited
}

var candidateDelimiters = []rune{',', ';', '\t', '|'}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses r into a table. On any error no table is returned.
func Read(r io.Reader, opts Options) (*table.Table, error) {
	start := time.Now()
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = FormatCSV
	}

	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readDelimited(r, opts)
	case FormatXLSX:
		rows, err = readWorkbook(r)
	default:
		return nil, core.NewParseError(0, fmt.Sprintf("unsupported format %q", opts.Format), nil)
	}
	if err != nil {
		return nil, err
	}

	t, err := build(opts.Name, rows, opts.MaxRows)
	if err != nil {
		return nil, err
	}

	internal.DefaultLogger.Debug("[Tabular] %s parsed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(format), float64(time.Since(start).Nanoseconds())/1e6, len(t.Columns), t.Rows())
	return t, nil
}

// ReadFile opens path and reads it, choosing xlsx by extension when no format is given
func ReadFile(path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if opts.Format == "" {
		opts.Format = FormatForName(path)
	}
	if opts.Name == "" {
		opts.Name = filepath.Base(path)
	}
	return Read(f, opts)
}

// FormatForName guesses the input format from a file name
func FormatForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

func readDelimited(r io.Reader, opts Options) ([][]string, error) {
	decoded, err := decoder(opts.Encoding, r)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(decoded)
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	delim := opts.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(br)
	}

	reader := csv.NewReader(br)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, core.NewParseError(perr.Line, "malformed delimited text", perr.Err)
			}
			return nil, core.NewParseError(0, "could not read input", err)
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// sniffDelimiter picks the candidate that occurs most often in the first line
func sniffDelimiter(br *bufio.Reader) rune {
	peek, _ := br.Peek(4096)
	line := string(peek)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}

	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if n := strings.Count(line, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewParseError(0, "failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewParseError(0, "workbook has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewParseError(0, fmt.Sprintf("failed to read sheet %s", sheets[0]), err)
	}

	// excelize trims trailing empty cells; restore rectangular rows against the header
	if len(rows) > 0 {
		width := len(rows[0])
		for i := 1; i < len(rows); i++ {
			for len(rows[i]) < width {
				rows[i] = append(rows[i], "")
			}
		}
	}
	return rows, nil
}

func build(name string, rows [][]string, maxRows int) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, core.NewParseError(0, "input is empty", nil)
	}

	header := make([]string, len(rows[0]))
	seen := make(map[string]int, len(header))
	for j, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, core.NewParseError(1, fmt.Sprintf("header column %d has no name", j+1), nil)
		}
		if prev, dup := seen[h]; dup {
			return nil, core.NewParseError(1, fmt.Sprintf("duplicate column name %q (columns %d and %d)", h, prev+1, j+1), nil)
		}
		seen[h] = j
		header[j] = h
	}

	records := rows[1:]
	// blank trailing rows of full width are not data rows; short ones fail below
	for len(records) > 0 && len(records[len(records)-1]) == len(header) && isBlank(records[len(records)-1]) {
		records = records[:len(records)-1]
	}
	if len(records) == 0 {
		return nil, core.NewParseError(0, "no data rows after the header", nil)
	}
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, core.NewParseError(i+2,
				fmt.Sprintf("expected %d fields, found %d", len(header), len(rec)), nil)
		}
		for j := range rec {
			rec[j] = strings.TrimSpace(rec[j])
		}
	}
	if maxRows > 0 && len(records) > maxRows {
		return nil, core.NewParseError(0, fmt.Sprintf("input has %d rows, limit is %d", len(records), maxRows), nil)
	}

	return table.New(name, header, records), nil
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
