package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	dErrors "emargement/pkg/domain-errors"
)

const utf8BOM = "\ufeff"

// Decode reads a guest list spreadsheet into rows. The format follows the
// file extension: .xlsx (first sheet) or .csv (comma or semicolon separated).
// Any failure to read the file as a table is an import error; no rows are
// returned in that case.
func Decode(r io.Reader, filename string) ([]Row, error) {
	if r == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "guest list file is required")
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return decodeXLSX(r)
	case ".csv", ".txt":
		return decodeCSV(r)
	default:
		return nil, dErrors.New(dErrors.CodeImport, "unsupported guest list format: expected .xlsx or .csv")
	}
}

func decodeXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImport, "guest list is not a readable workbook")
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, dErrors.New(dErrors.CodeImport, "workbook has no sheet")
	}
	table, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImport, "could not read the first sheet")
	}
	return tableToRows(table)
}

func decodeCSV(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, dErrors.Wrap(err, dErrors.CodeImport, "could not read guest list")
	}

	cr := csv.NewReader(br)
	cr.Comma = sniffSeparator(head)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	table, err := cr.ReadAll()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeImport, "guest list is not valid CSV")
	}
	return tableToRows(table)
}

// sniffSeparator picks ';' when the header line has more semicolons than
// commas, which is what spreadsheet exports use in French locales.
func sniffSeparator(head []byte) rune {
	line := head
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		line = head[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

// tableToRows uses the first non-blank line as the header row. Blank lines
// are skipped and short lines are padded with empty cells.
func tableToRows(table [][]string) ([]Row, error) {
	start := -1
	for i, line := range table {
		if !blank(line) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, dErrors.New(dErrors.CodeImport, "guest list has no header row")
	}

	headers := make([]string, len(table[start]))
	for i, h := range table[start] {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	}

	rows := make([]Row, 0, len(table)-start-1)
	for _, line := range table[start+1:] {
		if blank(line) {
			continue
		}
		row := make(Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if _, dup := row[h]; dup {
				continue
			}
			cell := ""
			if i < len(line) {
				cell = line[i]
			}
			row[h] = cell
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(line []string) bool {
	for _, cell := range line {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
