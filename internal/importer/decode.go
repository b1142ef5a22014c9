package importer

// decode.go turns an uploaded byte blob into an ordered sequence of rows.
//
// Three formats are supported: comma-delimited text (with legacy encoding
// fallback), legacy binary XLS workbooks, and XLSX workbooks. All three
// produce the same shape: a header row mapped over every data row, cells
// stringified, source order preserved.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// FileType is the declared format of an uploaded file.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLS  FileType = "xls"
	FileTypeXLSX FileType = "xlsx"
)

// RawRow maps a column header to its raw string cell value. Rows are
// immutable once produced; duplicate headers resolve to the last column.
type RawRow map[string]string

// Decode parses blob according to the declared file type. It returns the
// data rows in source order, or a DecodeError when the file cannot be read.
func Decode(blob []byte, ft FileType) ([]RawRow, error) {
	switch ft {
	case FileTypeCSV:
		return decodeCSV(blob)
	case FileTypeXLS:
		return decodeXLS(blob)
	case FileTypeXLSX:
		return decodeXLSX(blob)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ft)
	}
}

// FileTypeForName infers the file type from a filename extension. The
// second return value is false when the extension is not recognized.
func FileTypeForName(name string) (FileType, bool) {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] != '.' {
			continue
		}
		switch name[i+1:] {
		case "csv", "CSV":
			return FileTypeCSV, true
		case "xls", "XLS":
			return FileTypeXLS, true
		case "xlsx", "XLSX":
			return FileTypeXLSX, true
		}
		return "", false
	}
	return "", false
}

// csvDecoders are tried in order until one decodes the blob without error.
type csvDecoder struct {
	name   string
	decode func([]byte) (string, error)
}

var csvDecoders = []csvDecoder{
	{"utf-8", func(b []byte) (string, error) {
		if !utf8.Valid(b) {
			return "", fmt.Errorf("invalid UTF-8")
		}
		return string(b), nil
	}},
	{"iso-8859-1", func(b []byte) (string, error) {
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
		return string(out), err
	}},
	{"windows-1252", func(b []byte) (string, error) {
		out, err := charmap.Windows1252.NewDecoder().Bytes(b)
		return string(out), err
	}},
}

func decodeCSV(blob []byte) ([]RawRow, error) {
	var text string
	decoded := false
	for _, d := range csvDecoders {
		if out, err := d.decode(blob); err == nil {
			text = out
			decoded = true
			break
		}
	}
	if !decoded {
		return nil, &DecodeError{Reason: "no supported text encoding decodes the file"}
	}

	r := csv.NewReader(bytes.NewReader([]byte(text)))
	r.Comma = ','
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, &DecodeError{Reason: "malformed delimited text", Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	return mapRows(records[0], records[1:]), nil
}

func decodeXLS(blob []byte) ([]RawRow, error) {
	wb, err := xls.OpenReader(bytes.NewReader(blob), "utf-8")
	if err != nil {
		return nil, &DecodeError{Reason: "reading XLS file", Err: err}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &DecodeError{Reason: "XLS file has no sheets"}
	}

	var records [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			records = append(records, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		records = append(records, cells)
	}

	if len(records) == 0 {
		return nil, nil
	}
	return mapRows(records[0], records[1:]), nil
}

func decodeXLSX(blob []byte) ([]RawRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(blob))
	if err != nil {
		return nil, &DecodeError{Reason: "reading XLSX file", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Reason: "XLSX file has no sheets"}
	}

	// First sheet only; GetRows stringifies cells, rendering integral
	// floats without a fractional part and absent cells as empty strings.
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Reason: "reading XLSX sheet", Err: err}
	}

	if len(records) == 0 {
		return nil, nil
	}
	return mapRows(records[0], records[1:]), nil
}

// mapRows zips each data row with the header row. Missing trailing cells
// become empty strings; cells beyond the header are dropped. When two
// columns share a header, the rightmost column wins.
func mapRows(header []string, data [][]string) []RawRow {
	rows := make([]RawRow, 0, len(data))
	for _, cells := range data {
		row := make(RawRow, len(header))
		for i, h := range header {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
