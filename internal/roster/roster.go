package roster

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// OutputSheet is the sheet name of written workbooks.
	OutputSheet = "Data"
	// RemarkColumnWidth is applied to the remark column on write.
	RemarkColumnWidth = 60
)

var (
	ErrEmptyWorkbook  = errors.New("workbook has no header row")
	ErrColumnNotFound = errors.New("column not found")
	ErrSheetNotFound  = errors.New("sheet not found")
	ErrRowMismatch    = errors.New("remark count does not match row count")
)

// Roster is a header row plus data rows read from a spreadsheet. Every row is
// padded to the header width.
type Roster struct {
	Headers []string
	Rows    [][]string
}

type readOptions struct {
	sheet string
}

type ReadOption func(*readOptions)

// WithSheet reads a named sheet instead of the first one.
func WithSheet(name string) ReadOption {
	return func(o *readOptions) { o.sheet = name }
}

// Read loads an .xlsx workbook. Cell values are read raw so numeric scores are
// not affected by display formats.
func Read(r io.Reader, opts ...ReadOption) (*Roster, error) {
	o := &readOptions{}
	for _, opt := range opts {
		opt(o)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := o.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyWorkbook
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	// Cells right of the last header are kept under blank headers.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	headers := make([]string, width)
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	out := &Roster{Headers: headers}
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		padded := make([]string, width)
		copy(padded, row)
		out.Rows = append(out.Rows, padded)
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ColumnIndex finds a header by exact name, then case-insensitively.
func (r *Roster) ColumnIndex(name string) (int, error) {
	name = strings.TrimSpace(name)
	for i, h := range r.Headers {
		if h == name {
			return i, nil
		}
	}
	for i, h := range r.Headers {
		if strings.EqualFold(h, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Scores returns the raw values of a column, one per row.
func (r *Roster) Scores(column string) ([]any, error) {
	idx, err := r.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Write saves the roster with remarks in the named column. An existing column
// of that name is overwritten, otherwise the column is appended.
func Write(w io.Writer, r *Roster, column string, remarks []string) error {
	if len(remarks) != len(r.Rows) {
		return fmt.Errorf("%w: %d remarks for %d rows", ErrRowMismatch, len(remarks), len(r.Rows))
	}

	headers := append([]string(nil), r.Headers...)
	col, err := r.ColumnIndex(column)
	if err != nil {
		col = len(headers)
		headers = append(headers, column)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), OutputSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, headers); err != nil {
		return err
	}
	for i, row := range r.Rows {
		out := make([]string, len(headers))
		copy(out, row)
		out[col] = remarks[i]
		if err := setRow(f, i+2, out); err != nil {
			return err
		}
	}

	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	if err := f.SetColWidth(OutputSheet, name, name, RemarkColumnWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = cellValue(v)
	}
	if err := f.SetSheetRow(OutputSheet, cell, &vals); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

// cellValue keeps numbers numeric when the text is their canonical form.
func cellValue(v string) any {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || strconv.FormatFloat(f, 'f', -1, 64) != v {
		return v
	}
	return f
}
