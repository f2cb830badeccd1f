package dataset

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/accident-risk/internal/model"
)

// XLSXOptions selects the worksheet holding the incident table.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
}

// ReadXLSX reads incidents from a worksheet whose first row is the header.
func ReadXLSX(ctx context.Context, path string, opts XLSXOptions) ([]model.Incident, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.Errorf("xlsx: sheet %q is empty", sheet.Name)
	}

	header, err := canonicalHeader(rowToStrings(sheet.Rows[0]))
	if err != nil {
		return nil, err
	}

	incidents := make([]model.Incident, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "xlsx: context cancelled")
		}
		if row == nil || isBlankRow(row) {
			continue
		}

		var raw rawIncident
		for j, cell := range row.Cells {
			if j >= len(header) || header[j] == "" || cell == nil {
				continue
			}
			raw.set(header[j], cellValue(header[j], cell))
		}
		incidents = append(incidents, raw.toIncident(f.Date1904))
	}

	return incidents, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}

	if opts.SheetIndex < 0 || opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	return f.Sheets[opts.SheetIndex], nil
}

// cellValue returns the stored value for date and time columns, so Excel
// serials survive formatting, and the formatted string otherwise.
func cellValue(column string, cell *xlsx.Cell) string {
	if column == colDateCommitted || column == colTimeCommitted {
		return cell.Value
	}
	return cell.String()
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		if cell != nil {
			cells[j] = cell.String()
		}
	}
	return cells
}

func isBlankRow(row *xlsx.Row) bool {
	for _, cell := range row.Cells {
		if cell != nil && cell.Value != "" {
			return false
		}
	}
	return true
}
