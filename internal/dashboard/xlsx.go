package dashboard

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/field-visits/internal/visit"
)

const (
	// XLSXFilename is the suggested download name for the XLSX export.
	XLSXFilename = "visits.xlsx"

	sheetName = "Visits"
)

var columnWidths = map[string]float64{
	"id":           38,
	"date":         18,
	"customerName": 28,
	"note":         48,
	"photoUrl":     40,
	"maps":         40,
}

// WriteXLSX writes the visits as a single-sheet workbook with a styled
// header row.
func WriteXLSX(w io.Writer, visits []*visit.Visit) error {
	f, err := buildWorkbook(visits)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func buildWorkbook(visits []*visit.Visit) (f *excelize.File, err error) {
	f = excelize.NewFile()
	defer func() {
		if err != nil {
			f.Close()
			f = nil
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{"1F4E78"},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	if err := writeHeader(f, sheetName, headerStyle); err != nil {
		return nil, err
	}

	r := 2
	for _, v := range visits {
		if v == nil {
			continue
		}
		if err := writeRow(f, sheetName, r, row(v)); err != nil {
			return nil, fmt.Errorf("writing visit %s: %w", v.ID, err)
		}
		r++
	}

	return f, nil
}

func writeHeader(f *excelize.File, sheet string, style int) error {
	if err := writeRow(f, sheet, 1, Columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, name := range Columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("styling header %s: %w", name, err)
		}

		width := 16.0
		if w, ok := columnWidths[name]; ok {
			width = w
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("sizing column %s: %w", name, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, r int, values []string) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, r)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return fmt.Errorf("setting %s: %w", cell, err)
		}
	}
	return nil
}
