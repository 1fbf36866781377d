// Package excel renders built report sheets into an XLSX workbook, with
// a plain-text fallback for when workbook generation fails.
package excel

import (
	"fmt"
	"strings"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/report"
)

const (
	minColWidth = 10
	maxColWidth = 50
)

// Render produces an XLSX workbook with one worksheet per sheet, in
// order. Titles and section banners are bold; column widths follow the
// widest cell, clamped to a readable range.
func Render(sheets []report.Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("render workbook: no sheets")
	}

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	first := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	if err := xlsx.SetSheetName(first, sheets[0].Name); err != nil {
		return nil, fmt.Errorf("rename first sheet: %w", err)
	}
	for _, s := range sheets[1:] {
		if _, err := xlsx.NewSheet(s.Name); err != nil {
			return nil, fmt.Errorf("create sheet %q: %w", s.Name, err)
		}
	}

	for _, s := range sheets {
		if err := writeSheet(xlsx, s); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", s.Name, err)
		}
	}
	xlsx.SetActiveSheet(0)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(xlsx *excelize.File, s report.Sheet) error {
	boldID, err := xlsx.NewStyle(mergeStyles(defaultStyle(), fontBold()))
	if err != nil {
		return err
	}

	cols := 0
	for ri, row := range s.Rows {
		for ci, value := range row {
			ref, err := excelize.CoordinatesToCellName(ci+1, ri+1)
			if err != nil {
				return err
			}
			if err := xlsx.SetCellValue(s.Name, ref, value); err != nil {
				return err
			}
		}
		if len(row) > cols {
			cols = len(row)
		}
		if emphasized(row) {
			start, _ := excelize.CoordinatesToCellName(1, ri+1)
			end, _ := excelize.CoordinatesToCellName(max(len(row), 1), ri+1)
			if err := xlsx.SetCellStyle(s.Name, start, end, boldID); err != nil {
				return err
			}
		}
	}

	return sizeColumns(xlsx, s, cols)
}

// emphasized reports whether a row should render bold: the report title
// on the first row and the "=== ... ===" section banners.
func emphasized(row []string) bool {
	return len(row) > 0 && (strings.HasPrefix(row[0], "===") || strings.HasPrefix(row[0], "RELATÓRIO") ||
		strings.HasPrefix(row[0], "TODOS OS") || strings.HasPrefix(row[0], "SOMAS") ||
		strings.HasPrefix(row[0], "TOTAIS") || strings.HasPrefix(row[0], "RESUMO") ||
		strings.HasPrefix(row[0], "CATEGORIAS"))
}

func sizeColumns(xlsx *excelize.File, s report.Sheet, cols int) error {
	for c := 1; c <= cols; c++ {
		width := minColWidth
		for _, row := range s.Rows {
			if c-1 < len(row) {
				if w := len([]rune(row[c-1])) + 2; w > width {
					width = w
				}
			}
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return err
		}
		if err := xlsx.SetColWidth(s.Name, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

func defaultStyle() *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFFFF"},
			Pattern: 1,
		},
	}
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
