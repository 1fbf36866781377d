package excel

import (
	"strings"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/report"
)

// RenderText is the degraded output used when workbook generation
// fails: one "=== SheetName ===" block per sheet with tab-joined rows,
// still usable in any text editor.
func RenderText(sheets []report.Sheet) []byte {
	var b strings.Builder
	for i, s := range sheets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("=== " + s.Name + " ===\n")
		for _, row := range s.Rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	return []byte(b.String())
}

// TextFilename converts an .xlsx report filename to its fallback name.
func TextFilename(xlsxName string) string {
	return strings.TrimSuffix(xlsxName, ".xlsx") + ".txt"
}
