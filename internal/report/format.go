package report

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese month name, or the number itself when
// out of range.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return strconv.Itoa(month)
	}
	return monthNames[month-1]
}

func formatCurrency(m core.Money) string {
	return formatCurrencyValue(m.Float64())
}

// formatCurrencyValue renders a BRL amount with pt-BR separators, e.g.
// "R$ 1.234,56".
func formatCurrencyValue(v float64) string {
	return ptBR.Sprintf("R$ %v", number.Decimal(v, number.Scale(2)))
}

// formatPercent keeps the dot decimal the spreadsheets always used for
// percentages, e.g. "45.83%".
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

func formatCount(n int) string {
	return strconv.Itoa(n)
}

func formatRatio(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}

// formatField substitutes "-" for blank free-text cells.
func formatField(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// categoryCell shows the category label only when one was recorded;
// inflows and uncategorized outflows show "-".
func categoryCell(e core.Entry) string {
	if e.Category == "" {
		return "-"
	}
	return e.Category.Label()
}

func statusLabel(balance core.Money) string {
	switch {
	case balance.Cents > 0:
		return "POSITIVO"
	case balance.Cents < 0:
		return "NEGATIVO"
	default:
		return "NEUTRO"
	}
}

func daysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
