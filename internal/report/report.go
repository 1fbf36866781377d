// Package report turns ledger entries into the spreadsheet layouts the
// organization files: a general report across all years, an annual
// report and a monthly report. Builders only produce sheet names and
// string cell grids; rendering to an actual workbook happens elsewhere.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/aggregate"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

// Sheet is one worksheet: a name and a grid of display-ready cells.
// Rows may have different lengths; banner and spacer rows are narrower
// than data rows.
type Sheet struct {
	Name string
	Rows [][]string
}

const orgHeader = "APAE SALTO VELOSO"

var listingHeader = []string{"Tipo", "Valor", "Descrição", "Categoria"}

func entryRow(e core.Entry) []string {
	return []string{
		e.Kind.Label(),
		formatCurrency(e.Amount),
		formatField(e.Description),
		categoryCell(e),
	}
}

// BuildAllTime builds the four sheets of the general report over every
// entry in the ledger. Returns *core.EmptyScopeError when there are no
// entries at all.
func BuildAllTime(entries []core.Entry, generatedAt time.Time) ([]Sheet, error) {
	if len(entries) == 0 {
		return nil, &core.EmptyScopeError{Scope: "all years"}
	}

	total := aggregate.Summarize(entries)
	years := aggregate.GroupByYear(entries)
	yearCount := len(years)

	// Sheet 1: every entry, grouped per year with a balance line after
	// each group.
	listing := [][]string{
		{"RELATÓRIO GERAL - TODOS OS LANÇAMENTOS - " + orgHeader},
		{"Gerado em:", formatDateTime(generatedAt)},
		{""},
		{"=== SALDO GERAL DE TODOS OS ANOS ==="},
		{"SALDO GERAL:", formatCurrency(total.Balance)},
		{"Total de Entradas:", formatCurrency(total.TotalInflows)},
		{"Total de Saídas:", formatCurrency(total.TotalOutflows)},
		{"Status:", statusLabel(total.Balance)},
		{""},
		{"=== LANÇAMENTOS POR ANO ==="},
		listingHeader,
	}
	for _, year := range years {
		listing = append(listing, []string{fmt.Sprintf("=== ANO %s ===", year.Key), "", "", ""})
		for _, e := range aggregate.SortByDate(year.Entries) {
			listing = append(listing, entryRow(e))
		}
		sum := aggregate.Summarize(year.Entries)
		listing = append(listing, []string{
			fmt.Sprintf("SALDO DO ANO %s:", year.Key),
			formatCurrency(sum.Balance),
			"Entradas: " + formatCurrency(sum.TotalInflows),
			"Saídas: " + formatCurrency(sum.TotalOutflows),
		})
		listing = append(listing, []string{"", "", "", ""})
	}

	// Sheet 2: one totals line per year.
	yearSums := [][]string{
		{"SOMAS POR ANO"},
		{""},
		{"Ano", "Total Entradas", "Total Saídas", "Saldo", "Qtd Lançamentos", "Média Entradas", "Média Saídas"},
	}
	for _, year := range years {
		sum := aggregate.Summarize(year.Entries)
		yearSums = append(yearSums, []string{
			year.Key,
			formatCurrency(sum.TotalInflows),
			formatCurrency(sum.TotalOutflows),
			formatCurrency(sum.Balance),
			formatCount(sum.Count),
			formatCurrencyValue(sum.AverageInflow()),
			formatCurrencyValue(sum.AverageOutflow()),
		})
	}

	// Sheet 3: global metrics, including the trend over the whole
	// ledger.
	trend := aggregate.CalcTrend(entries)
	totals := [][]string{
		{"RESUMO GERAL DE TODOS OS ANOS"},
		{""},
		{"=== SALDO GERAL ==="},
		{"SALDO GERAL DE TODOS OS ANOS", formatCurrency(total.Balance)},
		{""},
		{"=== DETALHAMENTO ==="},
		{"Métrica", "Valor"},
		{"Total de Anos com Dados", formatCount(yearCount)},
		{"Total de Lançamentos", formatCount(total.Count)},
		{"Total de Entradas", formatCurrency(total.TotalInflows)},
		{"Total de Saídas", formatCurrency(total.TotalOutflows)},
		{"Média Anual de Entradas", formatCurrencyValue(total.TotalInflows.Float64() / float64(yearCount))},
		{"Média Anual de Saídas", formatCurrencyValue(total.TotalOutflows.Float64() / float64(yearCount))},
		{"Média de Lançamentos por Ano", formatRatio(float64(total.Count) / float64(yearCount))},
		{"Tendência", trend.Direction.Label()},
		{"Variação da Tendência", formatPercent(trend.Percent)},
		{"Status Geral", statusLabel(total.Balance)},
	}

	// Sheet 4: outflow categories across all years, largest first.
	categories := [][]string{
		{"CATEGORIAS DE TODOS OS ANOS"},
		{""},
		{"Categoria", "Total Gasto", "% do Total de Saídas", "Média por Ano"},
	}
	for _, stat := range aggregate.CategoryStats(entries) {
		categories = append(categories, []string{
			stat.Category.Label(),
			formatCurrency(stat.Total),
			formatPercent(aggregate.CategoryPercent(stat.Total, total.TotalOutflows)),
			formatCurrencyValue(stat.Total.Float64() / float64(yearCount)),
		})
	}

	return []Sheet{
		{Name: "Todos os Lançamentos", Rows: listing},
		{Name: "Somas dos Anos", Rows: yearSums},
		{Name: "Totais Gerais", Rows: totals},
		{Name: "Categorias Gerais", Rows: categories},
	}, nil
}

// BuildAnnual builds the four sheets of the annual report. Returns
// *core.EmptyScopeError when the year has no entries.
func BuildAnnual(entries []core.Entry, year int, generatedAt time.Time) ([]Sheet, error) {
	if len(entries) == 0 {
		return nil, &core.EmptyScopeError{Scope: "year " + strconv.Itoa(year)}
	}

	total := aggregate.Summarize(entries)

	byMonth := make(map[int][]core.Entry)
	for _, e := range entries {
		byMonth[int(e.Date.Month())] = append(byMonth[int(e.Date.Month())], e)
	}

	// Sheet 1: every entry of the year, grouped per month. Months with
	// no entries are skipped here but still listed in the sums sheet.
	listing := [][]string{
		{fmt.Sprintf("TODOS OS LANÇAMENTOS DE %d - %s", year, orgHeader)},
		{"Gerado em:", formatDateTime(generatedAt)},
		{""},
		{fmt.Sprintf("=== SALDO ANUAL DE %d ===", year)},
		{"SALDO ANUAL:", formatCurrency(total.Balance)},
		{"Total de Entradas:", formatCurrency(total.TotalInflows)},
		{"Total de Saídas:", formatCurrency(total.TotalOutflows)},
		{"Status:", statusLabel(total.Balance)},
		{""},
		{"=== LANÇAMENTOS POR MÊS ==="},
		listingHeader,
	}
	for month := 1; month <= 12; month++ {
		group := byMonth[month]
		if len(group) == 0 {
			continue
		}
		name := strings.ToUpper(MonthName(month))
		listing = append(listing, []string{fmt.Sprintf("=== %s %d ===", name, year), "", "", ""})
		for _, e := range aggregate.SortByDate(group) {
			listing = append(listing, entryRow(e))
		}
		sum := aggregate.Summarize(group)
		listing = append(listing, []string{
			fmt.Sprintf("SALDO DE %s:", name),
			formatCurrency(sum.Balance),
			"Entradas: " + formatCurrency(sum.TotalInflows),
			"Saídas: " + formatCurrency(sum.TotalOutflows),
		})
		listing = append(listing, []string{"", "", "", ""})
	}

	// Sheet 2: all twelve months, zeros for the empty ones.
	monthSums := [][]string{
		{fmt.Sprintf("SOMAS DE CADA MÊS - %d", year)},
		{""},
		{"Mês", "Total Entradas", "Total Saídas", "Saldo", "Qtd Lançamentos", "Média Diária"},
	}
	for month := 1; month <= 12; month++ {
		sum := aggregate.Summarize(byMonth[month])
		avgDaily := 0.0
		if sum.Count > 0 {
			avgDaily = sum.Balance.Float64() / float64(daysInMonth(year, month))
		}
		monthSums = append(monthSums, []string{
			MonthName(month),
			formatCurrency(sum.TotalInflows),
			formatCurrency(sum.TotalOutflows),
			formatCurrency(sum.Balance),
			formatCount(sum.Count),
			formatCurrencyValue(avgDaily),
		})
	}

	// Sheet 3: outflow categories of the year, largest first.
	categories := [][]string{
		{fmt.Sprintf("SOMAS DE CATEGORIA - %d", year)},
		{""},
		{"Categoria", "Total Gasto", "% do Total", "Qtd Lançamentos", "Valor Médio"},
	}
	for _, stat := range aggregate.CategoryStats(entries) {
		categories = append(categories, []string{
			stat.Category.Label(),
			formatCurrency(stat.Total),
			formatPercent(aggregate.CategoryPercent(stat.Total, total.TotalOutflows)),
			formatCount(stat.Count),
			formatCurrencyValue(stat.Average),
		})
	}

	// Sheet 4: annual metrics. Monthly averages divide by 12 regardless
	// of how many months have data.
	totals := [][]string{
		{fmt.Sprintf("TOTAIS DO ANO %d", year)},
		{""},
		{fmt.Sprintf("=== SALDO ANUAL DE %d ===", year)},
		{"SALDO ANUAL:", formatCurrency(total.Balance)},
		{""},
		{"=== DETALHAMENTO ==="},
		{"Métrica", "Valor"},
		{"Total de Lançamentos", formatCount(total.Count)},
		{"Total de Entradas", formatCurrency(total.TotalInflows)},
		{"Total de Saídas", formatCurrency(total.TotalOutflows)},
		{"Média Mensal de Entradas", formatCurrencyValue(total.TotalInflows.Float64() / 12)},
		{"Média Mensal de Saídas", formatCurrencyValue(total.TotalOutflows.Float64() / 12)},
		{"Média de Lançamentos por Mês", formatRatio(float64(total.Count) / 12)},
		{"Status do Ano", statusLabel(total.Balance)},
	}

	return []Sheet{
		{Name: "Lançamentos por Mês", Rows: listing},
		{Name: "Somas Mensais", Rows: monthSums},
		{Name: "Categorias do Ano", Rows: categories},
		{Name: "Totais do Ano", Rows: totals},
	}, nil
}

// BuildMonthly builds the three sheets of the monthly report. Returns
// *core.EmptyScopeError when the month has no entries.
func BuildMonthly(entries []core.Entry, year, month int, generatedAt time.Time) ([]Sheet, error) {
	if len(entries) == 0 {
		return nil, &core.EmptyScopeError{
			Scope: fmt.Sprintf("month %04d-%02d", year, month),
		}
	}

	total := aggregate.Summarize(entries)
	name := strings.ToUpper(MonthName(month))

	listing := [][]string{
		{fmt.Sprintf("TODOS OS LANÇAMENTOS - %s %d - %s", name, year, orgHeader)},
		{"Gerado em:", formatDateTime(generatedAt)},
		{""},
		{fmt.Sprintf("=== SALDO DO MÊS DE %s ===", name)},
		{"SALDO MENSAL:", formatCurrency(total.Balance)},
		{"Total de Entradas:", formatCurrency(total.TotalInflows)},
		{"Total de Saídas:", formatCurrency(total.TotalOutflows)},
		{"Status:", statusLabel(total.Balance)},
		{""},
		{"=== LANÇAMENTOS DO MÊS ==="},
		listingHeader,
	}
	for _, e := range aggregate.SortByDate(entries) {
		listing = append(listing, entryRow(e))
	}

	categories := [][]string{
		{fmt.Sprintf("SOMAS POR CATEGORIA - %s %d", name, year)},
		{""},
		{"Categoria", "Total Gasto", "Qtd Lançamentos", "Valor Médio", "Maior Valor", "Menor Valor"},
	}
	for _, stat := range aggregate.CategoryStats(entries) {
		categories = append(categories, []string{
			stat.Category.Label(),
			formatCurrency(stat.Total),
			formatCount(stat.Count),
			formatCurrencyValue(stat.Average),
			formatCurrency(stat.Max),
			formatCurrency(stat.Min),
		})
	}

	totals := [][]string{
		{fmt.Sprintf("TOTAIS DO MÊS - %s %d", name, year)},
		{""},
		{fmt.Sprintf("=== SALDO DO MÊS DE %s ===", name)},
		{"SALDO MENSAL:", formatCurrency(total.Balance)},
		{""},
		{"=== DETALHAMENTO ==="},
		{"Métrica", "Valor"},
		{"Total de Lançamentos", formatCount(total.Count)},
		{"Quantidade de Entradas", formatCount(total.InflowCount)},
		{"Quantidade de Saídas", formatCount(total.OutflowCount)},
		{"Total de Entradas", formatCurrency(total.TotalInflows)},
		{"Total de Saídas", formatCurrency(total.TotalOutflows)},
		{"Média por Entrada", formatCurrencyValue(total.AverageInflow())},
		{"Média por Saída", formatCurrencyValue(total.AverageOutflow())},
		{"Média Diária", formatCurrencyValue(total.Balance.Float64() / float64(daysInMonth(year, month)))},
		{"Status do Mês", statusLabel(total.Balance)},
	}

	return []Sheet{
		{Name: "Todos os Lançamentos", Rows: listing},
		{Name: "Somas por Categoria", Rows: categories},
		{Name: "Totais do Mês", Rows: totals},
	}, nil
}

// Report filenames follow the pattern the organization already archives.

func AllTimeFilename(generatedAt time.Time) string {
	return fmt.Sprintf("APAE-Relatorio-Geral-Completo-%s.xlsx", generatedAt.Format("2006-01-02"))
}

func AnnualFilename(year int, generatedAt time.Time) string {
	return fmt.Sprintf("APAE-Relatorio-Anual-%d-%s.xlsx", year, generatedAt.Format("2006-01-02"))
}

func MonthlyFilename(year, month int, generatedAt time.Time) string {
	return fmt.Sprintf("APAE-Relatorio-Mensal-%s-%d-%s.xlsx", MonthName(month), year, generatedAt.Format("2006-01-02"))
}
