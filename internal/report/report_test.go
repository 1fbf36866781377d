package report

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/core"
)

var testGeneratedAt = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func entry(id string, kind core.Kind, cents int64, cat core.Category, date core.Date) core.Entry {
	return core.Entry{ID: id, Kind: kind, Amount: core.Money{Cents: cents}, Category: cat, Date: date}
}

func findSheet(t *testing.T, sheets []Sheet, name string) Sheet {
	t.Helper()
	for _, s := range sheets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("no sheet named %q", name)
	return Sheet{}
}

func findRow(t *testing.T, s Sheet, label string) []string {
	t.Helper()
	for _, row := range s.Rows {
		if len(row) > 0 && row[0] == label {
			return row
		}
	}
	t.Fatalf("sheet %q has no row labelled %q", s.Name, label)
	return nil
}

func TestBuildMonthlyEmptyScope(t *testing.T) {
	_, err := BuildMonthly(nil, 2025, 3, testGeneratedAt)
	var esc *core.EmptyScopeError
	if !errors.As(err, &esc) {
		t.Fatalf("error = %v, want *core.EmptyScopeError", err)
	}
	if !strings.Contains(esc.Scope, "2025-03") {
		t.Errorf("scope = %q, want it to name 2025-03", esc.Scope)
	}
}

func TestBuildMonthly(t *testing.T) {
	entries := []core.Entry{
		entry("a", core.Inflow, 100_00, "", core.NewDate(2025, 3, 5)),
		entry("b", core.Outflow, 40_00, core.CategoryTax, core.NewDate(2025, 3, 10)),
		entry("c", core.Outflow, 10_00, core.CategoryOther, core.NewDate(2025, 3, 2)),
	}

	sheets, err := BuildMonthly(entries, 2025, 3, testGeneratedAt)
	if err != nil {
		t.Fatalf("BuildMonthly: %v", err)
	}
	if len(sheets) != 3 {
		t.Fatalf("got %d sheets, want 3", len(sheets))
	}

	totals := findSheet(t, sheets, "Totais do Mês")
	checks := map[string]string{
		"SALDO MENSAL:":          "R$ 50,00",
		"Total de Lançamentos":   "3",
		"Quantidade de Entradas": "1",
		"Quantidade de Saídas":   "2",
		"Total de Entradas":      "R$ 100,00",
		"Total de Saídas":        "R$ 50,00",
		"Média por Entrada":      "R$ 100,00",
		"Média por Saída":        "R$ 25,00",
		"Status do Mês":          "POSITIVO",
	}
	for label, want := range checks {
		if row := findRow(t, totals, label); row[1] != want {
			t.Errorf("%s = %q, want %q", label, row[1], want)
		}
	}

	// Listing is date sorted: c (day 2) before a (day 5) before b.
	listing := findSheet(t, sheets, "Todos os Lançamentos")
	var kinds []string
	for _, row := range listing.Rows[11:] {
		kinds = append(kinds, row[0])
	}
	if strings.Join(kinds, ",") != "Saída,Entrada,Saída" {
		t.Errorf("listing order = %v", kinds)
	}

	// Categories are outflows only, largest total first.
	cats := findSheet(t, sheets, "Somas por Categoria")
	rows := cats.Rows[3:]
	if len(rows) != 2 {
		t.Fatalf("got %d category rows, want 2", len(rows))
	}
	if rows[0][0] != "Impostos" || rows[0][1] != "R$ 40,00" {
		t.Errorf("first category row = %v", rows[0])
	}
	if rows[1][0] != "Outras" || rows[1][1] != "R$ 10,00" {
		t.Errorf("second category row = %v", rows[1])
	}
}

func TestBuildAnnual(t *testing.T) {
	entries := []core.Entry{
		entry("a", core.Inflow, 500_00, "", core.NewDate(2025, 1, 10)),
		entry("b", core.Outflow, 120_00, core.CategoryPayroll, core.NewDate(2025, 7, 1)),
	}

	sheets, err := BuildAnnual(entries, 2025, testGeneratedAt)
	if err != nil {
		t.Fatalf("BuildAnnual: %v", err)
	}
	if len(sheets) != 4 {
		t.Fatalf("got %d sheets, want 4", len(sheets))
	}

	// Month sums list all twelve months even when empty.
	sums := findSheet(t, sheets, "Somas Mensais")
	if got := len(sums.Rows) - 3; got != 12 {
		t.Errorf("month rows = %d, want 12", got)
	}
	feb := findRow(t, sums, "Fevereiro")
	if feb[1] != "R$ 0,00" || feb[4] != "0" {
		t.Errorf("empty month row = %v", feb)
	}

	// The listing only shows months that have entries.
	listing := findSheet(t, sheets, "Lançamentos por Mês")
	joined := ""
	for _, row := range listing.Rows {
		joined += strings.Join(row, "|") + "\n"
	}
	if !strings.Contains(joined, "=== JANEIRO 2025 ===") || !strings.Contains(joined, "=== JULHO 2025 ===") {
		t.Errorf("listing missing month banners:\n%s", joined)
	}
	if strings.Contains(joined, "FEVEREIRO") {
		t.Errorf("listing shows empty month:\n%s", joined)
	}

	cats := findSheet(t, sheets, "Categorias do Ano")
	row := cats.Rows[3]
	if row[0] != "Folha de Pagamento" || row[2] != "100.00%" {
		t.Errorf("category row = %v", row)
	}

	totals := findSheet(t, sheets, "Totais do Ano")
	if got := findRow(t, totals, "Média de Lançamentos por Mês"); got[1] != "0.17" {
		t.Errorf("entries per month = %q, want 0.17", got[1])
	}
}

func TestBuildAllTime(t *testing.T) {
	entries := []core.Entry{
		entry("new", core.Inflow, 300_00, "", core.NewDate(2025, 5, 1)),
		entry("old", core.Outflow, 100_00, core.CategoryTax, core.NewDate(2023, 8, 20)),
	}

	sheets, err := BuildAllTime(entries, testGeneratedAt)
	if err != nil {
		t.Fatalf("BuildAllTime: %v", err)
	}
	wantNames := []string{"Todos os Lançamentos", "Somas dos Anos", "Totais Gerais", "Categorias Gerais"}
	for i, want := range wantNames {
		if sheets[i].Name != want {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i].Name, want)
		}
	}

	// Year banners come in ascending order whatever the input order.
	listing := sheets[0]
	var banners []string
	for _, row := range listing.Rows {
		if strings.HasPrefix(row[0], "=== ANO") {
			banners = append(banners, row[0])
		}
	}
	if len(banners) != 2 || banners[0] != "=== ANO 2023 ===" || banners[1] != "=== ANO 2025 ===" {
		t.Errorf("year banners = %v", banners)
	}

	totals := findSheet(t, sheets, "Totais Gerais")
	if got := findRow(t, totals, "Total de Anos com Dados"); got[1] != "2" {
		t.Errorf("year count = %q", got[1])
	}
	// 2023 nets -100, 2025 nets +300, so the ledger trends upward.
	if got := findRow(t, totals, "Tendência"); got[1] != "Crescimento" {
		t.Errorf("trend = %q, want Crescimento", got[1])
	}
	if got := findRow(t, totals, "Variação da Tendência"); got[1] != "400.00%" {
		t.Errorf("trend percent = %q, want 400.00%%", got[1])
	}
	if got := findRow(t, totals, "Status Geral"); got[1] != "POSITIVO" {
		t.Errorf("status = %q", got[1])
	}
}

func TestCurrencyFormatting(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "R$ 0,00"},
		{5, "R$ 0,05"},
		{123456, "R$ 1.234,56"},
		{-5000, "R$ -50,00"},
	}
	for _, tt := range tests {
		if got := formatCurrency(core.Money{Cents: tt.cents}); got != tt.want {
			t.Errorf("formatCurrency(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFilenames(t *testing.T) {
	at := time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)
	if got := AllTimeFilename(at); got != "APAE-Relatorio-Geral-Completo-2025-06-15.xlsx" {
		t.Errorf("AllTimeFilename = %q", got)
	}
	if got := AnnualFilename(2024, at); got != "APAE-Relatorio-Anual-2024-2025-06-15.xlsx" {
		t.Errorf("AnnualFilename = %q", got)
	}
	if got := MonthlyFilename(2024, 2, at); got != "APAE-Relatorio-Mensal-Fevereiro-2024-2025-06-15.xlsx" {
		t.Errorf("MonthlyFilename = %q", got)
	}
}
