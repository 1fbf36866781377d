// Command apae-report renders spreadsheet reports from the ledger
// without going through the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin"
	"github.com/joho/godotenv"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/backend"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/config"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/ledger"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/services"
)

func main() {
	_ = godotenv.Load()

	dataBackend := kingpin.Flag("backend", "Data backend (file or sqlite)").Default(config.BackendFile).Enum(config.BackendFile, config.BackendSQLite)
	dataDir := kingpin.Flag("data-dir", "Directory holding the ledger snapshot for the file backend").Default("./data").String()
	dbPath := kingpin.Flag("db", "SQLite database path for the sqlite backend").Default("./data/ledger.db").String()
	outDir := kingpin.Flag("out", "Directory to write the report into").Default(".").String()

	cmdAll := kingpin.Command("all", "Render the all-time report")
	cmdYear := kingpin.Command("year", "Render an annual report")
	yearArg := cmdYear.Arg("year", "Year to report on").Required().Int()
	cmdMonth := kingpin.Command("month", "Render a monthly report")
	monthYearArg := cmdMonth.Arg("year", "Year to report on").Required().Int()
	monthArg := cmdMonth.Arg("month", "Month to report on (1-12)").Required().Int()

	cmd := kingpin.Parse()

	logger := log.New(log.DefaultConfig())

	var (
		bk  backend.Backend
		err error
	)
	switch *dataBackend {
	case config.BackendSQLite:
		bk, err = backend.NewSQLiteBackend(*dbPath)
	default:
		bk, err = backend.NewFileBackend(*dataDir)
	}
	if err != nil {
		kingpin.Fatalf("open backend: %v", err)
	}
	defer bk.Close()

	store := ledger.NewStore(bk, logger)
	reports := services.NewReportService(store, nil, logger)

	ctx := context.Background()
	var rendered services.RenderedReport
	switch cmd {
	case cmdAll.FullCommand():
		rendered, err = reports.AllTimeReport(ctx)
	case cmdYear.FullCommand():
		rendered, err = reports.AnnualReport(ctx, *yearArg)
	case cmdMonth.FullCommand():
		if *monthArg < 1 || *monthArg > 12 {
			kingpin.Fatalf("month must be between 1 and 12")
		}
		rendered, err = reports.MonthlyReport(ctx, *monthYearArg, *monthArg)
	}
	if err != nil {
		kingpin.Fatalf("generate report: %v", err)
	}

	path := filepath.Join(*outDir, rendered.Filename)
	if err := os.WriteFile(path, rendered.Content, 0644); err != nil {
		kingpin.Fatalf("write report: %v", err)
	}
	fmt.Println(path)
}
