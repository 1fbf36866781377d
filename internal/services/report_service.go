package services

import (
	"context"
	"fmt"
	"time"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/cache"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/excel"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/ledger"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/report"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	textContentType = "text/plain; charset=utf-8"

	reportCacheSize = 16
	reportCacheTTL  = 5 * time.Minute
)

// ReportUploader is satisfied by gsheet.Client.
type ReportUploader interface {
	Upload(ctx context.Context, sheets []report.Sheet) error
}

// RenderedReport is a ready-to-serve report download.
type RenderedReport struct {
	Filename    string
	ContentType string
	Content     []byte
}

type ReportService struct {
	store    *ledger.Store
	cache    *cache.LRUCache[RenderedReport]
	uploader ReportUploader // nil when no spreadsheet is configured
	logger   *log.Logger
	now      func() time.Time
}

func NewReportService(store *ledger.Store, uploader ReportUploader, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportService{
		store:    store,
		cache:    cache.NewLRUCache[RenderedReport](reportCacheSize, reportCacheTTL),
		uploader: uploader,
		logger:   logger.WithComponent(log.ComponentReport),
		now:      time.Now,
	}
}

// Invalidate drops all cached reports. The ledger service calls this
// after every mutation.
func (s *ReportService) Invalidate() {
	s.cache.Purge()
}

// CleanExpired drops cached reports past their TTL and reports how many
// were removed. Called periodically from the server main.
func (s *ReportService) CleanExpired() int {
	return s.cache.CleanExpired()
}

func (s *ReportService) AllTimeReport(ctx context.Context) (RenderedReport, error) {
	return s.generate(ctx, "all", "all_time", func(at time.Time) ([]report.Sheet, string, error) {
		sheets, err := report.BuildAllTime(s.store.GetAllEntries(ctx), at)
		return sheets, report.AllTimeFilename(at), err
	})
}

func (s *ReportService) AnnualReport(ctx context.Context, year int) (RenderedReport, error) {
	key := fmt.Sprintf("year-%d", year)
	return s.generate(ctx, key, "annual", func(at time.Time) ([]report.Sheet, string, error) {
		sheets, err := report.BuildAnnual(s.store.GetYearEntries(ctx, year), year, at)
		return sheets, report.AnnualFilename(year, at), err
	})
}

func (s *ReportService) MonthlyReport(ctx context.Context, year, month int) (RenderedReport, error) {
	key := fmt.Sprintf("month-%04d-%02d", year, month)
	return s.generate(ctx, key, "monthly", func(at time.Time) ([]report.Sheet, string, error) {
		sheets, err := report.BuildMonthly(s.store.GetMonthEntries(ctx, year, month), year, month, at)
		return sheets, report.MonthlyFilename(year, month, at), err
	})
}

func (s *ReportService) generate(ctx context.Context, cacheKey, kind string, build func(time.Time) ([]report.Sheet, string, error)) (RenderedReport, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	sheets, filename, err := build(s.now())
	if err != nil {
		return RenderedReport{}, err
	}

	out := RenderedReport{Filename: filename, ContentType: xlsxContentType}
	content, err := excel.Render(sheets)
	if err != nil {
		// Degrade to the plain-text rendition rather than failing the
		// download.
		s.logger.WarnContext(ctx, "workbook rendering failed, serving text fallback",
			log.FieldReportKind, kind,
			log.FieldError, err.Error())
		out.Filename = excel.TextFilename(filename)
		out.ContentType = textContentType
		out.Content = excel.RenderText(sheets)
	} else {
		out.Content = content
	}

	s.cache.Set(cacheKey, out)
	s.logger.InfoContext(ctx, "report generated",
		log.FieldOperation, log.OpRender,
		log.FieldReportKind, kind,
		log.FieldSheetCount, len(sheets))

	if s.uploader != nil {
		if err := s.uploader.Upload(ctx, sheets); err != nil {
			s.logger.WarnContext(ctx, "spreadsheet upload failed",
				log.FieldReportKind, kind,
				log.FieldError, err.Error())
		}
	}
	return out, nil
}
