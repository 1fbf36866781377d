// Package gsheet mirrors generated reports into a shared Google
// spreadsheet, so the board can read the latest numbers without
// downloading files. Entirely optional; the server runs fine without
// credentials.
package gsheet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/report"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	logger        *log.Logger
}

// NewFromEnv creates a Sheets client from environment variables.
// Required: GSHEET_SPREADSHEET_ID.
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, logger *log.Logger) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GSHEET_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GSHEET_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Upload replaces the contents of one spreadsheet tab per report sheet,
// creating missing tabs first.
func (c *Client) Upload(ctx context.Context, sheets []report.Sheet) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	existing, err := c.existingTabs(ctx)
	if err != nil {
		return err
	}

	var adds []*gsheet.Request
	for _, s := range sheets {
		if !existing[s.Name] {
			adds = append(adds, &gsheet.Request{
				AddSheet: &gsheet.AddSheetRequest{
					Properties: &gsheet.SheetProperties{Title: s.Name},
				},
			})
		}
	}
	if len(adds) > 0 {
		_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: adds,
		}).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("create missing tabs: %w", err)
		}
	}

	for _, s := range sheets {
		rng := fmt.Sprintf("'%s'!A1:Z", s.Name)
		if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
			return fmt.Errorf("clear tab %s: %w", s.Name, err)
		}

		values := make([][]any, len(s.Rows))
		for i, row := range s.Rows {
			cells := make([]any, len(row))
			for j, cell := range row {
				cells[j] = cell
			}
			values[i] = cells
		}
		vr := &gsheet.ValueRange{Values: values}
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("'%s'!A1", s.Name), vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("write tab %s: %w", s.Name, err)
		}
	}

	c.logger.InfoContext(ctx, "report uploaded to spreadsheet",
		log.FieldOperation, log.OpRender,
		log.FieldSheetCount, len(sheets))
	return nil
}

func (c *Client) existingTabs(ctx context.Context) (map[string]bool, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	tabs := make(map[string]bool, len(meta.Sheets))
	for _, s := range meta.Sheets {
		if s.Properties != nil {
			tabs[s.Properties.Title] = true
		}
	}
	return tabs, nil
}
