// Package google appends saved records to a Google Sheets spreadsheet.
// Used by the background sync worker only; the save path never waits on it.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rimborsi/internal/core"
	ports "rimborsi/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ ports.RecordAppender = (*Client)(nil)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID. Optional: GOOGLE_SHEET_NAME (default
// "Expenses") and service account credentials via
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Expenses"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
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

// Append writes one record as a row (date, name, amount, category,
// counterparty, purpose, id) and returns the written range.
func (c *Client) Append(ctx context.Context, r core.Record) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Next empty row: current row count + 1.
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:G%d", c.sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		r.Date.String(),
		r.Name,
		r.AmountOrZero().Decimal(),
		string(r.Category),
		r.Counterparty,
		r.Purpose,
		r.ID,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	slog.InfoContext(ctx, "Record appended to sheet",
		"id", r.ID, "range", dataRange, "sheet", c.sheetName)
	return dataRange, nil
}
