package mirror

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/kerbside-app/kerbside-backend/pkg/config"
)

// SheetsClient talks to a single Google Sheets spreadsheet.
type SheetsClient struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsClient builds a Sheets client from the configured credentials.
// Returns nil without error when no spreadsheet is configured, which
// disables mirroring.
func NewSheetsClient(ctx context.Context, cfg config.SheetsConfig) (*SheetsClient, error) {
	if cfg.SpreadsheetID == "" {
		return nil, nil
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("building sheets service: %w", err)
	}
	return &SheetsClient{svc: svc, spreadsheetID: cfg.SpreadsheetID}, nil
}

// Append adds rows to the bottom of the named sheet.
func (c *SheetsClient) Append(ctx context.Context, sheetName string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	vr := &sheets.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, sheetName, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to sheet %q: %w", sheetName, err)
	}
	return nil
}

// Overwrite clears the named sheet and writes the provided rows from A1.
func (c *SheetsClient) Overwrite(ctx context.Context, sheetName string, rows [][]any) error {
	_, err := c.svc.Spreadsheets.Values.
		Clear(c.spreadsheetID, sheetName, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clear sheet %q: %w", sheetName, err)
	}

	vr := &sheets.ValueRange{Values: rows}
	_, err = c.svc.Spreadsheets.Values.
		Update(c.spreadsheetID, sheetName+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write sheet %q: %w", sheetName, err)
	}
	return nil
}
