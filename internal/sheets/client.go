// Package sheets exports financial records to a Google Spreadsheet. Each
// record kind goes to its own sheet; the database stays the source of
// truth and rows here are append-only snapshots.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fleetledger/internal/config"
	"fleetledger/internal/core"
	"fleetledger/internal/ports"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	fuelSheet     string
	expensesSheet string
	incomeSheet   string
}

// Ensure interface conformance
var _ ports.RecordExporter = (*Client)(nil)

// New creates a Sheets client from the export section of the config.
// Credentials come from the service account JSON, either inline or from
// a file; GOOGLE_APPLICATION_CREDENTIALS is honored as a fallback.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.GoogleSpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		fuelSheet:     cfg.GoogleFuelSheetName,
		expensesSheet: cfg.GoogleExpensesSheetName,
		incomeSheet:   cfg.GoogleIncomeSheetName,
	}, nil
}

func newSheetsService(ctx context.Context, cfg *config.Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.GoogleServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.GoogleServiceAccountFile)

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

// AppendFuel writes a fuel record row: ID, VehicleID, Date, Cost,
// Currency, Volume, Unit, Odometer.
func (c *Client) AppendFuel(ctx context.Context, r core.FuelRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{r.ID, r.VehicleID, r.Date, r.Cost, r.Currency, r.Volume, string(r.Unit), r.Odometer}
	return c.appendRow(ctx, c.fuelSheet, row)
}

// AppendExpense writes an expense record row: ID, VehicleID, Date,
// Amount, Currency, Category.
func (c *Client) AppendExpense(ctx context.Context, r core.ExpenseRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{r.ID, r.VehicleID, r.Date, r.Amount, r.Currency, r.Category}
	return c.appendRow(ctx, c.expensesSheet, row)
}

// AppendIncome writes an income record row: ID, VehicleID, Date,
// Amount, Currency, Source.
func (c *Client) AppendIncome(ctx context.Context, r core.IncomeRecord) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	row := []any{r.ID, r.VehicleID, r.Date, r.Amount, r.Currency, r.Source}
	return c.appendRow(ctx, c.incomeSheet, row)
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row from the sheet's current height, then
	// update the exact range so the returned reference is stable.
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}

	nextRow := len(resp.Values) + 1
	lastCol := rune('A' + len(row) - 1)
	dataRange := fmt.Sprintf("%s!A%d:%c%d", sheetName, nextRow, lastCol, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", dataRange, err)
	}

	return dataRange, nil
}
