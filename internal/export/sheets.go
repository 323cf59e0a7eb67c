// Package export pushes monthly summaries to a Google Spreadsheet so
// history survives outside the local database.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/log"
)

// Credentials locates the service account key, either inline or on disk.
type Credentials struct {
	JSON []byte
	File string
}

func (c Credentials) load() ([]byte, error) {
	switch {
	case len(c.JSON) > 0:
		return c.JSON, nil
	case strings.TrimSpace(c.File) != "":
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials")
	}
}

// SheetsExporter appends one summary row per month to a spreadsheet.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

// NewSheetsExporter builds a Sheets client from service account credentials.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheetName string, creds Credentials, logger *log.Logger) (*SheetsExporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Months"
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
	}, nil
}

// ExportMonthlySummary writes one row: month key, the four totals and a
// compact category breakdown. Returns the sheet reference of the row.
func (e *SheetsExporter) ExportMonthlySummary(ctx context.Context, monthKey string, agg core.MonthlyAggregate, shares []core.CategoryShare) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	if _, _, err := core.ParseMonthKey(monthKey); err != nil {
		return "", err
	}

	// Find the next empty row from the key column.
	rng := fmt.Sprintf("%s!A:A", e.sheetName)
	resp, err := e.svc.Spreadsheets.Values.Get(e.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("get sheet dimensions for %s: %w", e.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:F%d", e.sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		monthKey,
		agg.Income.Units(),
		agg.Expenses.Units(),
		agg.Saved.Units(),
		agg.Remaining.Units(),
		formatShares(shares),
	}}}

	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", e.sheetName, err)
	}

	ref := fmt.Sprintf("%s!A%d:F%d", e.sheetName, nextRow, nextRow)
	e.logger.InfoContext(ctx, "Monthly summary exported",
		log.FieldMonthKey, monthKey,
		log.FieldOperation, log.OpExport,
		log.FieldSheetsRef, ref)
	return ref, nil
}

// formatShares packs the breakdown into a single cell, largest first.
func formatShares(shares []core.CategoryShare) string {
	parts := make([]string, 0, len(shares))
	for _, sh := range shares {
		parts = append(parts, fmt.Sprintf("%s %.1f%%", sh.Category, sh.Percent))
	}
	return strings.Join(parts, "; ")
}
