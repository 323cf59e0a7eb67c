package export

import (
	"context"
	"testing"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

func TestCredentialsLoad(t *testing.T) {
	creds := Credentials{JSON: []byte(`{"type":"service_account"}`)}
	data, err := creds.load()
	if err != nil {
		t.Fatalf("inline load: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected credential bytes")
	}

	if _, err := (Credentials{}).load(); err == nil {
		t.Fatalf("expected error for missing credentials")
	}
}

func TestNewSheetsExporterRequiresSpreadsheetID(t *testing.T) {
	_, err := NewSheetsExporter(context.Background(), "", "Months", Credentials{JSON: []byte("{}")}, nil)
	if err == nil {
		t.Fatalf("expected error for empty spreadsheet id")
	}
}

func TestExportRejectsBadMonthKey(t *testing.T) {
	e := &SheetsExporter{svc: nil}
	if _, err := e.ExportMonthlySummary(context.Background(), "2025-03", core.MonthlyAggregate{}, nil); err == nil {
		t.Fatalf("expected error for uninitialized service")
	}
}

func TestFormatShares(t *testing.T) {
	shares := []core.CategoryShare{
		{Category: "Groceries", Amount: core.Money{Cents: 12000}, Percent: 60},
		{Category: "Fuel", Amount: core.Money{Cents: 8000}, Percent: 40},
	}
	got := formatShares(shares)
	want := "Groceries 60.0%; Fuel 40.0%"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if formatShares(nil) != "" {
		t.Fatalf("expected empty string for no shares")
	}
}
