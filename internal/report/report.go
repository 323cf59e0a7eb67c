// Package report renders the monthly report document: totals, category
// breakdown, daily trend and itemized history, with inline SVG charts.
// Rendering is deterministic: the same transactions, income, currency
// and language always produce byte-identical output.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templateFS, "templates/report.html"))

// Renderer renders monthly reports. Day grouping happens in loc, so a
// transaction logged at 23:30 local time stays on its local day.
type Renderer struct {
	loc *time.Location
}

func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.Local
	}
	return &Renderer{loc: loc}
}

type (
	reportView struct {
		Lang       string
		Title      string
		Labels     map[string]string
		Income     string
		Expenses   string
		Saved      string
		Remaining  string
		Ring       []RingSegment
		Bars       []Bar
		BarsWidth  int
		Categories []categoryRow
		Days       []dayGroup
	}

	categoryRow struct {
		Name    string
		Amount  string
		Percent string
	}

	dayGroup struct {
		Day   string
		Items []itemRow
	}

	itemRow struct {
		TypeLabel string
		Category  string
		Amount    string
	}
)

// RenderMonthlyReport builds the document for one month's transaction
// set. Transactions without a usable timestamp are counted in the
// totals but cannot appear in the dated history section.
func (r *Renderer) RenderMonthlyReport(monthKey string, txs []core.Transaction, monthlyIncome core.Money, currency, lang string) ([]byte, error) {
	if _, _, err := core.ParseMonthKey(monthKey); err != nil {
		return nil, err
	}

	agg := services.ComputeTotals(txs, monthlyIncome)
	shares := services.CategoryBreakdown(txs)
	daily := services.DailyExpenseSums(txs, r.loc)

	money := func(m core.Money) string { return m.String() + " " + currency }

	view := reportView{
		Lang:      lang,
		Title:     tr(lang, "report_title") + " — " + core.MonthLabel(monthKey, lang),
		Labels:    labelSet(lang),
		Income:    money(agg.Income),
		Expenses:  money(agg.Expenses),
		Saved:     money(agg.Saved),
		Remaining: money(agg.Remaining),
		Ring:      ringSegments(agg, lang),
		Bars:      bars(daily),
	}
	view.BarsWidth = len(view.Bars) * 10
	if view.BarsWidth < 10 {
		view.BarsWidth = 10
	}

	for _, s := range shares {
		name := s.Category
		if name == core.Uncategorized {
			name = tr(lang, "uncategorized")
		}
		view.Categories = append(view.Categories, categoryRow{
			Name:    name,
			Amount:  money(s.Amount),
			Percent: fmt.Sprintf("%.1f%%", s.Percent),
		})
	}

	view.Days = groupByDay(txs, r.loc, lang, money)

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func labelSet(lang string) map[string]string {
	keys := []string{"income", "expenses", "saved", "remaining", "categories", "daily_trend", "history", "no_expenses"}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = tr(lang, k)
	}
	return out
}

// groupByDay buckets transactions by local calendar day, days newest
// first and each day's items newest first. The input is never
// reordered; sorting happens on a copy because the slice is shared
// with other readers.
func groupByDay(txs []core.Transaction, loc *time.Location, lang string, money func(core.Money) string) []dayGroup {
	dated := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.CreatedAt.IsZero() {
			continue
		}
		dated = append(dated, tx)
	}
	sort.SliceStable(dated, func(i, j int) bool {
		return dated[i].CreatedAt.After(dated[j].CreatedAt)
	})

	var (
		groups []dayGroup
		index  = make(map[string]int)
	)
	for _, tx := range dated {
		day := core.DayKey(tx.CreatedAt, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, dayGroup{Day: day})
		}

		category := tx.Category
		if tx.Type == core.Expense && category == "" {
			category = tr(lang, "uncategorized")
		}
		groups[i].Items = append(groups[i].Items, itemRow{
			TypeLabel: tr(lang, "type_"+string(tx.Type)),
			Category:  category,
			Amount:    signedAmount(tx, money),
		})
	}
	return groups
}

// signedAmount renders direction from the type; amounts are stored
// unsigned.
func signedAmount(tx core.Transaction, money func(core.Money) string) string {
	if tx.Type == core.Income {
		return "+" + money(tx.Amount)
	}
	return "−" + money(tx.Amount)
}
