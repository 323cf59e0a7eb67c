package report

import (
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
	"github.com/Ovcharovbohdan43/exgo-sub002/internal/services"
)

// Chart primitives are plain geometry computed from the totals; the
// template turns them into inline SVG, so the document needs no
// external assets.

const ringCircumference = 100.0 // arc lengths are percentages of the ring

// RingSegment is one arc of the proportional ring chart. Length and
// Offset are fractions of the circumference; segments are laid out
// sequentially so they never overlap. Gap and DashOffset are the
// precomputed stroke-dasharray/-dashoffset values for the SVG circle.
type RingSegment struct {
	Label      string
	Color      string
	Amount     core.Money
	Length     float64
	Offset     float64
	Gap        float64
	DashOffset float64
}

// ringSegments builds the fixed expenses/saved/remaining ring. The
// remaining segment is clamped to zero for proportions only; the
// numeric label keeps the true, possibly negative amount. The total is
// floored at one cent so an all-zero month still divides cleanly.
func ringSegments(agg core.MonthlyAggregate, lang string) []RingSegment {
	clamped := agg.Remaining.Cents
	if clamped < 0 {
		clamped = 0
	}
	total := agg.Expenses.Cents + agg.Saved.Cents + clamped
	if total < 1 {
		total = 1
	}

	segs := []RingSegment{
		{Label: tr(lang, "expenses"), Color: "#e76f51", Amount: agg.Expenses,
			Length: float64(agg.Expenses.Cents) / float64(total) * ringCircumference},
		{Label: tr(lang, "saved"), Color: "#2a9d8f", Amount: agg.Saved,
			Length: float64(agg.Saved.Cents) / float64(total) * ringCircumference},
		{Label: tr(lang, "remaining"), Color: "#457b9d", Amount: agg.Remaining,
			Length: float64(clamped) / float64(total) * ringCircumference},
	}

	offset := 0.0
	for i := range segs {
		segs[i].Offset = offset
		segs[i].Gap = ringCircumference - segs[i].Length
		segs[i].DashOffset = -offset
		offset += segs[i].Length
	}
	return segs
}

// Bar is one day of the spending trend, height as a percentage of the
// busiest day. X and Y are precomputed SVG coordinates.
type Bar struct {
	Day    string
	Amount core.Money
	Height float64
	X      int
	Y      float64
}

// bars converts day sums (newest first) into oldest-first bars for the
// left-to-right trend chart; bars are 8 units wide on a 10-unit pitch
// against a 100-unit-high baseline.
func bars(sums []services.DaySum) []Bar {
	var max int64
	for _, s := range sums {
		if s.Total.Cents > max {
			max = s.Total.Cents
		}
	}
	if max < 1 {
		max = 1
	}

	out := make([]Bar, 0, len(sums))
	for i := len(sums) - 1; i >= 0; i-- {
		s := sums[i]
		height := float64(s.Total.Cents) / float64(max) * 100
		out = append(out, Bar{
			Day:    s.Day,
			Amount: s.Total,
			Height: height,
			X:      len(out) * 10,
			Y:      100 - height,
		})
	}
	return out
}
