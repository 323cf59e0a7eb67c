package services

import (
	"sort"
	"time"

	"github.com/Ovcharovbohdan43/exgo-sub002/internal/core"
)

// ProjectUpcoming computes the upcoming occurrences of every recurring
// definition inside the horizon, ordered by ascending scheduled date.
//
// Only occurrences on or after asOf are considered, so DaysUntil is
// never negative by construction. Occurrences past a definition's end
// date or past asOf+horizonDays are excluded. Definitions with an
// unknown frequency contribute nothing; frequencies are validated at
// creation, so that is a dead branch kept total.
func ProjectUpcoming(defs []core.RecurringDefinition, asOf time.Time, horizonDays int) []core.UpcomingTransaction {
	if horizonDays < 0 {
		horizonDays = 0
	}
	today := dateOnly(asOf)
	horizon := today.AddDate(0, 0, horizonDays)

	var out []core.UpcomingTransaction
	for _, def := range defs {
		stepper, err := GetOccurrenceStepper(def.Frequency)
		if err != nil {
			continue
		}
		end := time.Time{}
		if !def.EndDate.IsZero() {
			end = dateOnly(def.EndDate)
		}

		for n := stepper.FirstOnOrAfter(def.StartDate, asOf); ; n++ {
			occ := stepper.OccurrenceAt(def.StartDate, n)
			if occ.After(horizon) {
				break
			}
			if !end.IsZero() && occ.After(end) {
				break
			}
			out = append(out, core.UpcomingTransaction{
				Name:          def.Name,
				Type:          def.Type,
				Amount:        def.Amount,
				Category:      def.Category,
				ScheduledDate: occ,
				DaysUntil:     daysBetween(today, occ),
			})
		}
	}

	// Stable keeps definition order between same-day occurrences.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledDate.Before(out[j].ScheduledDate)
	})
	return out
}
