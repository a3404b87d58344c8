package forecast

import (
	"testing"
	"time"
)

func TestMilestoneDatesMidMonth(t *testing.T) {
	ms := Milestones(day(2024, 1, 15), Daily)
	want := map[string]time.Time{
		MilestoneEndOfThisMonth:        day(2024, 1, 31),
		MilestoneEndOfNextMonth:        day(2024, 2, 29),
		MilestoneEndOfNextQuarter:      day(2024, 3, 31),
		MilestoneEndOfFollowingQuarter: day(2024, 6, 30),
		MilestoneEndOfYear:             day(2024, 12, 31),
	}
	for _, m := range ms {
		if !m.Date.Equal(want[m.Label]) {
			t.Fatalf("%s: expected %v, got %v", m.Label, want[m.Label], m.Date)
		}
	}
}

func TestMilestoneDatesRollForwardOnBoundary(t *testing.T) {
	// Already on a month end: this-month boundary advances a full month.
	ms := Milestones(day(2024, 1, 31), Daily)
	if !ms[0].Date.Equal(day(2024, 2, 29)) {
		t.Fatalf("end_of_this_month: expected 2024-02-29, got %v", ms[0].Date)
	}

	// December 31 rolls the year end to next year.
	ms = Milestones(day(2024, 12, 31), Daily)
	if !ms[4].Date.Equal(day(2025, 12, 31)) {
		t.Fatalf("end_of_year: expected 2025-12-31, got %v", ms[4].Date)
	}
}

func TestMilestoneTotalsCumulative(t *testing.T) {
	last := day(2024, 1, 15)
	h := NewHorizon(last, Daily)

	values := make([]Value, len(h))
	for i := range values {
		values[i] = Some(1) // one unit per forecast day
	}
	results := map[string]Result{AlgoSMA: {Algorithm: AlgoSMA, Values: values}}

	totals := MilestoneTotals(Milestones(last, Daily), h, results)
	if len(totals) != 5 {
		t.Fatalf("expected 5 milestones, got %d", len(totals))
	}

	// 16 days remain in January after the 15th.
	if got := totals[0].Totals[AlgoSMA]; got != 16 {
		t.Fatalf("end_of_this_month: expected 16, got %v", got)
	}
	// Cumulative totals never decrease for non-negative forecasts.
	prev := 0.0
	for _, mt := range totals {
		if mt.Totals[AlgoSMA] < prev {
			t.Fatalf("%s: total %v decreased below %v", mt.Label, mt.Totals[AlgoSMA], prev)
		}
		prev = mt.Totals[AlgoSMA]
	}
	// End of year covers the remainder of 2024: 351 forecast days.
	if got := totals[4].Totals[AlgoSMA]; got != 351 {
		t.Fatalf("end_of_year: expected 351, got %v", got)
	}
}

func TestMilestoneTotalsSkipMissing(t *testing.T) {
	last := day(2024, 1, 15)
	h := NewHorizon(last, Daily)

	values := make([]Value, len(h))
	for i := range values {
		if i%2 == 0 {
			values[i] = Some(2)
		}
	}
	results := map[string]Result{AlgoARIMA: {Algorithm: AlgoARIMA, Values: values}}

	totals := MilestoneTotals(Milestones(last, Daily), h, results)
	// 16 days to month end, positions 0..15, even positions only: 8 * 2.
	if got := totals[0].Totals[AlgoARIMA]; got != 16 {
		t.Fatalf("expected 16, got %v", got)
	}
}
