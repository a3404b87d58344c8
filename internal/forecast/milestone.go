package forecast

import "time"

// Milestone labels, in reporting order.
const (
	MilestoneEndOfThisMonth        = "end_of_this_month"
	MilestoneEndOfNextMonth        = "end_of_next_month"
	MilestoneEndOfNextQuarter      = "end_of_next_quarter"
	MilestoneEndOfFollowingQuarter = "end_of_following_quarter"
	MilestoneEndOfYear             = "end_of_year"
)

// Milestone is a named calendar boundary relative to the last observed
// date.
type Milestone struct {
	Label string    `json:"label"`
	Date  time.Time `json:"date"`
}

// MilestoneTotal carries, for one milestone, the cumulative sum of each
// algorithm's non-missing forecast values dated on or before the
// milestone. Cumulative, not incremental: period-specific cost is the
// consumer's subtraction to make.
type MilestoneTotal struct {
	Milestone
	Totals map[string]float64 `json:"totals"`
}

// Milestones computes the five calendar milestones relative to the last
// observed timestamp. Boundaries roll forward: a date already sitting on
// a boundary advances to the next one.
func Milestones(last time.Time, _ Granularity) []Milestone {
	return []Milestone{
		{Label: MilestoneEndOfThisMonth, Date: monthEnd(last, 1)},
		{Label: MilestoneEndOfNextMonth, Date: monthEnd(last, 2)},
		{Label: MilestoneEndOfNextQuarter, Date: quarterEnd(last, 1)},
		{Label: MilestoneEndOfFollowingQuarter, Date: quarterEnd(last, 2)},
		{Label: MilestoneEndOfYear, Date: yearEnd(last)},
	}
}

// MilestoneTotals aggregates forecast values per milestone and algorithm.
func MilestoneTotals(milestones []Milestone, h Horizon, results map[string]Result) []MilestoneTotal {
	out := make([]MilestoneTotal, 0, len(milestones))
	for _, m := range milestones {
		totals := make(map[string]float64, len(results))
		for name, r := range results {
			var sum float64
			for i, ts := range h {
				if ts.After(m.Date) {
					break
				}
				if i < len(r.Values) && r.Values[i].Valid {
					sum += r.Values[i].Float64
				}
			}
			totals[name] = sum
		}
		out = append(out, MilestoneTotal{Milestone: m, Totals: totals})
	}
	return out
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 0, -1)
}

// monthEnd returns the n-th month-end boundary on or after t, rolling
// forward when t already is a month end.
func monthEnd(t time.Time, n int) time.Time {
	d := dateOnly(t)
	e := endOfMonth(d)
	if d.Equal(e) {
		e = endOfMonth(e.AddDate(0, 0, 1))
	}
	for i := 1; i < n; i++ {
		e = endOfMonth(e.AddDate(0, 0, 1))
	}
	return e
}

// quarterEnd returns the n-th quarter-end boundary after t with the same
// roll-forward rule. Quarters end in March, June, September, December.
func quarterEnd(t time.Time, n int) time.Time {
	d := dateOnly(t)
	e := endOfQuarter(d)
	if d.Equal(e) {
		e = endOfQuarter(e.AddDate(0, 0, 1))
	}
	for i := 1; i < n; i++ {
		e = endOfQuarter(e.AddDate(0, 0, 1))
	}
	return e
}

func endOfQuarter(t time.Time) time.Time {
	quarterEndMonth := ((int(t.Month())-1)/3)*3 + 3
	return endOfMonth(time.Date(t.Year(), time.Month(quarterEndMonth), 1, 0, 0, 0, 0, t.Location()))
}

// yearEnd returns December 31 of t's year, or of the next year when t
// already is December 31.
func yearEnd(t time.Time) time.Time {
	d := dateOnly(t)
	e := time.Date(d.Year(), time.December, 31, 0, 0, 0, 0, d.Location())
	if d.Equal(e) {
		e = e.AddDate(1, 0, 0)
	}
	return e
}
