package forecast

import (
	"testing"
	"time"
)

func TestInferGranularityMonthlyFirsts(t *testing.T) {
	pts := make([]Point, 0, 12)
	for i := 0; i < 12; i++ {
		pts = append(pts, Point{TS: day(2024, time.Month(1+i), 1), Cost: float64(i + 1)})
	}
	s, err := NewSeries(pts)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if g := InferGranularity(s); g != Monthly {
		t.Fatalf("expected monthly, got %s", g)
	}
}

func TestInferGranularityDaily(t *testing.T) {
	pts := make([]Point, 0, 12)
	for i := 0; i < 12; i++ {
		pts = append(pts, Point{TS: day(2024, 1, 1).AddDate(0, 0, i), Cost: float64(i + 1)})
	}
	s, err := NewSeries(pts)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if g := InferGranularity(s); g != Daily {
		t.Fatalf("expected daily, got %s", g)
	}
}

func TestInferGranularityMidMonthSpacing(t *testing.T) {
	// Sampled on the 15th of each month: not all first-of-month, but the
	// spacing is a calendar month.
	pts := make([]Point, 0, 12)
	for i := 0; i < 12; i++ {
		pts = append(pts, Point{TS: day(2024, time.Month(1+i), 15), Cost: float64(i + 1)})
	}
	s, err := NewSeries(pts)
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if g := InferGranularity(s); g != Monthly {
		t.Fatalf("expected monthly, got %s", g)
	}
}

func TestDailyHorizon(t *testing.T) {
	h := NewHorizon(day(2024, 1, 1), Daily)
	if len(h) != 365 {
		t.Fatalf("expected 365 timestamps, got %d", len(h))
	}
	if !h[0].Equal(day(2024, 1, 2)) {
		t.Fatalf("expected first 2024-01-02, got %v", h[0])
	}
	if !h.Last().Equal(day(2024, 12, 31)) {
		t.Fatalf("expected last 2024-12-31, got %v", h.Last())
	}
	for i := 1; i < len(h); i++ {
		if h[i].Sub(h[i-1]) != 24*time.Hour {
			t.Fatalf("uneven step at %d", i)
		}
	}
}

func TestMonthlyHorizon(t *testing.T) {
	h := NewHorizon(day(2024, 1, 1), Monthly)
	if len(h) != 12 {
		t.Fatalf("expected 12 timestamps, got %d", len(h))
	}
	if !h[0].Equal(day(2024, 2, 1)) {
		t.Fatalf("expected first 2024-02-01, got %v", h[0])
	}
	if !h.Last().Equal(day(2025, 1, 1)) {
		t.Fatalf("expected last 2025-01-01, got %v", h.Last())
	}
	for _, ts := range h {
		if ts.Day() != 1 {
			t.Fatalf("horizon timestamp %v not first of month", ts)
		}
	}
}

func TestMonthlyHorizonFromMidMonth(t *testing.T) {
	h := NewHorizon(day(2024, 11, 15), Monthly)
	if !h[0].Equal(day(2024, 12, 1)) {
		t.Fatalf("expected first 2024-12-01, got %v", h[0])
	}
	if !h.Last().Equal(day(2025, 11, 1)) {
		t.Fatalf("expected last 2025-11-01, got %v", h.Last())
	}
}
