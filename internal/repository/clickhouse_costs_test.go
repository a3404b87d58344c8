package repository

import (
	"strings"
	"testing"
)

func TestLoadSeriesQueryReadsFinal(t *testing.T) {
	q := loadSeriesQuery("cost_observations")

	// The poller re-emits its lookback window every interval; reading
	// without FINAL would sum unmerged duplicates.
	if !strings.Contains(q, "FROM cost_observations FINAL") {
		t.Fatalf("query does not read through FINAL:\n%s", q)
	}
	if !strings.Contains(q, "GROUP BY ts") {
		t.Fatalf("query does not aggregate per period:\n%s", q)
	}
}
