package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "costs.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCSVSeriesSourceSkipsHeader(t *testing.T) {
	path := writeCSV(t, "date,cost\n2024-01-01,10.5\n2024-01-02,11.25\n")

	pts, err := NewCSVSeriesSource(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pts) != 2 {
		t.Fatalf("got %d points, want 2", len(pts))
	}
	want := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !pts[0].TS.Equal(want) || pts[0].Cost != 10.5 {
		t.Errorf("pts[0] = %+v", pts[0])
	}
}

func TestCSVSeriesSourceWithoutHeader(t *testing.T) {
	path := writeCSV(t, "2024-01-01,10\n2024-01-02,11\n2024-01-03,12\n")

	pts, err := NewCSVSeriesSource(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("got %d points, want 3", len(pts))
	}
}

func TestCSVSeriesSourceDropsBadRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("date,cost\n")
	for i := 0; i < 12; i++ {
		d := time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		fmt.Fprintf(&b, "%s,%d\n", d, 10+i)
	}
	b.WriteString("2024-01-13,not-a-number\n")
	b.WriteString("not-a-date,11\n")
	path := writeCSV(t, b.String())

	pts, err := NewCSVSeriesSource(path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(pts) != 12 {
		t.Fatalf("got %d points, want 12 with bad rows dropped", len(pts))
	}
	for _, p := range pts {
		if p.TS.Year() != 2024 {
			t.Errorf("unexpected point %+v", p)
		}
	}
}
