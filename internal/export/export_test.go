package export

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/finproj/internal/model"
)

func sampleRun() Run {
	cfg := model.ProjectionConfig{
		StartingUsers: 50,
		Growth:        model.RateSpec{Value: 8, Mode: model.Percentage},
		Churn:         model.RateSpec{Value: 3, Mode: model.Absolute},
		Months:        2,
		Tiers: []model.PricingTier{
			{Price: 120, AdoptionFraction: 0.5, Cadence: model.Yearly, Uses: 1},
			{Price: 100, AdoptionFraction: 0.1, Cadence: model.SingleUse, Uses: 5},
		},
	}
	return Run{
		ID:            "run-1",
		GeneratedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Config:        cfg,
		EffectiveARPU: 7,
		Records: []model.ProjectionRecord{
			{Month: 0, Users: 50, Revenue: 350},
			{Month: 1, Users: 51, Revenue: 357},
			{Month: 2, Users: 52, Revenue: 364.005},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRun().Records); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	want := "Month,Users,Revenue\n0,50,350.00\n1,51,357.00\n2,52,364.01\n"
	if buf.String() != want {
		t.Fatalf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSV_NegativeUsers(t *testing.T) {
	var buf bytes.Buffer
	recs := []model.ProjectionRecord{{Month: 3, Users: -1, Revenue: -10}}
	if err := WriteCSV(&buf, recs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "3,-1,-10.00") {
		t.Fatalf("csv = %q", buf.String())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	run := sampleRun()
	var buf bytes.Buffer
	if err := WriteJSON(&buf, run); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"cadence": "yearly"`) {
		t.Fatalf("cadence not written as text:\n%s", buf.String())
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.ID != run.ID || !got.GeneratedAt.Equal(run.GeneratedAt) {
		t.Fatalf("header = %s %v", got.ID, got.GeneratedAt)
	}
	if got.Config.Churn.Mode != model.Absolute || len(got.Config.Tiers) != 2 {
		t.Fatalf("config = %+v", got.Config)
	}
	if len(got.Records) != 3 || got.Records[2].Users != 52 {
		t.Fatalf("records = %+v", got.Records)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	run := sampleRun()

	if err := WriteSQLite(path, run); err != nil {
		t.Fatalf("WriteSQLite: %v", err)
	}
	got, err := ReadSQLite(path)
	if err != nil {
		t.Fatalf("ReadSQLite: %v", err)
	}

	if got.ID != "run-1" || got.EffectiveARPU != 7 {
		t.Fatalf("run = %s arpu %v", got.ID, got.EffectiveARPU)
	}
	if got.Config.Growth != run.Config.Growth || got.Config.Churn != run.Config.Churn {
		t.Fatalf("rates = %+v / %+v", got.Config.Growth, got.Config.Churn)
	}
	if len(got.Config.Tiers) != 2 || got.Config.Tiers[1] != run.Config.Tiers[1] {
		t.Fatalf("tiers = %+v", got.Config.Tiers)
	}
	if len(got.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(got.Records))
	}
	for i, r := range got.Records {
		if r != run.Records[i] {
			t.Fatalf("record %d = %+v, want %+v", i, r, run.Records[i])
		}
	}
}

func TestSQLiteReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")

	first := sampleRun()
	if err := WriteSQLite(path, first); err != nil {
		t.Fatal(err)
	}

	second := sampleRun()
	second.ID = "run-2"
	second.Records = second.Records[:1]
	if err := WriteSQLite(path, second); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "run-2" || len(got.Records) != 1 {
		t.Fatalf("got run %s with %d records, want run-2 with 1", got.ID, len(got.Records))
	}
}

func TestSQLiteFailedWriteKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.db")
	if err := WriteSQLite(path, sampleRun()); err != nil {
		t.Fatal(err)
	}

	bad := sampleRun()
	bad.ID = "run-2"
	bad.Records = append(bad.Records, bad.Records[0]) // duplicate month 0
	if err := WriteSQLite(path, bad); err == nil {
		t.Fatal("WriteSQLite accepted duplicate months")
	}

	got, err := ReadSQLite(path)
	if err != nil {
		t.Fatalf("ReadSQLite after failed write: %v", err)
	}
	if got.ID != "run-1" || len(got.Records) != 3 {
		t.Fatalf("got run %s with %d records, want run-1 with 3", got.ID, len(got.Records))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only run.db", len(entries))
	}
}

func TestCents(t *testing.T) {
	tests := map[float64]string{
		364.005:     "364.01",
		-10:         "-10.00",
		math.Inf(1): "+Inf",
		math.NaN():  "NaN",
	}
	for in, want := range tests {
		if got := Cents(in); got != want {
			t.Errorf("Cents(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteCSV_NonFiniteRevenue(t *testing.T) {
	var buf bytes.Buffer
	recs := []model.ProjectionRecord{{Month: 1, Users: 2, Revenue: math.Inf(1)}}
	if err := WriteCSV(&buf, recs); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(buf.String(), "1,2,+Inf") {
		t.Fatalf("csv = %q", buf.String())
	}
}

func TestWriteFile_CreatesDirs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	for _, f := range []Format{CSV, JSON, SQLite} {
		path := filepath.Join(dir, DefaultFilename(f, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
		if err := WriteFile(path, f, sampleRun()); err != nil {
			t.Fatalf("WriteFile(%s): %v", f, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.Size() == 0 {
			t.Fatalf("%s export missing or empty: %v", f, err)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"out.csv":         CSV,
		"out.JSON":        JSON,
		"runs/out.db":     SQLite,
		"runs/out.sqlite": SQLite,
	}
	for in, want := range tests {
		got, err := DetectFormat(in)
		if err != nil || got != want {
			t.Errorf("DetectFormat(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := DetectFormat("out.xlsx"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("SQLite"); err != nil || f != SQLite {
		t.Fatalf("ParseFormat(SQLite) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestDefaultFilename(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := DefaultFilename(SQLite, now); got != "projection-20260102-030405.db" {
		t.Fatalf("DefaultFilename = %q", got)
	}
}

func TestNewRun(t *testing.T) {
	run := sampleRun()
	res := model.ProjectionResult{EffectiveARPU: run.EffectiveARPU, Records: run.Records}

	got := NewRun(run.Config, res)
	if len(got.ID) != 36 {
		t.Fatalf("id = %q, want uuid", got.ID)
	}
	got.Config.Tiers[0].Price = 1
	if run.Config.Tiers[0].Price != 120 {
		t.Fatal("NewRun shares the tier slice with the caller")
	}
}
