// Package export writes projection runs to CSV, JSON and SQLite files.
package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finproj/internal/model"
)

// ErrUnknownFormat is returned for format names and extensions we can't write.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is an export file type.
type Format int

const (
	CSV Format = iota
	JSON
	SQLite
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSON:
		return "json"
	case SQLite:
		return "sqlite"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "sqlite", "sqlite3", "db":
		return SQLite, nil
	}
	return CSV, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// DetectFormat infers the format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return SQLite, nil
	}
	return CSV, fmt.Errorf("%w: can't infer from %q", ErrUnknownFormat, filepath.Base(path))
}

// Run is one exported projection: the inputs and the records they produced.
type Run struct {
	ID            string                   `json:"id"`
	GeneratedAt   time.Time                `json:"generated_at"`
	Config        model.ProjectionConfig   `json:"config"`
	EffectiveARPU float64                  `json:"effective_arpu"`
	Records       []model.ProjectionRecord `json:"records"`
}

// NewRun stamps a result with a fresh id and the current time.
func NewRun(cfg model.ProjectionConfig, res model.ProjectionResult) Run {
	return Run{
		ID:            uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		Config:        cfg.Clone(),
		EffectiveARPU: res.EffectiveARPU,
		Records:       res.Records,
	}
}

// WriteFile writes run to path in the given format, creating parent
// directories as needed.
func WriteFile(path string, f Format, run Run) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating export dir: %w", err)
		}
	}

	if f == SQLite {
		return WriteSQLite(path, run)
	}

	file, err := os.Create(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}

	switch f {
	case CSV:
		err = WriteCSV(file, run.Records)
	case JSON:
		err = WriteJSON(file, run)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing export file: %w", cerr)
	}
	return err
}

// DefaultFilename builds a timestamped file name for quick exports.
func DefaultFilename(f Format, now time.Time) string {
	ext := f.String()
	if f == SQLite {
		ext = "db"
	}
	return "projection-" + now.Format("20060102-150405") + "." + ext
}

// Cents renders an amount rounded half away from zero to two decimals.
// Non-finite amounts render as NaN, +Inf or -Inf.
func Cents(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}
