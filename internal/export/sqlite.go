package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/finproj/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening export db: %w", err)
	}
	return db, nil
}

// WriteSQLite writes run into a fresh database at path. The database is
// built next to path and renamed over it, so a failed write leaves any
// existing export untouched.
func WriteSQLite(path string, run Run) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp export: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("creating temp export: %w", err)
	}

	if err := writeSQLiteDB(tmpPath, run); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing export: %w", err)
	}
	return nil
}

func writeSQLiteDB(path string, run Run) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	cfg := run.Config
	_, err = tx.Exec(`INSERT INTO projection_runs
		(run_id, generated_at, starting_users, months, growth_value, growth_mode,
		 churn_value, churn_mode, effective_arpu)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.GeneratedAt.UTC().Format(time.RFC3339), cfg.StartingUsers, cfg.Months,
		cfg.Growth.Value, cfg.Growth.Mode.String(), cfg.Churn.Value, cfg.Churn.Mode.String(),
		run.EffectiveARPU,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	for i, t := range cfg.Tiers {
		_, err = tx.Exec(`INSERT INTO pricing_tiers
			(run_id, position, price, adoption_fraction, cadence, uses)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, t.Price, t.AdoptionFraction, t.Cadence.String(), t.Uses,
		)
		if err != nil {
			return fmt.Errorf("inserting tier %d: %w", i, err)
		}
	}

	stmt, err := tx.Prepare(`INSERT INTO projection_records
		(run_id, month, users, revenue, revenue_cents) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range run.Records {
		if _, err := stmt.Exec(run.ID, r.Month, r.Users, r.Revenue, Cents(r.Revenue)); err != nil {
			return fmt.Errorf("inserting month %d: %w", r.Month, err)
		}
	}

	return tx.Commit()
}

// ReadSQLite loads the run stored in an export database.
func ReadSQLite(path string) (Run, error) {
	if _, err := os.Stat(path); err != nil {
		return Run{}, fmt.Errorf("opening export db: %w", err)
	}

	db, err := openDB(path)
	if err != nil {
		return Run{}, err
	}
	defer func() { _ = db.Close() }()

	var (
		run         Run
		generatedAt string
		growthMode  string
		churnMode   string
	)
	err = db.QueryRow(`SELECT run_id, generated_at, starting_users, months, growth_value,
		growth_mode, churn_value, churn_mode, effective_arpu FROM projection_runs LIMIT 1`).Scan(
		&run.ID, &generatedAt, &run.Config.StartingUsers, &run.Config.Months,
		&run.Config.Growth.Value, &growthMode, &run.Config.Churn.Value, &churnMode,
		&run.EffectiveARPU,
	)
	if err != nil {
		return Run{}, fmt.Errorf("reading run: %w", err)
	}
	if run.GeneratedAt, err = time.Parse(time.RFC3339, generatedAt); err != nil {
		return Run{}, fmt.Errorf("parsing generated_at: %w", err)
	}
	if err := run.Config.Growth.Mode.UnmarshalText([]byte(growthMode)); err != nil {
		return Run{}, err
	}
	if err := run.Config.Churn.Mode.UnmarshalText([]byte(churnMode)); err != nil {
		return Run{}, err
	}

	tiers, err := db.Query(`SELECT price, adoption_fraction, cadence, uses
		FROM pricing_tiers WHERE run_id = ? ORDER BY position`, run.ID)
	if err != nil {
		return Run{}, fmt.Errorf("reading tiers: %w", err)
	}
	defer func() { _ = tiers.Close() }()
	for tiers.Next() {
		var (
			t       model.PricingTier
			cadence string
		)
		if err := tiers.Scan(&t.Price, &t.AdoptionFraction, &cadence, &t.Uses); err != nil {
			return Run{}, err
		}
		if err := t.Cadence.UnmarshalText([]byte(cadence)); err != nil {
			return Run{}, err
		}
		run.Config.Tiers = append(run.Config.Tiers, t)
	}
	if err := tiers.Err(); err != nil {
		return Run{}, err
	}

	rows, err := db.Query(`SELECT month, users, revenue FROM projection_records
		WHERE run_id = ? ORDER BY month`, run.ID)
	if err != nil {
		return Run{}, fmt.Errorf("reading records: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var r model.ProjectionRecord
		if err := rows.Scan(&r.Month, &r.Users, &r.Revenue); err != nil {
			return Run{}, err
		}
		run.Records = append(run.Records, r)
	}
	return run, rows.Err()
}
