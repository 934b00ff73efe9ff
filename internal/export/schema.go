package export

const schemaSQL = `
CREATE TABLE IF NOT EXISTS projection_runs (
    run_id               TEXT PRIMARY KEY,
    generated_at         TEXT NOT NULL,
    starting_users       INTEGER NOT NULL,
    months               INTEGER NOT NULL,
    growth_value         REAL NOT NULL,
    growth_mode          TEXT NOT NULL,
    churn_value          REAL NOT NULL,
    churn_mode           TEXT NOT NULL,
    effective_arpu       REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS pricing_tiers (
    run_id               TEXT NOT NULL REFERENCES projection_runs(run_id) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    price                REAL NOT NULL,
    adoption_fraction    REAL NOT NULL,
    cadence              TEXT NOT NULL,
    uses                 INTEGER NOT NULL,
    PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS projection_records (
    run_id               TEXT NOT NULL REFERENCES projection_runs(run_id) ON DELETE CASCADE,
    month                INTEGER NOT NULL,
    users                INTEGER NOT NULL,
    revenue              REAL NOT NULL,
    revenue_cents        TEXT NOT NULL,
    PRIMARY KEY (run_id, month)
);
`
