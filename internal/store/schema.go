package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS settings (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS monthly_rules (
    position             INTEGER PRIMARY KEY,
    title                TEXT NOT NULL DEFAULT '',
    amount               TEXT NOT NULL,
    day_of_month         INTEGER NOT NULL,
    active_from          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS planned_events (
    position             INTEGER PRIMARY KEY,
    title                TEXT NOT NULL DEFAULT '',
    amount               TEXT NOT NULL,
    date                 TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS real_movements (
    position             INTEGER PRIMARY KEY,
    title                TEXT NOT NULL DEFAULT '',
    amount               TEXT NOT NULL,
    date                 TEXT NOT NULL,
    note                 TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_movements_date ON real_movements(date);
`

const (
	keyYear           = "year"
	keyInitialBalance = "initial_balance"
	keyRevision       = "revision"
	keySavedAt        = "saved_at"
)
