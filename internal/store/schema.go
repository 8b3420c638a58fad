package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS credit_data (
    id                   INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp            TEXT,
    session_name         TEXT,
    available_acus       TEXT,
    credit_used          TEXT,
    credit_limit         TEXT,
    acus_used            TEXT,
    raw_json             TEXT NOT NULL,
    recorded_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_credit_data_timestamp ON credit_data(timestamp);
`
