package sqlite

const schema = `
-- Signals table. signal_id is the canonical uppercase identifier.
CREATE TABLE IF NOT EXISTS signals (
    id INTEGER PRIMARY KEY,
    signal_id TEXT UNIQUE NOT NULL,
    signal_kind TEXT NOT NULL DEFAULT 'INTERNAL' CHECK(signal_kind IN ('INPUT','OUTPUT','INTERNAL')),
    description TEXT NOT NULL DEFAULT '',
    from_box TEXT NOT NULL DEFAULT '',
    via_boxes TEXT NOT NULL DEFAULT '[]',  -- JSON array, ordered
    to_box TEXT NOT NULL DEFAULT '',
    program_address TEXT NOT NULL DEFAULT '',
    logic_group TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_signals_logic_group ON signals(logic_group);
CREATE INDEX IF NOT EXISTS idx_signals_program_address ON signals(program_address);

-- One logic equation per signal; re-import overwrites.
CREATE TABLE IF NOT EXISTS logic_equations (
    id INTEGER PRIMARY KEY,
    target_signal_id TEXT UNIQUE NOT NULL,
    raw_expr TEXT NOT NULL DEFAULT '',
    normalized_expr TEXT NOT NULL DEFAULT '',
    source_label TEXT NOT NULL DEFAULT '',
    source_page INTEGER,
    last_imported_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY(target_signal_id) REFERENCES signals(signal_id)
);

-- Box wiring runs. Duplicate runs are idempotent no-ops.
CREATE TABLE IF NOT EXISTS box_connections (
    id INTEGER PRIMARY KEY,
    from_box_name TEXT NOT NULL DEFAULT '',
    from_box_no TEXT NOT NULL DEFAULT '',
    kabel_no TEXT NOT NULL DEFAULT '',
    to_box_no TEXT NOT NULL DEFAULT '',
    to_box_name TEXT NOT NULL DEFAULT '',
    UNIQUE(from_box_no, to_box_no, kabel_no)
);

-- Tool configuration key/value store.
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
