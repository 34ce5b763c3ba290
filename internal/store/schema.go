package store

const Schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	status TEXT NOT NULL,
	display_name TEXT NOT NULL,
	thumbnail TEXT DEFAULT '',
	source_url TEXT DEFAULT '',
	media_path TEXT DEFAULT '',
	mime_type TEXT DEFAULT '',
	file_size INTEGER DEFAULT 0,
	transcript TEXT DEFAULT '',
	progress REAL DEFAULT 0,
	error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status);

CREATE TABLE IF NOT EXISTS library_items (
	id TEXT PRIMARY KEY,
	file_name TEXT NOT NULL,
	file_size INTEGER DEFAULT 0,
	source TEXT NOT NULL,
	source_url TEXT DEFAULT '',
	transcript TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS credentials (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	secret_value TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
