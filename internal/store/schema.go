package store

const schemaVersion = 3

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS sections (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	conversation_id TEXT NOT NULL DEFAULT 'default',
	color_hex TEXT,
	section_id INTEGER REFERENCES sections(id) ON DELETE SET NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	parent_id INTEGER REFERENCES tags(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS note_tags (
	note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	tag_id INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY(note_id, tag_id)
);

CREATE INDEX IF NOT EXISTS notes_by_conversation ON notes(conversation_id, updated_at);
CREATE INDEX IF NOT EXISTS note_tags_by_tag ON note_tags(tag_id);
CREATE INDEX IF NOT EXISTS tags_by_parent ON tags(parent_id);
`
