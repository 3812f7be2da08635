package cachestore

// schemaVersion is the cache's PRAGMA user_version. Opening a store whose
// version is below this is a hard error; opening one above it is also
// rejected, since this implementation doesn't know how to read the future.
const schemaVersion = 1

const schemaDDL = `
CREATE TABLE IF NOT EXISTS prop(
	file_id INTEGER PRIMARY KEY,
	value   INTEGER,
	size    INTEGER,
	mtime   INTEGER,
	ctime   INTEGER
);
CREATE INDEX IF NOT EXISTS prop_file_id_idx ON prop(file_id);
CREATE TABLE IF NOT EXISTS dir_contents(
	parent_id   INTEGER,
	basename    TEXT,
	obj_id      INTEGER,
	obj_is_file INTEGER,
	PRIMARY KEY (parent_id, basename)
);
CREATE TABLE IF NOT EXISTS metadata(
	file_id INTEGER PRIMARY KEY,
	size    INTEGER,
	mtime   INTEGER,
	ctime   INTEGER
);
`
