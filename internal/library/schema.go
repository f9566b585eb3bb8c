// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package library

type schemaRevision struct {
	version    int
	statements []string
}

// schemaRevisions is append-only. Revision numbers are stored in
// PRAGMA user_version.
var schemaRevisions = []schemaRevision{
	{
		version: 1,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS track_locations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				location TEXT UNIQUE NOT NULL,
				filename TEXT NOT NULL,
				directory TEXT NOT NULL,
				filesize INTEGER NOT NULL DEFAULT 0,
				fs_deleted INTEGER NOT NULL DEFAULT 0,
				needs_verification INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE IF NOT EXISTS library (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				artist TEXT,
				title TEXT,
				album TEXT,
				location INTEGER REFERENCES track_locations(id),
				duration REAL NOT NULL DEFAULT 0,
				bpm REAL NOT NULL DEFAULT 0,
				replaygain REAL NOT NULL DEFAULT 0,
				mixxx_deleted INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE INDEX IF NOT EXISTS idx_track_locations_directory ON track_locations(directory)`,
		},
	},
	{
		// multiple library folders
		version: 2,
		statements: []string{
			`CREATE TABLE IF NOT EXISTS directories (
				directory TEXT UNIQUE NOT NULL
			)`,
		},
	},
	{
		// cover art
		version: 3,
		statements: []string{
			`ALTER TABLE library ADD COLUMN coverart_source INTEGER NOT NULL DEFAULT 0`,
			`ALTER TABLE library ADD COLUMN coverart_location TEXT`,
			`ALTER TABLE library ADD COLUMN coverart_hash INTEGER NOT NULL DEFAULT 0`,
		},
	},
}

// LatestSchemaVersion is the revision InitSchema brings a database to.
func LatestSchemaVersion() int {
	return schemaRevisions[len(schemaRevisions)-1].version
}
