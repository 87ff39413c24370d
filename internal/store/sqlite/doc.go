// Package sqlite persists scored headline rows and pipeline run records in
// a single SQLite file.
//
// Rows are unique on (headline, url, ticker). Inserts use INSERT OR IGNORE,
// so re-importing a processed file never overwrites or duplicates a row.
// Score columns beyond the built-in four are added on demand as REAL
// columns named sentiment_<name>.
package sqlite
