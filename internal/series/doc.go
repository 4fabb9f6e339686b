// Package series stores the price history as an append-only CSV file and
// groups it into per-departure series.
//
// The CSV is the source of truth for charts and the site; the SQLite
// database only mirrors it for queries. Files written by older versions of
// the tracker, which used a depart_date column and no arrival_date, are
// still readable.
package series
