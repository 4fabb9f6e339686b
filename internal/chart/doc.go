// Package chart renders one price chart per series.
//
// Each chart plots the captured prices of a single departure against the
// capture date, with a dashed grid and point markers. Charts are rendered
// as PNG (git.sr.ht/~sbinet/gg) for the site or as SVG (ajstarks/svgo).
// Both renderers draw from the same Layout so they stay visually aligned.
//
// Output files are named after the series slug, e.g.
// "STN_BGY_2026-08-22.png". A chart whose bytes have not changed is not
// rewritten, so scheduled rebuilds leave file timestamps and static-site
// caches alone.
package chart
