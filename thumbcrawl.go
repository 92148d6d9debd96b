// Package thumbcrawl provides a CLI-based thumbnail harvester.
// It walks the pages of a search-results site in a browser, finds the
// thumbnail images on each rendered page, and saves them to a run directory
// under collision-free file names, recording per-item success or failure.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, imaging/, sqlite/).
package thumbcrawl
