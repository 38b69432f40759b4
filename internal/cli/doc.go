// Package cli wires the pipeline into the eventsnap command-line tool.
//
// Two commands exist: "run" executes one full scrape-normalize-persist
// pass and reports the outcome, and "serve" exposes the published
// snapshot over HTTP. A completed run exits 0 even when some sources
// failed; only total failures (bad registry, store write failure) exit
// non-zero.
package cli
