// Package snapshot persists the aggregated per-date event mapping.
//
// A snapshot is the full output of one pipeline run: a generation
// timestamp plus a mapping from ISO date keys (2006-01-02) to ordered
// event lists. Saving is an atomic replace (write to a temp file, rename
// into place), so a reader never observes a partially written document and
// a failed run never disturbs the previous snapshot. Loading is
// all-or-nothing: a document that cannot be decoded back into the
// canonical schema is rejected as corrupt, never partially recovered.
//
// ISO date keys sort lexically in chronological order, so the marshaled
// mapping (encoding/json emits map keys sorted) reads chronologically too.
package snapshot
