// Package pipeline orchestrates one batch run of the scraper: load the
// source registry, fetch every source, extract events, aggregate across
// sources, and atomically publish the snapshot.
//
// Failure policy: registry errors are fatal and abort before any fetching;
// per-source fetch failures (and sources yielding zero extractable
// listings) are recorded in the run report and never abort the run;
// per-listing extraction misses are silent. A run either publishes a full
// replacement snapshot or leaves the previous one untouched.
package pipeline
