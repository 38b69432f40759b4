// Package fetch retrieves raw page markup for each registered source.
//
// Sources are fetched concurrently through a bounded worker pool, one
// result per source in registry order. A failed fetch never aborts the
// run: errors are absorbed into the per-source Result so the pipeline can
// degrade to the remaining sources. Pages that gate their listings behind
// script execution are rendered in a headless browser; plain pages are
// served by a cheap HTTP GET.
package fetch
