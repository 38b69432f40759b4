// Package server exposes the published snapshot over HTTP for rendering
// collaborators. It is strictly a read path: every request reloads the
// snapshot from disk, so a freshly published run is visible immediately,
// and nothing here can trigger the pipeline.
package server
