// Package source loads the registry of upstream pages to scrape.
//
// The registry is a CSV file with one row per page: the page URL followed
// by its category labels, comma-joined within the second field. Categories
// are open-vocabulary tags, so unknown or duplicate labels are accepted;
// only a malformed URL or an empty registry is an error.
package source
