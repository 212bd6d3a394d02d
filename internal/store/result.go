// Package store persists result bundles: a JSON file sink for local runs
// and a Postgres sink backing the API.
package store

import "fmt"

// Result tracks counts and errors from persisting one bundle.
type Result struct {
	RunID           int64
	EventsInserted  int
	PlayersInserted int
	RatingsInserted int
	Errors          []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the store operation.
func (r *Result) Summary() string {
	return fmt.Sprintf("run=%d events=%d players=%d ratings=%d errors=%d",
		r.RunID, r.EventsInserted, r.PlayersInserted, r.RatingsInserted, len(r.Errors))
}
