package models

import "time"

// WatchlistEntry represents a tracked symbol. Enabled entries are
// pre-warmed by the scheduler so their analysis payloads stay cached.
type WatchlistEntry struct {
	Symbol    string    `json:"symbol"`
	Enabled   bool      `json:"enabled"`
	Period    string    `json:"period"`
	Interval  string    `json:"interval"`
	Notes     string    `json:"notes,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
