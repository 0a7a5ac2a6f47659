package domain

import "time"

// Event is one row of the site's activity log. RawDate is the site-local
// display string ("Aujourd'hui à 17:23") and must be resolved against
// RetrievedAt, the instant the page was fetched, before it is orderable; the
// store keeps both forms. Resolving against any later instant shifts
// relative dates across midnight. Uniqueness tuple: (Event, Territory,
// resolved date, From).
type Event struct {
	Event       string
	Details     string
	From        string
	WithWhom    string
	RawDate     string
	RetrievedAt time.Time
	Territory   string
	Source      string
}

// Placeholder texts used when a log row fails to resolve a column. Rows are
// never dropped; they degrade to these values.
const (
	UnknownEvent     = "Unknown Event"
	UnknownActor     = "Unknown"
	NoCounterpart    = "None"
	UnknownDate      = "Unknown Date"
	UnknownTerritory = "Unknown Territory"
)
