package holiday

import "time"

// Holiday marks a date as company non-working. The date key is the
// identifier.
type Holiday struct {
	Date      string // YYYY-MM-DD
	Name      string
	CreatedAt time.Time
}
