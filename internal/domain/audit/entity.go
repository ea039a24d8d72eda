package audit

import "time"

type Kind string

const (
	KindStaleOpenSession       Kind = "STALE_OPEN_SESSION"
	KindMultipleActiveSessions Kind = "MULTIPLE_ACTIVE_SESSIONS"
)

// MaxSessionIDs caps the session id list recorded on a
// MULTIPLE_ACTIVE_SESSIONS entry.
const MaxSessionIDs = 100

// Entry is an append-only operational audit record.
type Entry struct {
	ID        string
	UserID    string
	Kind      Kind
	Detail    map[string]any
	CreatedAt time.Time
}
