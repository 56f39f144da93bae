// Package session owns the diagnostic session lifecycle: one clinician
// working one patient chart through the gatekeeper sequence. The service
// orchestrates the chart, gates, screening, and traits packages; the
// repositories persist sessions as a whole.
package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mdx/mdx/internal/chart"
)

// Session is one diagnostic workup. The chart is session-scoped and never
// shared across sessions.
type Session struct {
	ID        uuid.UUID    `json:"id"`
	Clinician string       `json:"clinician"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Chart     *chart.Chart `json:"chart"`
}

// clone deep-copies a session through its JSON form, the same shape the
// Postgres and Redis stores persist. The memory store uses it so callers
// never alias store-internal state.
func clone(s *Session) (*Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
