package forms

import (
	"sync"
	"time"

	"cvbuilder-backend/cv/model"
)

// Session owns one CV record for the duration of a single collection pass.
// The record never outlives the session; there is no persistence.
type Session struct {
	ID             string
	State          State
	Record         model.CVModel
	RequireConfirm bool
	TemplateName   string
	Filename       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ExpiresAt      time.Time

	// mu serializes operations against this session. The conversational
	// engine sends one turn at a time, but the lock keeps a stray retry
	// from racing the pipeline.
	mu sync.Mutex
}

func (s *Session) discardRecord() {
	s.Record = model.CVModel{}
}
