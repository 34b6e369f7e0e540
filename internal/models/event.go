package models

import (
	"time"

	"github.com/uptrace/bun"

	"ms-catering/internal/schedule"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:event"`

	ID          string     `bun:"id,pk" json:"id"`
	Name        string     `bun:"name,notnull" json:"name"`
	StartDate   time.Time  `bun:"start_date,notnull" json:"start_date"`
	EndDate     time.Time  `bun:"end_date,notnull" json:"end_date"`
	SetupStart  *time.Time `bun:"setup_start" json:"setup_start,omitempty"`
	TeardownEnd *time.Time `bun:"teardown_end" json:"teardown_end,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"created_at"`
}

// Period maps the event's structural dates onto the resolver's input.
func (e *Event) Period() schedule.Period {
	return schedule.Period{
		EventStart:  e.StartDate,
		EventEnd:    e.EndDate,
		SetupStart:  e.SetupStart,
		TeardownEnd: e.TeardownEnd,
	}
}
