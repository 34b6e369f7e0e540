package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"

	"ms-catering/internal/schedule"
)

// MealSlot is one catered meal on one calendar day of an event. Rows are
// created and deleted only by the slot reconciler; staff may toggle Enabled
// and edit Phases but never add or remove rows directly.
type MealSlot struct {
	bun.BaseModel `bun:"table:meal_slots,alias:meal_slot"`

	ID       string            `bun:"id,pk" json:"id"`
	EventID  string            `bun:"event_id,notnull,unique:meal_slot_day" json:"event_id"`
	Date     time.Time         `bun:"date,notnull,unique:meal_slot_day" json:"date"`
	MealType schedule.MealType `bun:"meal_type,notnull,unique:meal_slot_day" json:"meal_type"`
	Phases   string            `bun:"phases,notnull" json:"phases"`
	Enabled  bool              `bun:"enabled,notnull" json:"enabled"`
}

// PhaseList decodes the comma-joined phases column.
func (m *MealSlot) PhaseList() []schedule.Phase {
	if m.Phases == "" {
		return nil
	}
	parts := strings.Split(m.Phases, ",")
	phases := make([]schedule.Phase, 0, len(parts))
	for _, p := range parts {
		phases = append(phases, schedule.Phase(strings.TrimSpace(p)))
	}
	return phases
}

// SetPhaseList encodes phases into the comma-joined column format.
func (m *MealSlot) SetPhaseList(phases []schedule.Phase) {
	parts := make([]string, len(phases))
	for i, p := range phases {
		parts[i] = string(p)
	}
	m.Phases = strings.Join(parts, ",")
}

// EvaluatorSlot projects the row onto the eligibility evaluator's slot view.
func (m *MealSlot) EvaluatorSlot() schedule.Slot {
	return schedule.Slot{
		Date:     m.Date,
		MealType: m.MealType,
		Phases:   m.PhaseList(),
	}
}
