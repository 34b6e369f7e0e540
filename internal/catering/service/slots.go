package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ms-catering/internal/models"
	"ms-catering/internal/schedule"
)

// ReconcileSlots aligns the persisted slot set with the event's currently
// configured period: one slot per expected day and meal type, slots outside
// the period deleted with their selections and grants. Idempotent and safe to
// run inline on every read; staff edits to enabled/phases on surviving slots
// are never touched.
func (s *CateringService) ReconcileSlots(ctx context.Context, eventID string) ([]models.MealSlot, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event", eventID)
	}

	days, err := event.Period().Days()
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", eventID, err)
	}

	existing, err := s.DB.SlotsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots for event %s: %w", eventID, err)
	}

	expected := make(map[string]schedule.Phase, len(days))
	for _, day := range days {
		expected[dayKey(day.Date)] = day.Phase
	}

	var deleteIDs []string
	have := make(map[string]bool, len(existing))
	for _, slot := range existing {
		if _, ok := expected[dayKey(slot.Date)]; !ok {
			deleteIDs = append(deleteIDs, slot.ID)
			continue
		}
		have[dayKey(slot.Date)+"/"+string(slot.MealType)] = true
	}

	var create []models.MealSlot
	for _, day := range days {
		for _, mealType := range schedule.MealTypes {
			if have[dayKey(day.Date)+"/"+string(mealType)] {
				continue
			}
			slot := models.MealSlot{
				ID:       uuid.New().String(),
				EventID:  eventID,
				Date:     schedule.DateOnly(day.Date),
				MealType: mealType,
				Enabled:  true,
			}
			slot.SetPhaseList([]schedule.Phase{day.Phase})
			create = append(create, slot)
		}
	}

	if err := s.DB.DeleteSlots(ctx, deleteIDs); err != nil {
		return nil, fmt.Errorf("failed to delete out-of-period slots: %w", err)
	}
	if err := s.DB.InsertSlots(ctx, create); err != nil {
		return nil, fmt.Errorf("failed to create missing slots: %w", err)
	}

	if len(create) > 0 || len(deleteIDs) > 0 {
		s.logInfo("RECONCILE", fmt.Sprintf("event %s: created %d, deleted %d meal slots", eventID, len(create), len(deleteIDs)))
		if s.Kafka != nil {
			if err := s.Kafka.PublishSlotsReconciled(eventID, len(create), len(deleteIDs)); err != nil {
				s.logWarn("KAFKA", fmt.Sprintf("failed to publish slot reconciliation for event %s: %v", eventID, err))
			}
		}
	}

	slots, err := s.DB.SlotsByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload slots for event %s: %w", eventID, err)
	}
	sortSlots(slots)
	return slots, nil
}

// UpdateSlotParams carries the staff-editable slot fields. Nil means leave
// unchanged.
type UpdateSlotParams struct {
	Enabled *bool
	Phases  []schedule.Phase
}

// UpdateSlot applies a staff edit to a slot's enabled flag and phase tags.
// Phases may carry more than one entry at a phase boundary; the reconciler
// never removes a human-added one.
func (s *CateringService) UpdateSlot(ctx context.Context, mealID string, params UpdateSlotParams) (*models.MealSlot, error) {
	slot, err := s.DB.SlotByID(ctx, mealID)
	if err != nil {
		return nil, notFound(err, "meal slot", mealID)
	}

	if params.Enabled != nil {
		slot.Enabled = *params.Enabled
	}
	if params.Phases != nil {
		if len(params.Phases) == 0 {
			return nil, fmt.Errorf("meal slot %s: phases must not be empty: %w", mealID, ErrInvalidPeriod)
		}
		for _, p := range params.Phases {
			switch p {
			case schedule.PhaseSetup, schedule.PhaseEvent, schedule.PhaseTeardown:
			default:
				return nil, fmt.Errorf("meal slot %s: unknown phase %q: %w", mealID, p, ErrInvalidPeriod)
			}
		}
		slot.SetPhaseList(params.Phases)
	}

	if err := s.DB.UpdateSlotSettings(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to update meal slot %s: %w", mealID, err)
	}
	return slot, nil
}

func dayKey(t time.Time) string {
	return schedule.DateOnly(t).Format("2006-01-02")
}

func sortSlots(slots []models.MealSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].Date.Equal(slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return mealRank(slots[i].MealType) < mealRank(slots[j].MealType)
	})
}
