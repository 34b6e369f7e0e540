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

// SyncVolunteerSelections reconciles the event's slots, evaluates the
// volunteer against every enabled slot, creates default-accepted selections
// for newly eligible slots, deletes selections that lost eligibility, and
// returns the merged, up-to-date view. Concurrent runs for the same
// volunteer converge: duplicate creates are dropped on the unique constraint
// and the final re-read absorbs the race.
func (s *CateringService) SyncVolunteerSelections(ctx context.Context, volunteerID string) ([]SelectionView, error) {
	volunteer, err := s.DB.GetVolunteerByID(ctx, volunteerID)
	if err != nil {
		return nil, notFound(err, "volunteer", volunteerID)
	}

	slots, err := s.ReconcileSlots(ctx, volunteer.EventID)
	if err != nil {
		return nil, err
	}

	existing, err := s.DB.VolunteerSelectionsByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selections for volunteer %s: %w", volunteerID, err)
	}

	plan := diffSelections(volunteer.Availability(), slots, selectionRefs(existing))

	var deleteIDs []string
	for _, ref := range plan.remove {
		deleteIDs = append(deleteIDs, ref.id)
	}
	if err := s.DB.DeleteVolunteerSelections(ctx, deleteIDs); err != nil {
		return nil, fmt.Errorf("failed to delete stale selections for volunteer %s: %w", volunteerID, err)
	}

	now := time.Now().UTC()
	var create []models.VolunteerSelection
	for _, mealID := range plan.add {
		create = append(create, models.VolunteerSelection{
			ID:          uuid.New().String(),
			VolunteerID: volunteerID,
			MealID:      mealID,
			Accepted:    true,
			CreatedAt:   now,
		})
	}
	if err := s.DB.InsertVolunteerSelections(ctx, create); err != nil {
		return nil, fmt.Errorf("failed to create selections for volunteer %s: %w", volunteerID, err)
	}

	if len(plan.add) > 0 || len(deleteIDs) > 0 {
		s.logInfo("SYNC", fmt.Sprintf("volunteer %s: %d selections created, %d deleted", volunteerID, len(plan.add), len(deleteIDs)))
	}

	fresh, err := s.DB.VolunteerSelectionsByVolunteer(ctx, volunteerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload selections for volunteer %s: %w", volunteerID, err)
	}
	return buildViews(slots, selectionRefs(fresh)), nil
}

// SyncArtistSelections is the artist twin of SyncVolunteerSelections.
func (s *CateringService) SyncArtistSelections(ctx context.Context, artistID string) ([]SelectionView, error) {
	artist, err := s.DB.GetArtistByID(ctx, artistID)
	if err != nil {
		return nil, notFound(err, "artist", artistID)
	}

	slots, err := s.ReconcileSlots(ctx, artist.EventID)
	if err != nil {
		return nil, err
	}

	existing, err := s.DB.ArtistSelectionsByArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to load selections for artist %s: %w", artistID, err)
	}

	plan := diffSelections(artist.Availability(), slots, artistSelectionRefs(existing))

	var deleteIDs []string
	for _, ref := range plan.remove {
		deleteIDs = append(deleteIDs, ref.id)
	}
	if err := s.DB.DeleteArtistSelections(ctx, deleteIDs); err != nil {
		return nil, fmt.Errorf("failed to delete stale selections for artist %s: %w", artistID, err)
	}

	now := time.Now().UTC()
	var create []models.ArtistSelection
	for _, mealID := range plan.add {
		create = append(create, models.ArtistSelection{
			ID:        uuid.New().String(),
			ArtistID:  artistID,
			MealID:    mealID,
			Accepted:  true,
			CreatedAt: now,
		})
	}
	if err := s.DB.InsertArtistSelections(ctx, create); err != nil {
		return nil, fmt.Errorf("failed to create selections for artist %s: %w", artistID, err)
	}

	if len(plan.add) > 0 || len(deleteIDs) > 0 {
		s.logInfo("SYNC", fmt.Sprintf("artist %s: %d selections created, %d deleted", artistID, len(plan.add), len(deleteIDs)))
	}

	fresh, err := s.DB.ArtistSelectionsByArtist(ctx, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload selections for artist %s: %w", artistID, err)
	}
	return buildViews(slots, artistSelectionRefs(fresh)), nil
}

// SetSelectionAccepted toggles a participant's opt-in on one selection.
func (s *CateringService) SetSelectionAccepted(ctx context.Context, kind EntitlementKind, selectionID string, accepted bool) error {
	var (
		rows int64
		err  error
	)
	switch kind {
	case KindVolunteer:
		rows, err = s.DB.SetVolunteerSelectionAccepted(ctx, selectionID, accepted)
	case KindArtist:
		rows, err = s.DB.SetArtistSelectionAccepted(ctx, selectionID, accepted)
	default:
		return fmt.Errorf("selections do not exist for kind %q: %w", kind, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update selection %s: %w", selectionID, err)
	}
	if rows == 0 {
		return fmt.Errorf("selection %s: %w", selectionID, ErrNotFound)
	}
	return nil
}

// SelectionOwner returns the participant a selection belongs to, for
// ownership checks at the API boundary.
func (s *CateringService) SelectionOwner(ctx context.Context, kind EntitlementKind, selectionID string) (string, error) {
	switch kind {
	case KindVolunteer:
		selection, err := s.DB.VolunteerSelectionByID(ctx, selectionID)
		if err != nil {
			return "", notFound(err, "selection", selectionID)
		}
		return selection.VolunteerID, nil
	case KindArtist:
		selection, err := s.DB.ArtistSelectionByID(ctx, selectionID)
		if err != nil {
			return "", notFound(err, "selection", selectionID)
		}
		return selection.ArtistID, nil
	default:
		return "", fmt.Errorf("selections do not exist for kind %q: %w", kind, ErrNotFound)
	}
}

// selectionRef is the synchronizer's minimal view of an existing selection.
type selectionRef struct {
	id         string
	mealID     string
	accepted   bool
	consumedAt *time.Time
}

type selectionPlan struct {
	add    []string // meal ids needing a new selection
	remove []selectionRef
}

// diffSelections computes the create/delete plan for one participant.
// Selections on disabled slots or slots that vanished are removed alongside
// slots the participant is no longer eligible for.
func diffSelections(av schedule.Availability, slots []models.MealSlot, existing []selectionRef) selectionPlan {
	eligible := make(map[string]bool)
	for _, slot := range slots {
		if slot.Enabled && schedule.IsEligible(av, slot.EvaluatorSlot()) {
			eligible[slot.ID] = true
		}
	}

	covered := make(map[string]bool, len(existing))
	var plan selectionPlan
	for _, ref := range existing {
		if !eligible[ref.mealID] {
			plan.remove = append(plan.remove, ref)
			continue
		}
		covered[ref.mealID] = true
	}
	for _, slot := range slots {
		if eligible[slot.ID] && !covered[slot.ID] {
			plan.add = append(plan.add, slot.ID)
		}
	}
	return plan
}

func selectionRefs(selections []models.VolunteerSelection) []selectionRef {
	refs := make([]selectionRef, len(selections))
	for i, sel := range selections {
		refs[i] = selectionRef{id: sel.ID, mealID: sel.MealID, accepted: sel.Accepted, consumedAt: sel.ConsumedAt}
	}
	return refs
}

func artistSelectionRefs(selections []models.ArtistSelection) []selectionRef {
	refs := make([]selectionRef, len(selections))
	for i, sel := range selections {
		refs[i] = selectionRef{id: sel.ID, mealID: sel.MealID, accepted: sel.Accepted, consumedAt: sel.ConsumedAt}
	}
	return refs
}

func buildViews(slots []models.MealSlot, selections []selectionRef) []SelectionView {
	byMeal := make(map[string]selectionRef, len(selections))
	for _, ref := range selections {
		byMeal[ref.mealID] = ref
	}

	var views []SelectionView
	for _, slot := range slots {
		ref, ok := byMeal[slot.ID]
		if !ok {
			continue
		}
		views = append(views, SelectionView{
			SelectionID: ref.id,
			MealID:      slot.ID,
			Date:        slot.Date,
			MealType:    slot.MealType,
			Phases:      slot.PhaseList(),
			Accepted:    ref.accepted,
			ConsumedAt:  ref.consumedAt,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].Date.Equal(views[j].Date) {
			return views[i].Date.Before(views[j].Date)
		}
		return mealRank(views[i].MealType) < mealRank(views[j].MealType)
	})
	return views
}
