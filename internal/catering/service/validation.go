package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-catering/internal/models"
)

// Validate performs the at-most-once consumption transition for one
// entitlement. For volunteers and artists the id is the selection id; for
// ticket holders it is the order-item id and mealID is required, because
// grant rows are lazily materialized on first validation. For selections a
// non-empty mealID additionally asserts the claimed meal context.
//
// Exactly one of two concurrent calls wins; the loser gets
// ErrAlreadyValidated deterministically. There is no read-then-write window:
// the decision is a single conditional UPDATE (or a unique-constrained
// INSERT on the lazy grant path).
func (s *CateringService) Validate(ctx context.Context, kind EntitlementKind, id, mealID string) (time.Time, error) {
	now := time.Now().UTC()

	var err error
	switch kind {
	case KindVolunteer:
		err = s.validateVolunteer(ctx, id, mealID, now)
	case KindArtist:
		err = s.validateArtist(ctx, id, mealID, now)
	case KindParticipant:
		err = s.validateTicketHolder(ctx, id, mealID, now)
	default:
		return time.Time{}, fmt.Errorf("unknown entitlement kind %q: %w", kind, ErrNotFound)
	}
	if err != nil {
		return time.Time{}, err
	}

	s.logInfo("VALIDATION", fmt.Sprintf("%s entitlement %s validated", kind, id))
	if s.Kafka != nil {
		if kerr := s.Kafka.PublishMealValidated(kind, id, mealID, now); kerr != nil {
			s.logWarn("KAFKA", fmt.Sprintf("failed to publish validation of %s %s: %v", kind, id, kerr))
		}
	}
	if s.Cache != nil && mealID != "" {
		if cerr := s.Cache.InvalidateMealStats(ctx, mealID); cerr != nil {
			s.logWarn("CACHE", fmt.Sprintf("failed to invalidate stats for meal %s: %v", mealID, cerr))
		}
	}
	return now, nil
}

func (s *CateringService) validateVolunteer(ctx context.Context, id, mealID string, now time.Time) error {
	selection, err := s.DB.VolunteerSelectionByID(ctx, id)
	if err != nil {
		return notFound(err, "selection", id)
	}
	if mealID != "" && selection.MealID != mealID {
		return fmt.Errorf("selection %s does not belong to meal %s: %w", id, mealID, ErrNotFound)
	}

	rows, err := s.DB.ConsumeVolunteerSelection(ctx, id, now)
	if err != nil {
		return fmt.Errorf("failed to consume selection %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("selection %s: %w", id, ErrAlreadyValidated)
	}
	return nil
}

func (s *CateringService) validateArtist(ctx context.Context, id, mealID string, now time.Time) error {
	selection, err := s.DB.ArtistSelectionByID(ctx, id)
	if err != nil {
		return notFound(err, "selection", id)
	}
	if mealID != "" && selection.MealID != mealID {
		return fmt.Errorf("selection %s does not belong to meal %s: %w", id, mealID, ErrNotFound)
	}

	rows, err := s.DB.ConsumeArtistSelection(ctx, id, now)
	if err != nil {
		return fmt.Errorf("failed to consume selection %s: %w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("selection %s: %w", id, ErrAlreadyValidated)
	}
	return nil
}

// validateTicketHolder is the lazy-grant path: refunded tickets never grant
// access, the tier or a purchased option must unlock the meal, and the grant
// row is created already consumed when missing. A lost insert race surfaces
// as AlreadyValidated, same as a lost update race.
func (s *CateringService) validateTicketHolder(ctx context.Context, orderItemID, mealID string, now time.Time) error {
	if mealID == "" {
		return fmt.Errorf("meal id required for ticket validation: %w", ErrNotFound)
	}

	item, err := s.DB.GetOrderItemByID(ctx, orderItemID)
	if err != nil {
		return notFound(err, "order item", orderItemID)
	}
	order, err := s.DB.GetOrderByID(ctx, item.OrderID)
	if err != nil {
		return notFound(err, "order", item.OrderID)
	}
	if item.State == models.ItemRefunded || order.Status == models.OrderRefunded {
		return fmt.Errorf("ticket %s is refunded: %w", orderItemID, ErrNotEligible)
	}

	if _, err := s.DB.SlotByID(ctx, mealID); err != nil {
		return notFound(err, "meal slot", mealID)
	}

	granted, err := s.DB.TierGrantExists(ctx, item.TierID, mealID)
	if err != nil {
		return fmt.Errorf("failed to check tier grant: %w", err)
	}
	if !granted {
		granted, err = s.DB.OptionGrantExistsForItem(ctx, orderItemID, mealID)
		if err != nil {
			return fmt.Errorf("failed to check option grants: %w", err)
		}
	}
	if !granted {
		return fmt.Errorf("ticket %s has no grant for meal %s: %w", orderItemID, mealID, ErrNotEligible)
	}

	rows, err := s.DB.ConsumeGrant(ctx, orderItemID, mealID, now)
	if err != nil {
		return fmt.Errorf("failed to consume grant: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// No row was updated: either the grant does not exist yet or it is
	// already consumed. The unique constraint decides.
	inserted, err := s.DB.InsertGrantConsumed(ctx, models.MealGrant{
		ID:          uuid.New().String(),
		OrderItemID: orderItemID,
		MealID:      mealID,
		ConsumedAt:  &now,
	})
	if err != nil {
		return fmt.Errorf("failed to create grant: %w", err)
	}
	if !inserted {
		return fmt.Errorf("ticket %s meal %s: %w", orderItemID, mealID, ErrAlreadyValidated)
	}
	return nil
}

// Unvalidate is the administrative reverse transition, outside the normal
// scan flow. For ticket holders mealID selects the grant.
func (s *CateringService) Unvalidate(ctx context.Context, kind EntitlementKind, id, mealID string) error {
	var (
		rows int64
		err  error
	)
	switch kind {
	case KindVolunteer:
		rows, err = s.DB.UnconsumeVolunteerSelection(ctx, id)
	case KindArtist:
		rows, err = s.DB.UnconsumeArtistSelection(ctx, id)
	case KindParticipant:
		if mealID == "" {
			return fmt.Errorf("meal id required for ticket unvalidation: %w", ErrNotFound)
		}
		rows, err = s.DB.UnconsumeGrant(ctx, id, mealID)
	default:
		return fmt.Errorf("unknown entitlement kind %q: %w", kind, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to unvalidate %s %s: %w", kind, id, err)
	}
	if rows == 0 {
		return fmt.Errorf("no consumed entitlement for %s %s: %w", kind, id, ErrNotFound)
	}

	s.logWarn("VALIDATION", fmt.Sprintf("%s entitlement %s unvalidated by staff", kind, id))
	if s.Cache != nil && mealID != "" {
		if cerr := s.Cache.InvalidateMealStats(ctx, mealID); cerr != nil {
			s.logWarn("CACHE", fmt.Sprintf("failed to invalidate stats for meal %s: %v", mealID, cerr))
		}
	}
	return nil
}
