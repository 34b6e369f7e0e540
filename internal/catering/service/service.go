package service

import (
	"context"
	"time"

	"ms-catering/internal/logger"
	"ms-catering/internal/models"
	"ms-catering/internal/schedule"
)

// EntitlementKind tags the three participant sources handled by the
// validator. Dispatch is exhaustive: every switch over it carries a default
// rejecting unknown kinds.
type EntitlementKind string

const (
	KindVolunteer   EntitlementKind = "volunteer"
	KindArtist      EntitlementKind = "artist"
	KindParticipant EntitlementKind = "participant"
)

// ValidKind reports whether the kind is one of the three known sources.
func ValidKind(k EntitlementKind) bool {
	switch k {
	case KindVolunteer, KindArtist, KindParticipant:
		return true
	}
	return false
}

// DBLayer is the persistence contract the engine runs against.
type DBLayer interface {
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetVolunteerByID(ctx context.Context, id string) (*models.VolunteerProfile, error)
	GetArtistByID(ctx context.Context, id string) (*models.ArtistProfile, error)
	GetOrderItemByID(ctx context.Context, id string) (*models.OrderItem, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)

	SlotsByEvent(ctx context.Context, eventID string) ([]models.MealSlot, error)
	EnabledSlotsByEventAndDate(ctx context.Context, eventID string, date time.Time) ([]models.MealSlot, error)
	SlotByID(ctx context.Context, id string) (*models.MealSlot, error)
	InsertSlots(ctx context.Context, slots []models.MealSlot) error
	UpdateSlotSettings(ctx context.Context, slot *models.MealSlot) error
	DeleteSlots(ctx context.Context, ids []string) error

	VolunteerSelectionsByVolunteer(ctx context.Context, volunteerID string) ([]models.VolunteerSelection, error)
	InsertVolunteerSelections(ctx context.Context, selections []models.VolunteerSelection) error
	DeleteVolunteerSelections(ctx context.Context, ids []string) error
	VolunteerSelectionByID(ctx context.Context, id string) (*models.VolunteerSelection, error)
	ConsumeVolunteerSelection(ctx context.Context, id string, at time.Time) (int64, error)
	UnconsumeVolunteerSelection(ctx context.Context, id string) (int64, error)
	SetVolunteerSelectionAccepted(ctx context.Context, id string, accepted bool) (int64, error)
	AcceptedVolunteerSelectionsByMeal(ctx context.Context, mealID string) ([]models.VolunteerSelection, error)
	VolunteersByIDs(ctx context.Context, ids []string) ([]models.VolunteerProfile, error)

	ArtistSelectionsByArtist(ctx context.Context, artistID string) ([]models.ArtistSelection, error)
	InsertArtistSelections(ctx context.Context, selections []models.ArtistSelection) error
	DeleteArtistSelections(ctx context.Context, ids []string) error
	ArtistSelectionByID(ctx context.Context, id string) (*models.ArtistSelection, error)
	ConsumeArtistSelection(ctx context.Context, id string, at time.Time) (int64, error)
	UnconsumeArtistSelection(ctx context.Context, id string) (int64, error)
	SetArtistSelectionAccepted(ctx context.Context, id string, accepted bool) (int64, error)
	AcceptedArtistSelectionsByMeal(ctx context.Context, mealID string) ([]models.ArtistSelection, error)
	ArtistsByIDs(ctx context.Context, ids []string) ([]models.ArtistProfile, error)

	TierGrantExists(ctx context.Context, tierID, mealID string) (bool, error)
	OptionGrantExistsForItem(ctx context.Context, orderItemID, mealID string) (bool, error)
	InsertGrantConsumed(ctx context.Context, grant models.MealGrant) (bool, error)
	ConsumeGrant(ctx context.Context, orderItemID, mealID string, at time.Time) (int64, error)
	UnconsumeGrant(ctx context.Context, orderItemID, mealID string) (int64, error)

	CountVolunteerEntitlements(ctx context.Context, mealID string) (int, int, error)
	CountArtistEntitlements(ctx context.Context, mealID string) (int, int, error)
	TicketItemIDsByTier(ctx context.Context, mealID string) ([]string, error)
	TicketItemIDsByOption(ctx context.Context, mealID string) ([]string, error)
	ConsumedTicketItemIDs(ctx context.Context, mealID string) ([]string, error)
	TierTicketItemsByMeal(ctx context.Context, mealID string) ([]models.OrderItem, error)
}

// KafkaPublisher streams engine events to sibling services. Publish failures
// are logged and swallowed; the engine's own state is already committed.
type KafkaPublisher interface {
	PublishMealValidated(kind EntitlementKind, entitlementID, mealID string, consumedAt time.Time) error
	PublishSlotsReconciled(eventID string, created, deleted int) error
}

// StatsCache is the short-TTL cache in front of the aggregation queries.
type StatsCache interface {
	GetMealStats(ctx context.Context, mealID string) (*MealStats, bool)
	SetMealStats(ctx context.Context, mealID string, stats *MealStats) error
	InvalidateMealStats(ctx context.Context, mealID string) error
}

type CateringService struct {
	DB     DBLayer
	Kafka  KafkaPublisher
	Cache  StatsCache
	Logger *logger.Logger
}

func NewCateringService(db DBLayer, kafka KafkaPublisher, cache StatsCache, log *logger.Logger) *CateringService {
	return &CateringService{DB: db, Kafka: kafka, Cache: cache, Logger: log}
}

func (s *CateringService) logInfo(category, message string) {
	if s.Logger != nil {
		s.Logger.Info(category, message)
	}
}

func (s *CateringService) logWarn(category, message string) {
	if s.Logger != nil {
		s.Logger.Warn(category, message)
	}
}

// SelectionView is the merged slot + selection row returned to participants.
type SelectionView struct {
	SelectionID string            `json:"selection_id"`
	MealID      string            `json:"meal_id"`
	Date        time.Time         `json:"date"`
	MealType    schedule.MealType `json:"meal_type"`
	Phases      []schedule.Phase  `json:"phases"`
	Accepted    bool              `json:"accepted"`
	ConsumedAt  *time.Time        `json:"consumed_at,omitempty"`
}

func mealRank(m schedule.MealType) int {
	switch m {
	case schedule.MealBreakfast:
		return 0
	case schedule.MealLunch:
		return 1
	default:
		return 2
	}
}
