package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-catering/internal/catering/service"
)

type Producer struct {
	validated  *kafka.Writer
	reconciled *kafka.Writer
}

func NewProducer(brokers []string, validatedTopic, reconciledTopic string) *Producer {
	return &Producer{
		validated: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   validatedTopic,
		}),
		reconciled: kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   reconciledTopic,
		}),
	}
}

type mealValidatedEvent struct {
	Kind          string    `json:"kind"`
	EntitlementID string    `json:"entitlement_id"`
	MealID        string    `json:"meal_id,omitempty"`
	ConsumedAt    time.Time `json:"consumed_at"`
}

type slotsReconciledEvent struct {
	EventID string `json:"event_id"`
	Created int    `json:"created"`
	Deleted int    `json:"deleted"`
}

// PublishMealValidated streams a successful consumption to downstream
// services. This stream doubles as the audit trail of consumptions, since
// the synchronizer may later delete the selection row itself.
func (p *Producer) PublishMealValidated(kind service.EntitlementKind, entitlementID, mealID string, consumedAt time.Time) error {
	msgBytes, err := json.Marshal(mealValidatedEvent{
		Kind:          string(kind),
		EntitlementID: entitlementID,
		MealID:        mealID,
		ConsumedAt:    consumedAt,
	})
	if err != nil {
		return err
	}

	return p.validated.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(entitlementID),
			Value: msgBytes,
		},
	)
}

// PublishSlotsReconciled streams a reconciliation that changed the slot set.
func (p *Producer) PublishSlotsReconciled(eventID string, created, deleted int) error {
	msgBytes, err := json.Marshal(slotsReconciledEvent{
		EventID: eventID,
		Created: created,
		Deleted: deleted,
	})
	if err != nil {
		return err
	}

	return p.reconciled.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(eventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if err := p.validated.Close(); err != nil {
		return err
	}
	return p.reconciled.Close()
}
