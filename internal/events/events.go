// Package events publishes animal membership changes to a message broker
// so downstream consumers (search indexers, notifiers) can react. The feed
// is best-effort: a publish failure is logged and never fails the mutation
// that produced it.
package events

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
)

// Channel is the broker channel animal membership events are published to.
const Channel = "animal-events"

// Event types.
const (
	TypeAnimalAdded   = "animal.added"
	TypeAnimalRemoved = "animal.removed"
)

// Event is the wire payload for a membership change.
type Event struct {
	Type      string `json:"type"`
	AnimalID  int64  `json:"animal_id"`
	ShelterID int64  `json:"shelter_id"`
}

// Backend defines the broker-agnostic publish operation.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher emits membership events through a backend. A Publisher with a
// nil backend is a no-op, so callers never need to branch on configuration.
type Publisher struct {
	backend Backend
	logger  *zap.Logger
}

func NewPublisher(backend Backend, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{backend: backend, logger: logger}
}

// AnimalAdded publishes an animal.added event.
func (p *Publisher) AnimalAdded(ctx context.Context, animalID, shelterID int64) {
	p.publish(ctx, Event{Type: TypeAnimalAdded, AnimalID: animalID, ShelterID: shelterID})
}

// AnimalRemoved publishes an animal.removed event.
func (p *Publisher) AnimalRemoved(ctx context.Context, animalID, shelterID int64) {
	p.publish(ctx, Event{Type: TypeAnimalRemoved, AnimalID: animalID, ShelterID: shelterID})
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	if p.backend == nil {
		return nil
	}
	return p.backend.Close()
}

func (p *Publisher) publish(ctx context.Context, event Event) {
	if p.backend == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("marshal event", zap.Error(err))
		return
	}

	attrs := map[string]string{"type": event.Type}
	if _, err := p.backend.Publish(ctx, Channel, data, attrs); err != nil {
		p.logger.Warn("publish event failed",
			zap.String("type", event.Type),
			zap.Int64("animal_id", event.AnimalID),
			zap.Int64("shelter_id", event.ShelterID),
			zap.Error(err),
		)
	}
}
