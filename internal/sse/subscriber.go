package sse

import (
	"context"
	"log/slog"

	"github.com/ashveil/progression-engine/internal/event"
)

// Subscriber bridges the internal event bus to the SSE hub
type Subscriber struct {
	hub *Hub
	bus event.Bus
}

// NewSubscriber creates a new SSE subscriber
func NewSubscriber(hub *Hub, bus event.Bus) *Subscriber {
	return &Subscriber{hub: hub, bus: bus}
}

// Subscribe attaches the forwarding handler to every bus event type
// that has an SSE representation
func (s *Subscriber) Subscribe() {
	for _, t := range []event.Type{event.ProgressLevelUp, event.ProgressExperienceGain} {
		s.bus.Subscribe(t, s.forward)
	}

	slog.Info("SSE subscriber registered for event types",
		"types", []string{
			string(event.ProgressLevelUp),
			string(event.ProgressExperienceGain),
		})
}

// forward translates one bus event into its SSE shape and broadcasts it
func (s *Subscriber) forward(_ context.Context, evt event.Event) error {
	var (
		sseType string
		payload interface{}
	)

	switch p := evt.Payload.(type) {
	case event.LevelUpPayloadV1:
		sseType = EventTypeLevelUp
		payload = LevelUpPayload{
			EntityID:     p.EntityID,
			TrackName:    p.TrackName,
			OldLevel:     p.LevelBefore,
			NewLevel:     p.LevelAfter,
			BonusPercent: p.BonusPercent,
			NewTitle:     p.NewTitle,
		}
	case event.ExperienceGainPayloadV1:
		sseType = EventTypeExperienceGain
		payload = ExperienceGainPayload{
			EntityID:  p.EntityID,
			TrackName: p.TrackName,
			Amount:    p.Amount,
		}
	default:
		slog.Warn(LogMsgBadPayload, "event_type", evt.Type)
		return nil
	}

	s.hub.Broadcast(sseType, payload)
	slog.Debug(LogMsgEventBroadcast, "event_type", sseType)
	return nil
}
