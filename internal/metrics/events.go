package metrics

import (
	"context"

	"github.com/ashveil/progression-engine/internal/event"
)

// EventMetricsCollector subscribes to progression events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all progression event types
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	for _, eventType := range []event.Type{
		event.ProgressLevelUp,
		event.ProgressExperienceGain,
	} {
		bus.Subscribe(eventType, e.HandleEvent)
	}
	return nil
}

// HandleEvent counts published events by type. Level-ups are counted at
// the award path, not here, so one level-up is never recorded twice.
func (e *EventMetricsCollector) HandleEvent(_ context.Context, evt event.Event) error {
	EventsPublished.WithLabelValues(string(evt.Type)).Inc()
	return nil
}
