package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/ashveil/progression-engine/internal/event"
	"github.com/ashveil/progression-engine/internal/metrics"
	"github.com/ashveil/progression-engine/internal/sse"
)

// EventHandlerDependencies holds the dependencies needed for event handler registration.
type EventHandlerDependencies struct {
	EventBus event.Bus
	Hub      *sse.Hub
}

// RegisterEventHandlers sets up all event subscribers:
// - Metrics collector (for event-based metrics)
// - SSE subscriber (forwards progression events to connected clients)
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	metricsCollector := metrics.NewEventMetricsCollector()
	if err := metricsCollector.Register(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedRegisterMetrics, err)
	}
	slog.Info(LogMsgMetricsCollectorRegistered)

	sse.NewSubscriber(deps.Hub, deps.EventBus).Subscribe()
	slog.Info(LogMsgSSESubscriberRegistered)

	return nil
}
