package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// Progression event types. Delivery to subscribers is at-most-once and
// best-effort: clients that miss one re-fetch the summary instead.
const (
	ProgressLevelUp        Type = "progress.levelUp"
	ProgressExperienceGain Type = "progress.experienceGain"
)

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// LevelUpPayloadV1 is the typed payload for level/tier-up events
type LevelUpPayloadV1 struct {
	EntityID     string `json:"entity_id"`
	TrackName    string `json:"track_name"`
	LevelBefore  int    `json:"level_before"`
	LevelAfter   int    `json:"level_after"`
	BonusPercent int    `json:"bonus_percent"`
	NewTitle     string `json:"new_title,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// ExperienceGainPayloadV1 is the typed payload for experience-gain events.
// Amount is a decimal string: experience values exceed 64-bit range.
type ExperienceGainPayloadV1 struct {
	EntityID     string `json:"entity_id"`
	TrackName    string `json:"track_name"`
	Amount       string `json:"amount"`
	BonusPercent int    `json:"bonus_percent"`
	Timestamp    int64  `json:"timestamp"`
}

// NewLevelUpEvent creates a level-up event with a type-safe payload
func NewLevelUpEvent(entityID, trackName string, levelBefore, levelAfter, bonusPercent int, newTitle string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ProgressLevelUp,
		Payload: LevelUpPayloadV1{
			EntityID:     entityID,
			TrackName:    trackName,
			LevelBefore:  levelBefore,
			LevelAfter:   levelAfter,
			BonusPercent: bonusPercent,
			NewTitle:     newTitle,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewExperienceGainEvent creates an experience-gain event with a type-safe payload
func NewExperienceGainEvent(entityID, trackName, amount string, bonusPercent int) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ProgressExperienceGain,
		Payload: ExperienceGainPayloadV1{
			EntityID:     entityID,
			TrackName:    trackName,
			Amount:       amount,
			BonusPercent: bonusPercent,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus dispatches events synchronously to in-process subscribers
type MemoryBus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{handlers: make(map[Type][]Handler)}
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// Publish runs every subscribed handler for the event's type in the
// caller's goroutine. All handlers run even when earlier ones fail; the
// failures are reported together.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	subscribed := make([]Handler, len(b.handlers[event.Type]))
	copy(subscribed, b.handlers[event.Type])
	b.mu.RUnlock()

	var errs []error
	for _, handle := range subscribed {
		if err := handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errs)
}
