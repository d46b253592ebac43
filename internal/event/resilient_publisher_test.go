package event

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResilientPublisher_NeverFailsTheCaller(t *testing.T) {
	inner := &failNTimesBus{inner: NewMemoryBus(), n: 1000}
	pub := NewResilientPublisher(inner, ResilientConfig{
		MaxRetries:     1,
		RetryDelay:     time.Millisecond,
		DeadLetterPath: filepath.Join(t.TempDir(), "dead.jsonl"),
	})

	err := pub.Publish(context.Background(), NewLevelUpEvent("e", "character", 1, 2, 0, ""))
	assert.NoError(t, err)
	pub.Wait()
}

func TestResilientPublisher_RetriesSucceed(t *testing.T) {
	var delivered atomic.Int32
	inner := NewMemoryBus()
	inner.Subscribe(ProgressExperienceGain, func(context.Context, Event) error {
		delivered.Add(1)
		return nil
	})

	flaky := &failNTimesBus{inner: inner, n: 2}
	pub := NewResilientPublisher(flaky, ResilientConfig{
		MaxRetries:     5,
		RetryDelay:     time.Millisecond,
		DeadLetterPath: filepath.Join(t.TempDir(), "dead.jsonl"),
	})

	require.NoError(t, pub.Publish(context.Background(), NewExperienceGainEvent("e", "sword", "100", 0)))
	pub.Wait()

	assert.Equal(t, int32(1), delivered.Load(), "event delivered exactly once after retries")
}

func TestResilientPublisher_DeadLetterAfterExhaustion(t *testing.T) {
	deadPath := filepath.Join(t.TempDir(), "dead.jsonl")
	inner := &failNTimesBus{inner: NewMemoryBus(), n: 1000}
	pub := NewResilientPublisher(inner, ResilientConfig{
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		DeadLetterPath: deadPath,
	})

	require.NoError(t, pub.Publish(context.Background(), NewLevelUpEvent("e", "character", 9, 10, 10, "Adept")))
	pub.Wait()

	data, err := os.ReadFile(deadPath)
	require.NoError(t, err)

	var entry DeadLetterEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, ProgressLevelUp, entry.Event.Type)
	assert.False(t, entry.Timestamp.IsZero())
}
