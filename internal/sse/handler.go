package sse

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashveil/progression-engine/internal/logger"
)

// Handler streams hub events to one HTTP client until the connection
// drops or the hub shuts down. The optional ?types= query parameter is
// a comma-separated list of event types to subscribe to.
func Handler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "SSE not supported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		filters := parseTypeFilters(r.URL.Query().Get("types"))
		client := hub.Register(filters)
		log.Info(LogMsgClientConnected,
			"client_id", client.ID,
			"filters", filters,
			"total_clients", hub.ClientCount())

		defer func() {
			hub.Unregister(client.ID)
			log.Info(LogMsgClientDisconnected,
				"client_id", client.ID,
				"total_clients", hub.ClientCount())
		}()

		hello := Event{
			ID:        client.ID,
			Type:      "connected",
			Timestamp: time.Now().Unix(),
			Payload: map[string]interface{}{
				"client_id": client.ID,
				"filters":   filters,
			},
		}
		if !writeEvent(w, flusher, log, hello) {
			return
		}

		keepalive := time.NewTicker(KeepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return

			case event, open := <-client.Events:
				if !open {
					// Hub is shutting down
					return
				}
				if !writeEvent(w, flusher, log, event) {
					return
				}

			case <-keepalive.C:
				ping := Event{Type: EventTypeKeepalive, Timestamp: time.Now().Unix()}
				if !writeEvent(w, flusher, log, ping) {
					return
				}
			}
		}
	}
}

func parseTypeFilters(raw string) []string {
	if raw == "" {
		return nil
	}
	var types []string
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// writeEvent pushes one event down the wire; false means the connection
// is no longer usable.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, log *slog.Logger, event Event) bool {
	msg, err := FormatSSEMessage(event)
	if err != nil {
		log.Error(LogMsgWriteError, "error", err)
		return true
	}
	if _, err := w.Write(msg); err != nil {
		log.Warn(LogMsgWriteError, "error", err)
		return false
	}
	flusher.Flush()
	return true
}
