package bootstrap

import (
	"context"
	"log/slog"

	"github.com/ashveil/progression-engine/internal/award"
	"github.com/ashveil/progression-engine/internal/server"
	"github.com/ashveil/progression-engine/internal/sse"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server       *server.Server
	AwardService award.Service
	Hub          *sse.Hub
}

// GracefulShutdown stops the application in dependency order: the HTTP
// server first so no new awards arrive, then the award service so
// in-flight event retries drain, and the SSE hub last to disconnect any
// remaining clients. A failing step is logged and the sequence keeps
// going.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)
	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	slog.Info(LogMsgShuttingDownEventPublisher)
	if err := components.AwardService.Shutdown(ctx); err != nil {
		slog.Error(LogMsgAwardServiceShutdownFailed, "error", err)
	}

	components.Hub.Stop()
	slog.Info(LogMsgShutdownComplete)
}
