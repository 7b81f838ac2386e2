package handlers

import (
	"context"

	"fraudlens/internal/domain/models"
	"fraudlens/internal/domain/services"
	"fraudlens/internal/upload"
	"fraudlens/pkg/logger"
)

// Pinger reports whether an external dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RejectionRecorder counts requests refused before scoring
type RejectionRecorder interface {
	ObserveRejection(channel models.Channel, reason string)
}

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Analysis *AnalysisHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Engine       *services.Engine
	Stager       *upload.Stager
	Cache        Pinger // optional
	Rejections   RejectionRecorder
	MaxBodyBytes int64
	Version      string
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.Version, deps.Logger),
		Analysis: NewAnalysisHandler(deps.Engine, deps.Stager, deps.Rejections, deps.MaxBodyBytes, deps.Logger),
	}
}
