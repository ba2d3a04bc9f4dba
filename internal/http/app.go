package http

import (
	"context"

	"repaircrm_backend/internal/events"
	"repaircrm_backend/platform/config"
	"repaircrm_backend/platform/logger"
)

// RouterConfig is the slice of app config the router needs.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker backs the readiness endpoint, typically a pool ping.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is everything main assembles before handing off to router.New.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	// Modules are registered in order; each mounts its own routes.
	Modules []Module
}
