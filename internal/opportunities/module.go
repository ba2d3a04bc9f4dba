// Package opportunities provides the sales pipeline projection module.
package opportunities

import (
	"repaircrm_backend/internal/events"
	apphttp "repaircrm_backend/internal/http"
	"repaircrm_backend/internal/opportunities/cache"
	"repaircrm_backend/internal/opportunities/handler"
	"repaircrm_backend/internal/opportunities/service"
	"repaircrm_backend/platform/config"
	"repaircrm_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module is the opportunities bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the pipeline projector over the given lead reader. When a
// Redis client is provided, stats are cached and invalidated on lead changes;
// with a nil client the projector always recomputes.
func NewModule(
	leads service.LeadReader,
	redisClient *redis.Client,
	cfg config.CacheConfig,
	eventBus events.Bus,
	log *logger.Logger,
) *Module {
	var statsCache service.StatsCache
	if redisClient != nil {
		rc := cache.New(redisClient, cfg.GetStatsCacheTTL(), log)
		rc.SubscribeInvalidation(eventBus)
		statsCache = rc
	}

	svc := service.New(leads, statsCache, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "opportunities"
}

// Service returns the projection service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts opportunity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/opportunities"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
