// Package customers provides the customer base bounded context module.
package customers

import (
	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/customers/handler"
	"repaircrm_backend/internal/customers/repository"
	"repaircrm_backend/internal/customers/service"
	"repaircrm_backend/internal/events"
	apphttp "repaircrm_backend/internal/http"
	"repaircrm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the customers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the customers module. The lead reader is
// wired later via Service().SetLeadReader; main breaks the cycle with an
// adapter over the leads repository.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, audit activity.Recorder, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, audit, eventBus, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "customers"
}

// Service returns the customer service for adapter wiring.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts customers routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/customers"))
	m.handler.RegisterLeadRoutes(ctx.Protected.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
