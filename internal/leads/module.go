// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"repaircrm_backend/internal/activity"
	"repaircrm_backend/internal/events"
	apphttp "repaircrm_backend/internal/http"
	"repaircrm_backend/internal/leads/handler"
	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/internal/leads/service"
	"repaircrm_backend/internal/vocabulary"
	"repaircrm_backend/platform/config"
	"repaircrm_backend/platform/logger"
	"repaircrm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig combines the config interfaces the leads module needs.
type ModuleConfig interface {
	config.PhoneConfig
	config.SchedulerConfig
}

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the leads module with all its dependencies.
// The customer converter is wired later via SetConverter because the customers
// module in turn reads leads; main breaks the cycle with adapters.
func NewModule(
	pool *pgxpool.Pool,
	eventBus events.Bus,
	val *validator.Validator,
	cfg ModuleConfig,
	log *logger.Logger,
	vocab *vocabulary.Vocabulary,
	audit activity.Recorder,
	scheduler service.FollowUpScheduler,
) *Module {
	repo := repository.New(pool)

	svc := service.New(service.Config{
		Store:       repo,
		Scheduler:   scheduler,
		Vocabulary:  vocab,
		Audit:       audit,
		Bus:         eventBus,
		Logger:      log,
		PhoneRegion: cfg.GetPhoneRegion(),
		FollowUpTTL: cfg.GetFollowUpTTL(),
	})

	return &Module{
		handler: handler.New(svc, val, vocab),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// Service returns the lead service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the lead repository for adapter wiring.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// SetConverter wires the customer conversion dependency (breaks the
// leads ↔ customers cycle).
func (m *Module) SetConverter(converter service.Converter) {
	m.service.SetConverter(converter)
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	leadsGroup := ctx.Protected.Group("/leads")
	m.handler.RegisterRoutes(leadsGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
