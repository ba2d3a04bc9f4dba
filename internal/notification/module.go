// Package notification wires real-time staff notifications: the live badge
// hub, the SSE stream, and follow-up reminder delivery.
package notification

import (
	"context"

	"repaircrm_backend/internal/events"
	apphttp "repaircrm_backend/internal/http"
	"repaircrm_backend/internal/notification/badge"
	"repaircrm_backend/internal/notification/handler"
	"repaircrm_backend/internal/notification/sse"
	"repaircrm_backend/platform/config"
	"repaircrm_backend/platform/logger"
)

// EmailSender delivers follow-up reminder emails. Implemented by the email
// module; nil disables email delivery.
type EmailSender interface {
	SendFollowUpReminder(ctx context.Context, to, customerName, deviceType, contactNumber string) error
}

// Module is the notification bounded context implementing http.Module.
type Module struct {
	hub     *badge.Hub
	sse     *sse.Service
	handler *handler.Handler
	sender  EmailSender
	inbox   string
	log     *logger.Logger
}

// NewModule creates the notification module. count supplies authoritative
// badge counts; it is an adapter over the leads store.
func NewModule(count badge.CountFunc, sender EmailSender, cfg config.EmailConfig, log *logger.Logger) *Module {
	hub := badge.NewHub(count)
	sseService := sse.New(log)

	return &Module{
		hub:     hub,
		sse:     sseService,
		handler: handler.New(hub, sseService, log),
		sender:  sender,
		inbox:   cfg.GetFallbackInbox(),
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// SSE returns the SSE service for sharing with other modules.
func (m *Module) SSE() *sse.Service {
	return m.sse
}

// Close disconnects all SSE clients.
func (m *Module) Close() {
	m.sse.Close()
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	m.hub.Subscribe(bus)

	bus.Subscribe(events.LeadConverted{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		converted, ok := event.(events.LeadConverted)
		if !ok {
			return nil
		}
		m.sse.Broadcast(sse.Event{
			Type: sse.EventLeadConverted,
			Data: converted,
		})
		return nil
	}))

	bus.Subscribe(events.LeadFollowUpDue{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		due, ok := event.(events.LeadFollowUpDue)
		if !ok {
			return nil
		}
		m.handleFollowUpDue(ctx, due)
		return nil
	}))
}

// handleFollowUpDue pushes the reminder to the assigned staff member's stream
// (or everyone when unassigned) and mails the shop's fallback inbox.
func (m *Module) handleFollowUpDue(ctx context.Context, due events.LeadFollowUpDue) {
	event := sse.Event{
		Type:    sse.EventFollowUpDue,
		Message: "lead still uncontacted past the follow-up window",
		Data:    due,
	}
	if due.AssignedTo != nil {
		m.sse.Publish(*due.AssignedTo, event)
	} else {
		m.sse.Broadcast(event)
	}

	if m.sender == nil || m.inbox == "" {
		return
	}
	if err := m.sender.SendFollowUpReminder(ctx, m.inbox, due.CustomerName, due.DeviceType, due.ContactNumber); err != nil {
		m.log.Error("follow-up reminder email failed", "lead_id", due.LeadID, "error", err)
	}
}

// RegisterRoutes mounts notification routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
