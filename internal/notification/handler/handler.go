package handler

import (
	"encoding/json"
	"net/http"

	"repaircrm_backend/internal/http/response"
	"repaircrm_backend/internal/notification/badge"
	"repaircrm_backend/internal/notification/sse"
	"repaircrm_backend/platform/httpkit"
	"repaircrm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	hub *badge.Hub
	sse *sse.Service
	log *logger.Logger
}

func New(hub *badge.Hub, sseService *sse.Service, log *logger.Logger) *Handler {
	return &Handler{hub: hub, sse: sseService, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stream", h.Stream)
	rg.GET("/badge", h.Badge)
}

// Badge returns the authoritative actionable-lead count for the viewer,
// computed server-side with the same predicate the live stream uses.
func (h *Handler) Badge(c *gin.Context) {
	userID, ok := httpkit.UserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	pred := badge.PredicateFor(userID, httpkit.RolesFromContext(c))

	count, err := h.hub.Count(c.Request.Context(), pred)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, gin.H{"count": count})
}

// Stream is the long-lived SSE connection. It multiplexes two sources onto
// one stream: live badge counts from the viewer's badge session, and direct
// notifications addressed to the user. Both are torn down on disconnect.
func (h *Handler) Stream(c *gin.Context) {
	userID, ok := httpkit.UserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	pred := badge.PredicateFor(userID, httpkit.RolesFromContext(c))

	session, releaseSession, err := h.hub.Mount(c.Request.Context(), pred)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	defer releaseSession()

	userEvents, releaseClient := h.sse.Register(userID)
	defer releaseClient()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	writeEvent(c, sse.Event{
		Type: sse.EventConnected,
		Data: gin.H{"badgeCount": session.Current()},
	})

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			return
		case count := <-session.Updates():
			writeEvent(c, sse.Event{
				Type: sse.EventBadgeUpdated,
				Data: gin.H{"count": count},
			})
		case event, ok := <-userEvents:
			if !ok {
				return
			}
			writeEvent(c, event)
		}
	}
}

func writeEvent(c *gin.Context, event sse.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	c.SSEvent(string(event.Type), string(data))
	c.Writer.Flush()
}
