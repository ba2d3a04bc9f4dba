package activity

import (
	"net/http"
	"strconv"

	apphttp "repaircrm_backend/internal/http"
	"repaircrm_backend/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var auditedEntityTypes = map[string]struct{}{
	"lead":     {},
	"customer": {},
}

// Module exposes the audit trail read endpoint. Writes have no HTTP surface;
// they happen inside the owning modules.
type Module struct {
	svc *Service
}

func NewModule(svc *Service) *Module {
	return &Module{svc: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "activity"
}

// RegisterRoutes mounts activity routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/activity/:entityType/:id", m.trail)
}

func (m *Module) trail(c *gin.Context) {
	entityType := c.Param("entityType")
	if _, ok := auditedEntityTypes[entityType]; !ok {
		response.Error(c, http.StatusBadRequest, "unknown entity type", nil)
		return
	}

	entityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	records, err := m.svc.Trail(c.Request.Context(), entityType, entityID, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "internal server error", nil)
		return
	}
	response.OK(c, records)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
