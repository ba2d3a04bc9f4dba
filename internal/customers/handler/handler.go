package handler

import (
	"net/http"

	"repaircrm_backend/internal/customers/repository"
	"repaircrm_backend/internal/customers/service"
	"repaircrm_backend/internal/customers/transport"
	"repaircrm_backend/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
}

// RegisterLeadRoutes mounts the manual conversion endpoint under /leads.
func (h *Handler) RegisterLeadRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/convert", h.ConvertLead)
}

func (h *Handler) List(c *gin.Context) {
	customers, err := h.svc.List(c.Request.Context(), repository.ListParams{
		Search: c.Query("search"),
	})
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, transport.FromCustomers(customers))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	customer, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, transport.FromCustomer(customer))
}

func (h *Handler) ConvertLead(c *gin.Context) {
	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	customer, err := h.svc.ConvertLeadToCustomer(c.Request.Context(), leadID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, transport.FromCustomer(customer))
}
