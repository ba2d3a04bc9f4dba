package handler

import (
	"net/http"
	"strconv"

	"repaircrm_backend/internal/http/response"
	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/internal/leads/service"
	"repaircrm_backend/internal/leads/transport"
	"repaircrm_backend/platform/httpkit"
	"repaircrm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

// VocabularyReader exposes the intake vocabulary for the intake form.
type VocabularyReader interface {
	DeviceTypes() []string
	Issues() []string
}

type Handler struct {
	svc      *service.Service
	validate *validator.Validator
	vocab    VocabularyReader
}

func New(svc *service.Service, validate *validator.Validator, vocab VocabularyReader) *Handler {
	return &Handler{svc: svc, validate: validate, vocab: vocab}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/vocabulary", h.Vocabulary)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.PATCH("/:id/status", h.ChangeStatus)
	rg.PUT("/:id/assign", h.Assign)
}

// Vocabulary returns the device types and common issues the intake form offers.
func (h *Handler) Vocabulary(c *gin.Context) {
	response.OK(c, gin.H{
		"deviceTypes": h.vocab.DeviceTypes(),
		"issues":      h.vocab.Issues(),
	})
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ValidationError(c, err)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid assignedTo", nil)
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.Created(c, transport.FromLead(lead))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.OK(c, transport.FromLead(lead))
}

func (h *Handler) List(c *gin.Context) {
	params := repository.ListParams{
		Status: c.Query("status"),
	}
	if raw := c.Query("assignedTo"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid assignedTo", nil)
			return
		}
		params.AssignedTo = &id
	}
	params.Limit = queryInt(c, "limit")
	params.Offset = queryInt(c, "offset")

	leads, err := h.svc.List(c.Request.Context(), params)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.OK(c, transport.FromLeads(leads))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ValidationError(c, err)
		return
	}

	params, err := req.ToParams()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid assignedTo", nil)
		return
	}

	lead, err := h.svc.Update(c.Request.Context(), actorFromContext(c), id, params)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.OK(c, transport.FromLead(lead))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.DomainError(c, err)
		return
	}

	response.NoContent(c)
}

func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.svc.ChangeStatus(c.Request.Context(), actorFromContext(c), id, req.Status)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.OK(c, transport.StatusChangeResponse{
		Lead:      transport.FromLead(result.Lead),
		OldStatus: result.OldStatus,
		Converted: result.Converted,
	})
}

type assignRequest struct {
	AssignedTo *string `json:"assignedTo" validate:"omitempty,uuid"`
}

func (h *Handler) Assign(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.ValidationError(c, err)
		return
	}

	params := repository.UpdateLeadParams{AssignedToSet: true}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid assignedTo", nil)
			return
		}
		params.AssignedTo = &assignee
	}

	lead, err := h.svc.Update(c.Request.Context(), actorFromContext(c), id, params)
	if err != nil {
		response.DomainError(c, err)
		return
	}

	response.OK(c, transport.FromLead(lead))
}

func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{Name: c.GetString(httpkit.ContextUserNameKey)}
	if id, ok := httpkit.UserIDFromContext(c); ok {
		actor.ID = &id
	}
	return actor
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
