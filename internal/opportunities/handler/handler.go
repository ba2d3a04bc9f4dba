package handler

import (
	"net/http"
	"time"

	"repaircrm_backend/internal/http/response"
	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/internal/opportunities/service"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/stats", h.Stats)
	rg.GET("/stats/compare", h.CompareStats)
}

func (h *Handler) List(c *gin.Context) {
	dr, err := dateRangeFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	opportunities, err := h.svc.GetOpportunities(c.Request.Context(), c.Query("stage"), dr)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, opportunities)
}

func (h *Handler) Stats(c *gin.Context) {
	dr, err := dateRangeFromQuery(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	stats, err := h.svc.GetOpportunityStats(c.Request.Context(), dr)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, stats)
}

// CompareStats compares a required [from, to] window against the immediately
// preceding window of identical duration.
func (h *Handler) CompareStats(c *gin.Context) {
	dr, err := dateRangeFromQuery(c)
	if err != nil || dr == nil || dr.From.IsZero() || dr.To.IsZero() {
		response.Error(c, http.StatusBadRequest, "from and to are required", nil)
		return
	}

	stats, err := h.svc.GetComparativeStats(c.Request.Context(), *dr, service.PreviousPeriod(*dr))
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, stats)
}

func dateRangeFromQuery(c *gin.Context) (*repository.DateRange, error) {
	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}

	dr := &repository.DateRange{Field: repository.DateFieldCreated}
	if c.Query("dateField") == "updated" {
		dr.Field = repository.DateFieldUpdated
	}

	var err error
	if fromRaw != "" {
		if dr.From, err = time.Parse(time.RFC3339, fromRaw); err != nil {
			return nil, err
		}
	}
	if toRaw != "" {
		if dr.To, err = time.Parse(time.RFC3339, toRaw); err != nil {
			return nil, err
		}
	}
	return dr, nil
}
