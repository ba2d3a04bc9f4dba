// Package service projects leads into pipeline opportunities and aggregates
// stage statistics. Opportunities are never stored; every read recomputes the
// projection from lead state.
package service

import (
	"context"
	"time"

	"repaircrm_backend/internal/leads/repository"
	"repaircrm_backend/internal/opportunities/domain"
	"repaircrm_backend/platform/apperr"
	"repaircrm_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// LeadReader is the slice of the leads repository the projector needs.
type LeadReader interface {
	QueryByStatus(ctx context.Context, statuses []string, dr *repository.DateRange) ([]repository.Lead, error)
}

// StatsCache caches aggregate stats between reads. Misses and cache failures
// both fall through to recomputation.
type StatsCache interface {
	Get(ctx context.Context, key string) (Stats, bool)
	Set(ctx context.Context, key string, stats Stats)
}

type Service struct {
	leads LeadReader
	cache StatsCache
	log   *logger.Logger
}

func New(leads LeadReader, cache StatsCache, log *logger.Logger) *Service {
	return &Service{leads: leads, cache: cache, log: log}
}

// Opportunity is a read-time projection of a lead in a pipeline stage.
type Opportunity struct {
	LeadID               uuid.UUID  `json:"leadId"`
	CustomerName         string     `json:"customerName"`
	DeviceType           string     `json:"deviceType"`
	DeviceModel          string     `json:"deviceModel"`
	Stage                string     `json:"stage"`
	ExpectedRevenueCents int64      `json:"expectedRevenueCents"`
	ActualRevenueCents   *int64     `json:"actualRevenueCents,omitempty"`
	AssignedTo           *uuid.UUID `json:"assignedTo,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// DateRange mirrors the store-level range with a caller-chosen field.
type DateRange = repository.DateRange

// GetOpportunities returns the projected pipeline, optionally narrowed to one
// stage and a date window.
func (s *Service) GetOpportunities(ctx context.Context, stageFilter string, dr *DateRange) ([]Opportunity, error) {
	leads, err := s.leads.QueryByStatus(ctx, domain.OpportunityStatuses(), dr)
	if err != nil {
		return nil, apperr.Storage("opportunities.list", err)
	}

	out := make([]Opportunity, 0, len(leads))
	for _, lead := range leads {
		stage, ok := domain.StageFor(lead.Status)
		if !ok {
			continue
		}
		if stageFilter != "" && stage != stageFilter {
			continue
		}
		out = append(out, projectLead(lead, stage))
	}
	return out, nil
}

func projectLead(lead repository.Lead, stage string) Opportunity {
	expected := int64(0)
	if lead.QuotedAmountCents != nil {
		expected = *lead.QuotedAmountCents
	}
	opp := Opportunity{
		LeadID:               lead.ID,
		CustomerName:         lead.CustomerName,
		DeviceType:           lead.DeviceType,
		DeviceModel:          lead.DeviceModel,
		Stage:                stage,
		ExpectedRevenueCents: expected,
		AssignedTo:           lead.AssignedTo,
		CreatedAt:            lead.CreatedAt,
		UpdatedAt:            lead.UpdatedAt,
	}
	if stage == domain.StageClosedWon {
		actual := expected
		opp.ActualRevenueCents = &actual
	}
	return opp
}

// Stats aggregates the pipeline over one date window.
type Stats struct {
	Qualified            int     `json:"qualified"`
	Pickup               int     `json:"pickup"`
	Won                  int     `json:"won"`
	Lost                 int     `json:"lost"`
	ExpectedRevenueCents int64   `json:"expectedRevenueCents"`
	ActualRevenueCents   int64   `json:"actualRevenueCents"`
	WinRate              float64 `json:"winRate"`
	AvgDealValueCents    float64 `json:"avgDealValueCents"`
}

func (st Stats) total() int {
	return st.Qualified + st.Pickup + st.Won + st.Lost
}

// GetOpportunityStats aggregates counts, revenue, win rate and average deal
// value over the opportunity set in the window. Both ratios are zero-safe.
func (s *Service) GetOpportunityStats(ctx context.Context, dr *DateRange) (Stats, error) {
	key := cacheKey(dr)
	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx, key); ok {
			return stats, nil
		}
	}

	leads, err := s.leads.QueryByStatus(ctx, domain.OpportunityStatuses(), dr)
	if err != nil {
		return Stats{}, apperr.Storage("opportunities.stats", err)
	}

	stats := Aggregate(leads)
	if s.cache != nil {
		s.cache.Set(ctx, key, stats)
	}
	return stats, nil
}

// Aggregate computes stats over an already-loaded lead set. Exported so it
// can be exercised without a store.
func Aggregate(leads []repository.Lead) Stats {
	var stats Stats
	for _, lead := range leads {
		amount := int64(0)
		if lead.QuotedAmountCents != nil {
			amount = *lead.QuotedAmountCents
		}

		stage, ok := domain.StageFor(lead.Status)
		if !ok {
			continue
		}
		switch stage {
		case domain.StageQualified:
			stats.Qualified++
			stats.ExpectedRevenueCents += amount
		case domain.StagePickup:
			stats.Pickup++
			stats.ExpectedRevenueCents += amount
		case domain.StageClosedWon:
			stats.Won++
			stats.ExpectedRevenueCents += amount
			stats.ActualRevenueCents += amount
		case domain.StageClosedLost:
			stats.Lost++
		}
	}

	if closed := stats.Won + stats.Lost; closed > 0 {
		stats.WinRate = float64(stats.Won) / float64(closed)
	}
	if total := stats.total(); total > 0 {
		stats.AvgDealValueCents = float64(stats.ExpectedRevenueCents) / float64(total)
	}
	return stats
}

func cacheKey(dr *DateRange) string {
	if dr == nil {
		return "opportunity_stats:all"
	}
	return "opportunity_stats:" + string(dr.Field) + ":" +
		dr.From.UTC().Format(time.RFC3339Nano) + ":" + dr.To.UTC().Format(time.RFC3339Nano)
}

// Metric is one period-over-period comparison. Change is a relative
// percentage for counts and values, an absolute point difference for rates.
type Metric struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Change   float64 `json:"change"`
}

// ComparativeStats pairs a window's stats against the preceding window.
type ComparativeStats struct {
	Current         Stats  `json:"current"`
	Previous        Stats  `json:"previous"`
	TotalCount      Metric `json:"totalCount"`
	WonCount        Metric `json:"wonCount"`
	ExpectedRevenue Metric `json:"expectedRevenue"`
	ActualRevenue   Metric `json:"actualRevenue"`
	WinRate         Metric `json:"winRate"`
}

// GetComparativeStats computes stats for both windows concurrently and
// derives the per-metric change figures.
func (s *Service) GetComparativeStats(ctx context.Context, current, previous DateRange) (ComparativeStats, error) {
	var cur, prev Stats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st, err := s.GetOpportunityStats(gctx, &current)
		cur = st
		return err
	})
	g.Go(func() error {
		st, err := s.GetOpportunityStats(gctx, &previous)
		prev = st
		return err
	})
	if err := g.Wait(); err != nil {
		return ComparativeStats{}, err
	}

	return Compare(cur, prev), nil
}

// Compare derives change metrics from two already-computed stat sets.
func Compare(cur, prev Stats) ComparativeStats {
	return ComparativeStats{
		Current:         cur,
		Previous:        prev,
		TotalCount:      relativeMetric(float64(cur.total()), float64(prev.total())),
		WonCount:        relativeMetric(float64(cur.Won), float64(prev.Won)),
		ExpectedRevenue: relativeMetric(float64(cur.ExpectedRevenueCents), float64(prev.ExpectedRevenueCents)),
		ActualRevenue:   relativeMetric(float64(cur.ActualRevenueCents), float64(prev.ActualRevenueCents)),
		WinRate: Metric{
			Current:  cur.WinRate,
			Previous: prev.WinRate,
			Change:   cur.WinRate - prev.WinRate,
		},
	}
}

// relativeMetric computes a relative percentage change. Growth from zero is
// reported as a flat 100%, and no activity in either period as 0.
func relativeMetric(current, previous float64) Metric {
	m := Metric{Current: current, Previous: previous}
	switch {
	case previous != 0:
		m.Change = (current - previous) / previous * 100
	case current > 0:
		m.Change = 100
	}
	return m
}

// PreviousPeriod returns the window of identical duration immediately before
// r, ending one millisecond before r starts: no gap, no overlap.
func PreviousPeriod(r DateRange) DateRange {
	duration := r.To.Sub(r.From)
	prevTo := r.From.Add(-time.Millisecond)
	return DateRange{
		Field: r.Field,
		From:  prevTo.Add(-duration),
		To:    prevTo,
	}
}
