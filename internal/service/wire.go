package service

import (
	"time"

	"github.com/theirongolddev/finproj/internal/config"
	"github.com/theirongolddev/finproj/internal/model"
)

// RateInput is a growth or churn rate as sent by clients.
type RateInput struct {
	Value float64 `json:"value"`
	Mode  string  `json:"mode"`
}

// TierInput is one pricing tier as sent by clients. Adoption is a
// percentage (40 means 40%).
type TierInput struct {
	Price       float64 `json:"price"`
	AdoptionPct float64 `json:"adoption_pct"`
	Cadence     string  `json:"cadence"`
	Uses        int     `json:"uses,omitempty"`
}

// ProjectionRequest is the body of POST /v1/projections.
type ProjectionRequest struct {
	StartingUsers int64       `json:"starting_users"`
	Months        int         `json:"months"`
	Growth        RateInput   `json:"growth"`
	Churn         RateInput   `json:"churn"`
	Tiers         []TierInput `json:"tiers"`
}

// ProjectionResponse is returned by POST /v1/projections.
type ProjectionResponse struct {
	ID            string                   `json:"id"`
	EffectiveARPU float64                  `json:"effective_arpu"`
	SkippedTiers  int                      `json:"skipped_tiers"`
	Records       []model.ProjectionRecord `json:"records"`
	Summary       model.ProjectionSummary  `json:"summary"`
	DurationMs    int64                    `json:"duration_ms"`
}

// ARPURequest is the body of POST /v1/arpu.
type ARPURequest struct {
	Tiers []TierInput `json:"tiers"`
}

// ARPUResponse is returned by POST /v1/arpu.
type ARPUResponse struct {
	EffectiveARPU float64 `json:"effective_arpu"`
	SkippedTiers  int     `json:"skipped_tiers"`
}

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt   time.Time `json:"started_at"`
	Requests    int64     `json:"requests"`
	Projections int64     `json:"projections"`
	Errors      int64     `json:"errors"`
	MaxMonths   int       `json:"max_months"`
}

func (r ProjectionRequest) scenario() config.Scenario {
	return config.Scenario{
		StartingUsers: r.StartingUsers,
		Months:        r.Months,
		Growth:        r.Growth.Value,
		GrowthMode:    r.Growth.Mode,
		Churn:         r.Churn.Value,
		ChurnMode:     r.Churn.Mode,
		Tiers:         tierEntries(r.Tiers),
	}
}

func tierEntries(in []TierInput) []config.TierEntry {
	out := make([]config.TierEntry, len(in))
	for i, t := range in {
		out[i] = config.TierEntry{
			Price:       t.Price,
			AdoptionPct: t.AdoptionPct,
			Cadence:     t.Cadence,
			Uses:        t.Uses,
		}
	}
	return out
}

// tiers converts inputs to model tiers, counting rows with an unknown cadence.
func tiers(in []TierInput) ([]model.PricingTier, int) {
	var (
		out     []model.PricingTier
		dropped int
	)
	for _, e := range tierEntries(in) {
		t, err := e.Tier()
		if err != nil {
			dropped++
			continue
		}
		out = append(out, t)
	}
	return out, dropped
}
