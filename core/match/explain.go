package match

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/procuro/rfqmatch/core/model"
)

// SupplierSummary is the slice of profile data shown next to an
// explanation.
type SupplierSummary struct {
	UserID      string          `json:"user_id"`
	RiskLevel   model.RiskLevel `json:"risk_level"`
	AvgRating   float64         `json:"avg_rating"`
	TotalOrders int             `json:"total_orders"`
	OnTimeRate  float64         `json:"on_time_rate"`
}

// RunStats situates a match within its run: how many rows the run produced
// and where this score sits relative to the others.
type RunStats struct {
	Results   int     `json:"results"`
	Rank      int     `json:"rank"` // 1 is the best score of the run
	MeanScore float64 `json:"mean_score"`
	StdDev    float64 `json:"std_dev"`
}

// MatchExplanation is the stored factor breakdown plus supplier summary
// returned for UI display.
type MatchExplanation struct {
	Match    model.MatchResult `json:"match"`
	Supplier *SupplierSummary  `json:"supplier,omitempty"`
	Run      RunStats          `json:"run"`
}

// ExplainMatch returns the explanation for a persisted match. An unknown
// match id yields ErrNotFound.
func (g *Generator) ExplainMatch(ctx context.Context, matchID string) (*MatchExplanation, error) {
	m, err := g.store.GetMatchResult(ctx, matchID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
		}
		return nil, fmt.Errorf("get match %s: %w", matchID, err)
	}

	ex := &MatchExplanation{Match: *m}

	rows, err := g.store.GetMatchResultsByRFQ(ctx, m.RFQID)
	if err != nil {
		return nil, fmt.Errorf("run rows for rfq %s: %w", m.RFQID, err)
	}
	ex.Run = runStats(rows, *m)

	profile, err := g.store.GetSupplierProfile(ctx, m.SupplierID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("supplier profile %s: %w", m.SupplierID, err)
	}
	if profile != nil {
		ex.Supplier = &SupplierSummary{
			UserID:      profile.UserID,
			RiskLevel:   profile.RiskLevel,
			AvgRating:   profile.AvgRating,
			TotalOrders: profile.TotalOrders,
			OnTimeRate:  profile.OnTimeRate,
		}
	}
	return ex, nil
}

// runStats computes the run-level score distribution.
func runStats(rows []model.MatchResult, m model.MatchResult) RunStats {
	scores := make([]float64, 0, len(rows))
	rank := 1
	for _, r := range rows {
		scores = append(scores, float64(r.Score))
		if r.Score > m.Score {
			rank++
		}
	}
	rs := RunStats{Results: len(rows), Rank: rank}
	if len(scores) > 0 {
		rs.MeanScore = stat.Mean(scores, nil)
	}
	if len(scores) > 1 {
		rs.StdDev = stat.StdDev(scores, nil)
	}
	return rs
}
