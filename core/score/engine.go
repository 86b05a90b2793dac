// Package score implements the deterministic multi-factor scoring of
// candidate suppliers against an RFQ. The overall score and the display
// factor breakdown are two independently computed views of the same
// supplier; factors are never summed into the score.
package score

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/procuro/rfqmatch/core/model"
)

const (
	baseScore = 75

	// Display factor weights. Relative emphasis only; they are not
	// required to sum to one.
	weightProductFit = 0.3
	weightQuality    = 0.25
	weightPrice      = 0.2
	weightDelivery   = 0.25

	neutralFactorScore = 75
	priceJitterRange   = 10
)

// SpecialtyLookup resolves the set of supplier specialties relevant to a
// category. Implementations are supplied by the caller; the engine only
// performs set-membership checks against the result.
type SpecialtyLookup interface {
	SpecialtiesFor(categoryID string) map[string]bool
}

// StaticLookup is a SpecialtyLookup backed by a fixed map.
type StaticLookup map[string]map[string]bool

// SpecialtiesFor returns the relevant specialties for the category.
func (l StaticLookup) SpecialtiesFor(categoryID string) map[string]bool {
	return l[categoryID]
}

// Engine scores suppliers against RFQs. Scoring is deterministic and
// side-effect free except for the Price display factor, which carries
// bounded jitter around a neutral midpoint. The jitter source is injectable
// so tests can pin it.
type Engine struct {
	lookup SpecialtyLookup

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine with a time-seeded jitter source.
func NewEngine(lookup SpecialtyLookup) *Engine {
	return NewEngineWithSource(lookup, rand.NewSource(time.Now().UnixNano()))
}

// NewEngineWithSource creates an engine with the given jitter source.
func NewEngineWithSource(lookup SpecialtyLookup, src rand.Source) *Engine {
	return &Engine{lookup: lookup, rng: rand.New(src)}
}

// Score ranks one supplier against one RFQ. It returns the overall score in
// [0,100] and the display factor breakdown. A nil profile yields the
// degraded-confidence default of 50 with a single explanatory factor.
func (e *Engine) Score(rfq model.RFQ, profile *model.SupplierProfile) (int, []model.Factor) {
	if profile == nil {
		s := math.Max(50, baseScore-25)
		return int(s), []model.Factor{{
			Name:        "Confidence",
			Weight:      1.0,
			Score:       s,
			Explanation: "No supplier profile on file; degraded-confidence default applied",
		}}
	}

	specialtyMatch := e.specialtyMatch(rfq, *profile)

	raw := float64(baseScore)
	raw += riskAdjustment(profile.RiskLevel)
	if specialtyMatch {
		raw += 5
	}
	raw += performanceAdjustment(*profile)

	return clamp(raw), e.displayFactors(*profile, specialtyMatch)
}

func (e *Engine) specialtyMatch(rfq model.RFQ, profile model.SupplierProfile) bool {
	if rfq.CategoryID == "" || e.lookup == nil {
		return false
	}
	return profile.HasSpecialty(e.lookup.SpecialtiesFor(rfq.CategoryID))
}

// riskAdjustment maps the supplier risk level to a score delta. Unknown
// levels are neutral.
func riskAdjustment(level model.RiskLevel) float64 {
	switch level {
	case model.RiskLow:
		return 10
	case model.RiskHigh:
		return -15
	default:
		return 0
	}
}

// performanceAdjustment sums the rating, delivery and order-volume deltas.
// Ratings below 3 and delivery rates below 0.8 penalize.
func performanceAdjustment(p model.SupplierProfile) float64 {
	adj := (p.AvgRating - 3) * 5
	adj += (p.OnTimeRate - 0.8) * 20
	adj += volumeBonus(p.TotalOrders)
	return adj
}

// volumeBonus rewards completed order volume. Thresholds are mutually
// exclusive; the highest one wins.
func volumeBonus(orders int) float64 {
	switch {
	case orders > 50:
		return 5
	case orders > 20:
		return 3
	case orders > 5:
		return 1
	default:
		return 0
	}
}

// displayFactors derives the four always-present explanation factors. Each
// sub-score is computed independently of the overall score.
func (e *Engine) displayFactors(p model.SupplierProfile, specialtyMatch bool) []model.Factor {
	fit := model.Factor{
		Name:        "Product fit",
		Weight:      weightProductFit,
		Score:       70,
		Explanation: "No declared specialty matches the RFQ category",
	}
	if specialtyMatch {
		fit.Score = 85
		fit.Explanation = "Supplier declares a specialty relevant to the RFQ category"
	}

	quality := model.Factor{
		Name:        "Quality",
		Weight:      weightQuality,
		Score:       neutralFactorScore,
		Explanation: "No ratings yet; neutral default",
	}
	if p.HasRating() {
		quality.Score = math.Min(100, p.AvgRating*20)
		quality.Explanation = fmt.Sprintf("Average rating %.1f/5 across %d orders", p.AvgRating, p.TotalOrders)
	}

	price := model.Factor{
		Name:        "Price",
		Weight:      weightPrice,
		Score:       e.priceEstimate(),
		Explanation: "Estimated price competitiveness; no quote submitted yet",
	}

	delivery := model.Factor{
		Name:        "Delivery",
		Weight:      weightDelivery,
		Score:       neutralFactorScore,
		Explanation: "No delivery history; neutral default",
	}
	if p.OnTimeRate > 0 {
		delivery.Score = math.Min(100, p.OnTimeRate*100)
		delivery.Explanation = fmt.Sprintf("%.0f%% on-time delivery rate", p.OnTimeRate*100)
	}

	return []model.Factor{fit, quality, price, delivery}
}

// priceEstimate returns the jittered Price sub-score. This is the only
// non-deterministic output of the engine; callers must tolerate
// non-repeatability for this factor alone.
func (e *Engine) priceEstimate() float64 {
	e.mu.Lock()
	j := e.rng.Float64()
	e.mu.Unlock()
	return neutralFactorScore + (j*2-1)*priceJitterRange
}

// clamp bounds the raw score to [0,100] and truncates to an integer.
func clamp(raw float64) int {
	if raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return int(math.Round(raw))
}
