package model

import "time"

// Factor is a named, weighted sub-score with a human-readable explanation.
// Weights express relative display emphasis only; they do not need to sum
// to one and factors are never combined into the overall score.
type Factor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Score       float64 `json:"score"` // 0-100
	Explanation string  `json:"explanation"`
}

// MatchResult is a persisted, scored pairing of one RFQ with one candidate
// supplier. Rows are immutable; a newer matching run supersedes them.
type MatchResult struct {
	ID         string    `json:"id"`
	RFQID      string    `json:"rfq_id"`
	SupplierID string    `json:"supplier_id"`
	Score      int       `json:"score"` // 0-100, clamped
	Factors    []Factor  `json:"factors"`
	CreatedAt  time.Time `json:"created_at"`
}
