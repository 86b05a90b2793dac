package model

// RiskLevel classifies a supplier's counterparty risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// SupplierProfile aggregates the data the matcher reads about a supplier.
// It is maintained by the supplier and read-only here.
type SupplierProfile struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RiskLevel      RiskLevel `json:"risk_level"`
	Specialties    []string  `json:"specialties,omitempty"`
	Certifications []string  `json:"certifications,omitempty"`

	// Aggregate performance metrics. AvgRating is 0-5 where zero means no
	// ratings yet; OnTimeRate is 0-1.
	AvgRating   float64 `json:"avg_rating"`
	TotalOrders int     `json:"total_orders"`
	OnTimeRate  float64 `json:"on_time_rate"`
}

// HasRating reports whether the supplier has received any ratings.
func (p SupplierProfile) HasRating() bool {
	return p.AvgRating > 0
}

// HasSpecialty reports whether any declared specialty is in the given set.
func (p SupplierProfile) HasSpecialty(relevant map[string]bool) bool {
	for _, s := range p.Specialties {
		if relevant[s] {
			return true
		}
	}
	return false
}
