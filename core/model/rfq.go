package model

import (
	"fmt"
	"time"
)

// RFQStatus describes the lifecycle state of a request for quote.
type RFQStatus string

const (
	RFQDraft   RFQStatus = "draft"
	RFQActive  RFQStatus = "active"
	RFQPending RFQStatus = "pending"
	RFQClosed  RFQStatus = "closed"
)

// RFQ represents a buyer's posted sourcing need.
type RFQ struct {
	ID         string         `json:"id"`
	BuyerID    string         `json:"buyer_id"`
	CategoryID string         `json:"category_id,omitempty"` // empty means uncategorized
	Status     RFQStatus      `json:"status"`
	Quantity   int            `json:"quantity"`
	Budget     float64        `json:"budget"`
	Deadline   time.Time      `json:"deadline"`
	Spec       map[string]any `json:"spec,omitempty"`
}

// Validate checks that the RFQ configuration is sound.
func (r RFQ) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("rfq id is required")
	}
	if r.BuyerID == "" {
		return fmt.Errorf("rfq buyer is required")
	}
	switch r.Status {
	case RFQDraft, RFQActive, RFQPending, RFQClosed:
	default:
		return fmt.Errorf("unknown rfq status %q", r.Status)
	}
	return nil
}

// Mutable reports whether the RFQ may still be edited by its creator.
// Closed RFQs are immutable.
func (r RFQ) Mutable() bool {
	return r.Status != RFQClosed
}

// User identifies a marketplace participant. The matcher only needs the
// identity; everything else lives with the persistence collaborator.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}
