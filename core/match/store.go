package match

import (
	"context"
	"errors"

	"github.com/procuro/rfqmatch/core/model"
)

// ErrNotFound is returned when a requested record is absent. The matching
// run treats it as a no-op; the API boundary maps it to a 404.
var ErrNotFound = errors.New("not found")

// Store is the persistence collaborator consumed by the matcher. The
// relational schema behind it is out of scope; implementations only need to
// honor these narrow read/write operations.
type Store interface {
	// GetRFQ returns the RFQ or ErrNotFound.
	GetRFQ(ctx context.Context, id string) (*model.RFQ, error)
	// GetSuppliersByCategory lists the candidate suppliers for a category.
	GetSuppliersByCategory(ctx context.Context, categoryID string) ([]model.User, error)
	// GetSupplierProfile returns the supplier's profile or ErrNotFound. A
	// missing profile is not fatal to a matching run.
	GetSupplierProfile(ctx context.Context, userID string) (*model.SupplierProfile, error)
	// CreateMatchResult persists one scored pairing.
	CreateMatchResult(ctx context.Context, res model.MatchResult) (model.MatchResult, error)
	// GetMatchResult returns a match row or ErrNotFound.
	GetMatchResult(ctx context.Context, id string) (*model.MatchResult, error)
	// GetMatchResultsByRFQ returns all rows for the RFQ ordered by score,
	// descending.
	GetMatchResultsByRFQ(ctx context.Context, rfqID string) ([]model.MatchResult, error)
}
