package matches

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/procuro/rfqmatch/core/audit"
)

// NewRunLogHandler returns an HTTP handler exposing matching run records via
// GET /api/match-runs. Filters: start, end (RFC3339), rfq_id, supplier_id.
func NewRunLogHandler(store audit.LogStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := audit.RunQuery{}
		if s := r.URL.Query().Get("start"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.Start = t
			}
		}
		if s := r.URL.Query().Get("end"); s != "" {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				q.End = t
			}
		}
		q.RFQID = r.URL.Query().Get("rfq_id")
		q.SupplierID = r.URL.Query().Get("supplier_id")

		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(records); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
