// Package matches exposes the matching read and trigger endpoints consumed
// by the web frontend.
package matches

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/procuro/rfqmatch/core/logger"
	"github.com/procuro/rfqmatch/core/match"
)

// NewHandler returns an HTTP handler for the match endpoints:
//
//	GET  /api/rfqs/{id}/matches           ranked results for an RFQ
//	POST /api/rfqs/{id}/matches           trigger a matching run
//	GET  /api/matches/{id}/explanation    factor breakdown for one match
func NewHandler(gen *match.Generator, store match.Store, log logger.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/rfqs/{id}/matches", listMatches(store))
	mux.HandleFunc("POST /api/rfqs/{id}/matches", triggerRun(gen, log))
	mux.HandleFunc("GET /api/matches/{id}/explanation", explainMatch(gen))
	return mux
}

func listMatches(store match.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rfqID := r.PathValue("id")
		if _, err := store.GetRFQ(r.Context(), rfqID); err != nil {
			if errors.Is(err, match.ErrNotFound) {
				http.Error(w, "rfq not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		rows, err := store.GetMatchResultsByRFQ(r.Context(), rfqID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rows); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// triggerRun runs matching synchronously. Runs are idempotent per supplier
// so retrying a request only refreshes the scores.
func triggerRun(gen *match.Generator, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rfqID := r.PathValue("id")
		if err := gen.GenerateMatches(r.Context(), rfqID); err != nil {
			log.Errorf("matching run for rfq %s: %v", rfqID, err)
			http.Error(w, "matching run failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func explainMatch(gen *match.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ex, err := gen.ExplainMatch(r.Context(), r.PathValue("id"))
		if err != nil {
			if errors.Is(err, match.ErrNotFound) {
				http.Error(w, "match not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(ex); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}
