package runs

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/cevcharge/core/runstore"
)

// NewHandler returns an HTTP handler exposing stored runs via GET /api/runs.
// Requests must include an Authorization header with "Bearer <token>" when
// token is non-empty.
//
// Query parameters: scenario, vehicle, since and until (RFC 3339), limit and
// summary. With summary=true the ledgers are omitted.
func NewHandler(store runstore.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		params := r.URL.Query()
		q := runstore.Query{
			Scenario: params.Get("scenario"),
			Vehicle:  params.Get("vehicle"),
		}
		var err error
		if q.Since, err = parseTime(params.Get("since")); err != nil {
			http.Error(w, "invalid since: "+err.Error(), http.StatusBadRequest)
			return
		}
		if q.Until, err = parseTime(params.Get("until")); err != nil {
			http.Error(w, "invalid until: "+err.Error(), http.StatusBadRequest)
			return
		}
		if s := params.Get("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			q.Limit = n
		}
		out, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if params.Get("summary") == "true" {
			for i := range out {
				out[i].Ledger = nil
			}
		}
		if out == nil {
			out = []runstore.Run{}
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(out); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
