package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	applog "scadenze/internal/log"
	"scadenze/internal/recurring"
)

type eventResponse struct {
	Date         string `json:"date"`
	DaysUntil    int    `json:"days_until"`
	Label        string `json:"label"`
	CanonicalKey string `json:"canonical_key"`
	Amount       string `json:"amount"`
	AmountCents  int64  `json:"amount_cents"`
	Cadence      string `json:"cadence"`
	Risk         string `json:"risk"`
}

type upcomingResponse struct {
	RunID        string          `json:"run_id"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Today        string          `json:"today"`
	Transactions int             `json:"transactions"`
	Events       []eventResponse `json:"events"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once a forecast has been computed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.source.Last(); !ok {
		http.Error(w, "no forecast yet", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleUpcoming returns the latest forecast. Optional query parameters:
// risk (minimum tier) and limit (maximum number of events).
func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	floor := recurring.RiskLow
	if v := q.Get("risk"); v != "" {
		risk, err := recurring.ParseRisk(v)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		floor = risk
	}
	limit := -1
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, r, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	res, ok := s.source.Last()
	if !ok {
		writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: "no forecast computed yet"})
		return
	}

	events := make([]eventResponse, 0, len(res.Events))
	for _, ev := range res.Events {
		if limit >= 0 && len(events) >= limit {
			break
		}
		if !ev.Risk.AtLeast(floor) {
			continue
		}
		events = append(events, eventResponse{
			Date:         ev.Date.String(),
			DaysUntil:    res.Today.DaysUntil(ev.Date),
			Label:        ev.Label,
			CanonicalKey: ev.CanonicalKey,
			Amount:       ev.Amount.String(),
			AmountCents:  ev.Amount.Cents,
			Cadence:      string(ev.Cadence),
			Risk:         string(ev.Risk),
		})
	}

	writeJSON(w, r, http.StatusOK, upcomingResponse{
		RunID:        res.RunID,
		GeneratedAt:  res.GeneratedAt,
		Today:        res.Today.String(),
		Transactions: res.Transactions,
		Events:       events,
	})
}

// handleRefresh schedules a recomputation and returns immediately.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.source.Trigger()
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Forecast refresh requested")
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response", "error", err)
	}
}
