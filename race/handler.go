package race

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/unnonueve/deathrace/record"
)

// Handler exposes the outbound record set as JSON for the external
// presentation layer.
//
//	GET /api/users/{user}?feminine=1          one user's snapshot
//	GET /api/users/{user}/fetches?limit=50    fetch journal (if enabled)
//	GET /api/race?user1=a&user2=b             two-user comparison
func (s *Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/api/users/{user}", s.handleUser)
	r.Get("/api/users/{user}/fetches", s.handleFetches)
	r.Get("/api/race", s.handleRace)
	return r
}

func (s *Service) handleUser(w http.ResponseWriter, r *http.Request) {
	user := chi.URLParam(r, "user")
	report := s.Snapshot(r.Context(), user, s.today(), boolParam(r, "feminine"))
	writeJSON(w, http.StatusOK, report)
}

func (s *Service) handleFetches(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "fetch journal disabled", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.journal.History(r.Context(), chi.URLParam(r, "user"), limit)
	if err != nil {
		s.logger.Error("race: fetch history", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleRace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	user1, user2 := q.Get("user1"), q.Get("user2")
	if user1 == "" || user2 == "" {
		http.Error(w, "user1 and user2 are required", http.StatusBadRequest)
		return
	}
	report := s.Compare(r.Context(), user1, user2, s.today(),
		boolParam(r, "feminine1"), boolParam(r, "feminine2"))
	writeJSON(w, http.StatusOK, report)
}

// today is the server's current calendar date at UTC midnight, the
// anchor for all calendar-relative analytics in HTTP mode.
func (s *Service) today() time.Time {
	now := s.now()
	return record.Day(now.Year(), now.Month(), now.Day())
}

func boolParam(r *http.Request, name string) bool {
	v := r.URL.Query().Get(name)
	return v == "1" || v == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
