package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/application/projections"
)

// handleAvailableDisciplines handles GET /disciplines
func (s *server) handleAvailableDisciplines(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetAvailableDisciplines(r.Context(), projections.GetAvailableDisciplinesDeps{Directory: s.Directory})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]disciplineJSON, 0, len(res.Disciplines))
	for _, d := range res.Disciplines {
		out = append(out, disciplineJSON{Key: d.Key.String(), Display: d.Display})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEligibleCoaches handles GET /disciplines/{discipline}/coaches?session_id=
func (s *server) handleEligibleCoaches(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetEligibleCoaches(r.Context(), projections.GetEligibleCoachesQuery{
		Discipline: chi.URLParam(r, "discipline"),
		SessionID:  r.URL.Query().Get("session_id"),
	}, projections.GetEligibleCoachesDeps{Directory: s.Directory, Sessions: s.Sessions})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := eligibleCoachesResponse{
		Discipline: res.Discipline.String(),
		Display:    res.Display,
		Coaches:    make([]coachJSON, 0, len(res.Coaches)),
	}
	for _, c := range res.Coaches {
		sports := make([]string, 0, len(c.Sports))
		for _, k := range c.Sports {
			sports = append(sports, k.String())
		}
		out.Coaches = append(out.Coaches, coachJSON{ID: c.ID, Name: c.Name, Sports: sports, TeamID: c.TeamID})
	}
	writeJSON(w, http.StatusOK, out)
}
