package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/application/listutil"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
)

// handleCreateEvent handles POST /events
func (s *server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := orchestrators.ExecuteCreateEvent(r.Context(), orchestrators.CreateEventInput(req), s.eventDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventJSON(e))
}

// handleUpdateEvent handles PATCH /events/{id}
func (s *server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventPatchRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := orchestrators.ExecuteUpdateEvent(r.Context(), orchestrators.UpdateEventInput{
		ID:    chi.URLParam(r, "id"),
		Patch: req.patch(),
	}, s.eventDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventJSON(e))
}

// handleDeleteEvent handles DELETE /events/{id}
func (s *server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := orchestrators.ExecuteDeleteEvent(r.Context(), orchestrators.DeleteEventInput{ID: chi.URLParam(r, "id")}, s.eventDeps()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChangeEventStatus handles POST /events/{id}/status
func (s *server) handleChangeEventStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	e, err := orchestrators.ExecuteChangeEventStatus(r.Context(), orchestrators.ChangeEventStatusInput{
		ID:     chi.URLParam(r, "id"),
		Status: req.Status,
	}, s.eventDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventJSON(e))
}

// handleRegisterParticipant handles POST /events/{id}/participants
func (s *server) handleRegisterParticipant(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := orchestrators.ExecuteRegisterParticipant(r.Context(), orchestrators.RegisterParticipantInput{
		EventID:  chi.URLParam(r, "id"),
		PersonID: req.PersonID,
	}, s.eventDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, participantRecordJSON{ID: rec.ID, EventID: rec.EventID, PersonID: rec.PersonID, RegisteredAt: rec.RegisteredAt})
}

// handleUnregisterParticipant handles DELETE /events/{id}/participants/{personID}
func (s *server) handleUnregisterParticipant(w http.ResponseWriter, r *http.Request) {
	removed, err := orchestrators.ExecuteUnregisterParticipant(r.Context(), orchestrators.UnregisterParticipantInput{
		EventID:  chi.URLParam(r, "id"),
		PersonID: chi.URLParam(r, "personID"),
	}, s.eventDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// handleGetEvent handles GET /events/{id}
func (s *server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetEvent(r.Context(), projections.GetEventQuery{ID: chi.URLParam(r, "id")},
		projections.GetEventDeps{Events: s.Events, Directory: s.Directory})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDetailJSON(view))
}

// handleListEvents handles GET /events?type=&status=&from=&to=&limit=&offset=
func (s *server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := listutil.ParsePage(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := projections.QueryListEvents(r.Context(), projections.ListEventsQuery{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}, projections.ListEventsDeps{Events: s.Events})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]eventJSON, 0, len(res.Events))
	for _, sum := range res.Events {
		out = append(out, withRegistered(toEventJSON(sum.Event), sum.Registered, sum.Remaining))
	}
	writeJSON(w, http.StatusOK, out)
}
