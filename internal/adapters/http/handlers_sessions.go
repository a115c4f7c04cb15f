package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"clubhouse/internal/application/listutil"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
)

// handleCreateSession handles POST /sessions
func (s *server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := orchestrators.ExecuteCreateTrainingSession(r.Context(), orchestrators.CreateTrainingSessionInput(req), s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionJSON(sess))
}

// handleUpdateSession handles PATCH /sessions/{id}
func (s *server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionPatchRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := orchestrators.ExecuteUpdateTrainingSession(r.Context(), orchestrators.UpdateTrainingSessionInput{
		ID:    chi.URLParam(r, "id"),
		Patch: req.patch(),
	}, s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(sess))
}

// handleDeleteSession handles DELETE /sessions/{id}
func (s *server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteTrainingSession(r.Context(), orchestrators.DeleteTrainingSessionInput{ID: chi.URLParam(r, "id")}, s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChangeSessionStatus handles POST /sessions/{id}/status
func (s *server) handleChangeSessionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := orchestrators.ExecuteChangeSessionStatus(r.Context(), orchestrators.ChangeSessionStatusInput{
		ID:     chi.URLParam(r, "id"),
		Status: req.Status,
	}, s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(sess))
}

// handleEnrollAthlete handles POST /sessions/{id}/enrollments
func (s *server) handleEnrollAthlete(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := orchestrators.ExecuteEnrollAthlete(r.Context(), orchestrators.EnrollAthleteInput{
		SessionID: chi.URLParam(r, "id"),
		AthleteID: req.AthleteID,
	}, s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecordJSON(rec))
}

// handleUnenrollAthlete handles DELETE /sessions/{id}/enrollments/{athleteID}
func (s *server) handleUnenrollAthlete(w http.ResponseWriter, r *http.Request) {
	removed, err := orchestrators.ExecuteUnenrollAthlete(r.Context(), orchestrators.UnenrollAthleteInput{
		SessionID: chi.URLParam(r, "id"),
		AthleteID: chi.URLParam(r, "athleteID"),
	}, s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, removedResponse{Removed: removed})
}

// handleMarkAttendance handles PUT /sessions/{id}/attendance/{athleteID}
func (s *server) handleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := strictDecode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := orchestrators.ExecuteMarkAttendance(r.Context(), orchestrators.MarkAttendanceInput{
		SessionID: chi.URLParam(r, "id"),
		AthleteID: chi.URLParam(r, "athleteID"),
		Status:    req.Status,
	}, s.sessionDeps())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attendanceResponse{Record: toRecordJSON(res.Record), Enrolled: res.Enrolled})
}

// handleGetSession handles GET /sessions/{id}
func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := projections.QueryGetTrainingSession(r.Context(), projections.GetTrainingSessionQuery{ID: chi.URLParam(r, "id")},
		projections.GetTrainingSessionDeps{Sessions: s.Sessions, Directory: s.Directory})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionDetailJSON(view))
}

// handleListSessions handles GET /sessions?discipline=&coach_id=&status=&from=&to=&limit=&offset=
func (s *server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := listutil.ParsePage(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := projections.QueryListTrainingSessions(r.Context(), projections.ListTrainingSessionsQuery{
		Discipline: q.Get("discipline"),
		CoachID:    q.Get("coach_id"),
		Status:     q.Get("status"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, projections.ListTrainingSessionsDeps{Sessions: s.Sessions})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]sessionJSON, 0, len(res.Sessions))
	for _, sum := range res.Sessions {
		out = append(out, withCounts(toSessionJSON(sum.Session), sum.Enrolled, sum.Remaining))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExportRoster handles GET /sessions/{id}/roster.xlsx
func (s *server) handleExportRoster(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryExportSessionRoster(r.Context(), projections.ExportSessionRosterQuery{SessionID: chi.URLParam(r, "id")},
		projections.ExportSessionRosterDeps{Sessions: s.Sessions, Directory: s.Directory})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Content)))
	_, _ = w.Write(res.Content)
}
