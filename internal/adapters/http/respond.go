package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"clubhouse/internal/application/listutil"
	"clubhouse/internal/application/projections"
	"clubhouse/internal/domain/capacity"
	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/schedule"
	"clubhouse/internal/domain/training"
)

// errBadRequest marks a body or query that could not be decoded.
var errBadRequest = errors.New("invalid request")

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// validationErrors are input-shape failures answered with 400.
var validationErrors = []error{
	errBadRequest,
	listutil.ErrInvalidPage,
	projections.ErrInvalidFilter,
	capacity.ErrInvalidCapacity,
	discipline.ErrEmpty,
	discipline.ErrTooLong,
	training.ErrEmptyCoach,
	training.ErrEmptyLocation,
	training.ErrLocationTooLong,
	training.ErrInvalidDate,
	training.ErrInvalidTime,
	training.ErrInvalidDuration,
	training.ErrEmptyAthlete,
	training.ErrEmptySessionID,
	training.ErrDisciplineNotSet,
	event.ErrEmptyTitle,
	event.ErrTitleTooLong,
	event.ErrDescriptionTooLong,
	event.ErrLocationTooLong,
	event.ErrInvalidType,
	event.ErrInvalidDate,
	event.ErrInvalidTime,
	event.ErrEmptyPerson,
	event.ErrEmptyEventID,
}

// kindStatus maps each rejection kind onto its HTTP status.
var kindStatus = map[schedule.Kind]int{
	schedule.KindNotFound:                http.StatusNotFound,
	schedule.KindCapacityExceeded:        http.StatusConflict,
	schedule.KindCapacityBelowEnrollment: http.StatusConflict,
	schedule.KindDuplicateRegistration:   http.StatusConflict,
	schedule.KindInvalidTransition:       http.StatusConflict,
	schedule.KindSessionClosed:           http.StatusConflict,
	schedule.KindIneligibleCoach:         http.StatusUnprocessableEntity,
	schedule.KindNoEligibleCoach:         http.StatusUnprocessableEntity,
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError answers err with its mapped status. Errors outside the rejection kinds and
// validation failures are logged, reported and answered with a generic 500 body.
func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if kind, ok := schedule.KindOf(err); ok {
		writeJSON(w, kindStatus[kind], errorBody{Error: err.Error(), Kind: string(kind)})
		return
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}
	}

	s.log.Error("internal error",
		zap.String("event", "internal_error"),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	if s.ReportError != nil {
		s.ReportError(err, map[string]string{"method": r.Method, "path": r.URL.Path})
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// strictDecode decodes a JSON body, rejecting unknown fields and trailing data.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}
	return nil
}
