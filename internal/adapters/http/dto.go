package web

import (
	"time"

	"clubhouse/internal/application/projections"
	"clubhouse/internal/domain/event"
	"clubhouse/internal/domain/training"
)

type sessionRequest struct {
	Discipline      string `json:"discipline"`
	CoachID         string `json:"coach_id"`
	Location        string `json:"location"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
	MaxCapacity     int    `json:"max_capacity"`
}

type sessionPatchRequest struct {
	Discipline      *string `json:"discipline"`
	CoachID         *string `json:"coach_id"`
	Location        *string `json:"location"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	DurationMinutes *int    `json:"duration_minutes"`
	MaxCapacity     *int    `json:"max_capacity"`
}

func (p sessionPatchRequest) patch() training.Patch {
	return training.Patch{
		Discipline:      p.Discipline,
		CoachID:         p.CoachID,
		Location:        p.Location,
		Date:            p.Date,
		Time:            p.Time,
		DurationMinutes: p.DurationMinutes,
		MaxCapacity:     p.MaxCapacity,
	}
}

type eventRequest struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
}

type eventPatchRequest struct {
	Title       *string `json:"title"`
	Type        *string `json:"type"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Time        *string `json:"time"`
	Location    *string `json:"location"`
	Capacity    *int    `json:"capacity"`
}

func (p eventPatchRequest) patch() event.Patch {
	return event.Patch{
		Title:       p.Title,
		Type:        p.Type,
		Description: p.Description,
		Date:        p.Date,
		Time:        p.Time,
		Location:    p.Location,
		Capacity:    p.Capacity,
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

type enrollRequest struct {
	AthleteID string `json:"athlete_id"`
}

type registerRequest struct {
	PersonID string `json:"person_id"`
}

type removedResponse struct {
	Removed bool `json:"removed"`
}

type sessionJSON struct {
	ID              string    `json:"id"`
	Discipline      string    `json:"discipline"`
	CoachID         string    `json:"coach_id"`
	Location        string    `json:"location"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"duration_minutes"`
	MaxCapacity     int       `json:"max_capacity"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Enrolled        *int      `json:"enrolled,omitempty"`
	Remaining       *int      `json:"remaining,omitempty"`
}

func toSessionJSON(s training.Session) sessionJSON {
	return sessionJSON{
		ID:              s.ID,
		Discipline:      s.Discipline.String(),
		CoachID:         s.CoachID,
		Location:        s.Location,
		Date:            s.Date,
		Time:            s.Time,
		DurationMinutes: s.DurationMinutes,
		MaxCapacity:     s.MaxCapacity,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func withCounts(j sessionJSON, enrolled, remaining int) sessionJSON {
	j.Enrolled, j.Remaining = &enrolled, &remaining
	return j
}

type attendeeJSON struct {
	AthleteID string    `json:"athlete_id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type sessionDetailJSON struct {
	sessionJSON
	CoachName string         `json:"coach_name"`
	Attendees []attendeeJSON `json:"attendees"`
}

func toSessionDetailJSON(v projections.TrainingSessionView) sessionDetailJSON {
	out := sessionDetailJSON{
		sessionJSON: withCounts(toSessionJSON(v.Session), v.Enrolled, v.Remaining),
		CoachName:   v.CoachName,
		Attendees:   make([]attendeeJSON, 0, len(v.Attendees)),
	}
	for _, a := range v.Attendees {
		out.Attendees = append(out.Attendees, attendeeJSON{AthleteID: a.AthleteID, Name: a.Name, Status: string(a.Status), UpdatedAt: a.UpdatedAt})
	}
	return out
}

type recordJSON struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	AthleteID string    `json:"athlete_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRecordJSON(r training.AttendanceRecord) recordJSON {
	return recordJSON{ID: r.ID, SessionID: r.SessionID, AthleteID: r.AthleteID, Status: string(r.Status), UpdatedAt: r.UpdatedAt}
}

type attendanceResponse struct {
	Record   recordJSON `json:"record"`
	Enrolled bool       `json:"enrolled"`
}

type eventJSON struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Registered  *int      `json:"registered,omitempty"`
	Remaining   *int      `json:"remaining,omitempty"`
}

func toEventJSON(e event.Event) eventJSON {
	return eventJSON{
		ID:          e.ID,
		Title:       e.Title,
		Type:        e.Type,
		Description: e.Description,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func withRegistered(j eventJSON, registered, remaining int) eventJSON {
	j.Registered, j.Remaining = &registered, &remaining
	return j
}

type participantJSON struct {
	PersonID     string    `json:"person_id"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	RegisteredAt time.Time `json:"registered_at"`
}

type eventDetailJSON struct {
	eventJSON
	DescriptionHTML string            `json:"description_html"`
	Participants    []participantJSON `json:"participants"`
}

func toEventDetailJSON(v projections.EventView) eventDetailJSON {
	out := eventDetailJSON{
		eventJSON:       withRegistered(toEventJSON(v.Event), v.Registered, v.Remaining),
		DescriptionHTML: v.DescriptionHTML,
		Participants:    make([]participantJSON, 0, len(v.Participants)),
	}
	for _, p := range v.Participants {
		out.Participants = append(out.Participants, participantJSON{PersonID: p.PersonID, Name: p.Name, Role: string(p.Role), RegisteredAt: p.RegisteredAt})
	}
	return out
}

type participantRecordJSON struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	PersonID     string    `json:"person_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

type coachJSON struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Sports []string `json:"sports"`
	TeamID string   `json:"team_id,omitempty"`
}

type eligibleCoachesResponse struct {
	Discipline string      `json:"discipline"`
	Display    string      `json:"display"`
	Coaches    []coachJSON `json:"coaches"`
}

type disciplineJSON struct {
	Key     string `json:"key"`
	Display string `json:"display"`
}
