package projections

import (
	"context"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the roster workbook.
const (
	RosterSheet  = "Roster"
	SessionSheet = "Session"
)

// ExportSessionRosterQuery carries query parameters.
type ExportSessionRosterQuery struct {
	SessionID string
}

// ExportSessionRosterResult holds the encoded workbook.
type ExportSessionRosterResult struct {
	Filename string
	Content  []byte
}

// ExportSessionRosterDeps holds dependencies for ExportSessionRoster.
type ExportSessionRosterDeps struct {
	Sessions  SessionStore
	Directory DirectoryStore
}

// QueryExportSessionRoster builds an xlsx attendance sheet for one session.
// PRE: SessionID names an existing session
// POST: the Roster sheet has a header row and one row per attendance record
func QueryExportSessionRoster(ctx context.Context, query ExportSessionRosterQuery, deps ExportSessionRosterDeps) (ExportSessionRosterResult, error) {
	view, err := QueryGetTrainingSession(ctx, GetTrainingSessionQuery{ID: query.SessionID}, GetTrainingSessionDeps(deps))
	if err != nil {
		return ExportSessionRosterResult{}, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", RosterSheet); err != nil {
		return ExportSessionRosterResult{}, fmt.Errorf("rename sheet: %w", err)
	}
	rows := [][]string{{"Athlete ID", "Name", "Status", "Updated"}}
	for _, a := range view.Attendees {
		rows = append(rows, []string{a.AthleteID, a.Name, string(a.Status), a.UpdatedAt.UTC().Format("2006-01-02 15:04")})
	}
	if err := writeSheet(f, RosterSheet, rows); err != nil {
		return ExportSessionRosterResult{}, err
	}

	s := view.Session
	if _, err := f.NewSheet(SessionSheet); err != nil {
		return ExportSessionRosterResult{}, fmt.Errorf("new sheet: %w", err)
	}
	summary := [][]string{
		{"Field", "Value"},
		{"Discipline", s.Discipline.Display()},
		{"Coach", view.CoachName},
		{"Date", s.Date},
		{"Time", s.Time},
		{"Duration (min)", strconv.Itoa(s.DurationMinutes)},
		{"Location", s.Location},
		{"Status", string(s.Status)},
		{"Capacity", strconv.Itoa(s.MaxCapacity)},
		{"Enrolled", strconv.Itoa(view.Enrolled)},
	}
	if err := writeSheet(f, SessionSheet, summary); err != nil {
		return ExportSessionRosterResult{}, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return ExportSessionRosterResult{}, fmt.Errorf("encode workbook: %w", err)
	}
	return ExportSessionRosterResult{
		Filename: fmt.Sprintf("roster_%s_%s.xlsx", s.Discipline, s.Date),
		Content:  buf.Bytes(),
	}, nil
}

// writeSheet fills sheet from rows, bolds and filters the header row and sizes columns
// by content length.
func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0])
	widths := make([]float64, cols)
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for c, v := range row {
			vals[c] = v
			if w := float64(len(v)) * 1.1; c < cols && w > widths[c] {
				widths[c] = w
			}
		}
		if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
			return fmt.Errorf("set row %d: %w", r+1, err)
		}
	}

	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.AutoFilter(sheet, "A1:"+last+"1", nil); err != nil {
		return fmt.Errorf("header filter: %w", err)
	}
	for c, w := range widths {
		name, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, max(12, min(w, 40))); err != nil {
			return fmt.Errorf("column %s width: %w", name, err)
		}
	}
	return nil
}
