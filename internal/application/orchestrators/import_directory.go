package orchestrators

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/person"
)

// DirectoryWriter is the directory surface the seed import writes through.
type DirectoryWriter interface {
	SavePerson(ctx context.Context, p person.Person) error
	SaveTeam(ctx context.Context, t person.Team) error
	ListTeams(ctx context.Context) ([]person.Team, error)
}

// ImportDirectoryInput carries the CSV stream and import options.
// Columns: ID, NAME, ROLE, SPORTS (semicolon separated), TEAM_ID, TEAM_NAME,
// TEAM_DISCIPLINE, COACHES_TEAM (true when the person is the team's assigned coach).
type ImportDirectoryInput struct {
	Reader io.Reader
	DryRun bool
}

// ImportDirectoryResult holds aggregate counts and per-row errors from an import run.
type ImportDirectoryResult struct {
	Total    int
	People   int
	Teams    int
	Errors   []ImportDirectoryRowError
	Warnings []string
	DryRun   bool
}

// ImportDirectoryRowError describes a validation or processing error for a single CSV row.
type ImportDirectoryRowError struct {
	Row     int
	Message string
}

// ImportDirectoryDeps holds external dependencies for the directory import.
type ImportDirectoryDeps struct {
	Directory DirectoryWriter
	Logger    *zap.Logger
}

// ErrImportMissingColumn is returned when a required column is absent from the header.
var ErrImportMissingColumn = errors.New("CSV missing required column")

// ErrImportInvalidCoachesTeam is reported for a COACHES_TEAM value that is not a boolean.
var ErrImportInvalidCoachesTeam = errors.New("COACHES_TEAM must be true or false")

// ExecuteImportDirectory upserts people and teams from a CSV seed.
// PRE: Reader has a header row with at least ID, NAME and ROLE
// POST: valid rows are upserted unless DryRun; invalid rows are reported and skipped.
// A coach assigned to more than one team is accepted with a warning.
func ExecuteImportDirectory(ctx context.Context, input ImportDirectoryInput, deps ImportDirectoryDeps) (ImportDirectoryResult, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cr := csv.NewReader(input.Reader)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportDirectoryResult{}, err
	}
	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"ID", "NAME", "ROLE"} {
		if _, ok := colIdx[required]; !ok {
			return ImportDirectoryResult{}, fmt.Errorf("%w: %s", ErrImportMissingColumn, required)
		}
	}
	getCol := func(row []string, col string) string {
		i, ok := colIdx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	// coach ID -> team IDs they are assigned to, seeded from the stored directory
	coachTeams := make(map[string]map[string]struct{})
	assign := func(coachID, teamID string) {
		if coachTeams[coachID] == nil {
			coachTeams[coachID] = make(map[string]struct{})
		}
		coachTeams[coachID][teamID] = struct{}{}
	}
	existing, err := deps.Directory.ListTeams(ctx)
	if err != nil {
		return ImportDirectoryResult{}, err
	}
	teams := make(map[string]person.Team, len(existing))
	for _, t := range existing {
		teams[t.ID] = t
		if t.HasCoach() {
			assign(t.CoachID, t.ID)
		}
	}

	result := ImportDirectoryResult{DryRun: input.DryRun}
	rowNum := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		result.Total++

		role, err := person.ParseRole(getCol(row, "ROLE"))
		if err != nil {
			result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		p := person.Person{
			ID:     getCol(row, "ID"),
			Name:   getCol(row, "NAME"),
			Role:   role,
			TeamID: getCol(row, "TEAM_ID"),
		}
		p.SetSports(strings.Split(getCol(row, "SPORTS"), ";"))
		if err := p.Validate(); err != nil {
			result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		coaches, err := parseCoachesTeam(getCol(row, "COACHES_TEAM"))
		if err != nil {
			result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: err.Error()})
			continue
		}

		var team *person.Team
		if p.TeamID != "" {
			t := teams[p.TeamID]
			t.ID = p.TeamID
			if name := getCol(row, "TEAM_NAME"); name != "" {
				t.Name = name
			}
			if d := getCol(row, "TEAM_DISCIPLINE"); d != "" {
				t.Discipline = discipline.Normalize(d)
			}
			if coaches {
				if !p.IsCoach() {
					result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: person.ErrCoachNotRole.Error()})
					continue
				}
				t.CoachID = p.ID
			}
			if err := t.Validate(); err != nil {
				result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: "team: " + err.Error()})
				continue
			}
			team = &t
		}

		if !input.DryRun {
			if err := deps.Directory.SavePerson(ctx, p); err != nil {
				log.Error("directory import save failed", zap.String("event", "directory_import_save_failed"), zap.Int("row", rowNum), zap.Error(err))
				result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: "save failed (see server log)"})
				continue
			}
			if team != nil {
				if err := deps.Directory.SaveTeam(ctx, *team); err != nil {
					log.Error("directory import save failed", zap.String("event", "directory_import_save_failed"), zap.Int("row", rowNum), zap.Error(err))
					result.Errors = append(result.Errors, ImportDirectoryRowError{Row: rowNum, Message: "team save failed (see server log)"})
					continue
				}
			}
		}
		result.People++
		if team != nil {
			if prev, seen := teams[team.ID]; !seen || prev != *team {
				result.Teams++
			}
			if prev, seen := teams[team.ID]; seen && prev.HasCoach() && prev.CoachID != team.CoachID {
				delete(coachTeams[prev.CoachID], team.ID)
			}
			teams[team.ID] = *team
			if team.HasCoach() {
				assign(team.CoachID, team.ID)
			}
		}
	}

	for coachID, ts := range coachTeams {
		if len(ts) > 1 {
			w := "coach " + coachID + " is assigned to " + strconv.Itoa(len(ts)) + " teams"
			result.Warnings = append(result.Warnings, w)
			log.Warn("coach assigned to several teams", zap.String("event", "coach_multiple_teams"), zap.String("coach_id", coachID), zap.Int("teams", len(ts)))
		}
	}
	sort.Strings(result.Warnings)

	log.Info("directory import",
		zap.String("event", "directory_import"),
		zap.Bool("dry_run", input.DryRun),
		zap.Int("total", result.Total),
		zap.Int("people", result.People),
		zap.Int("teams", result.Teams),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// parseCoachesTeam reads the COACHES_TEAM column. Empty means false.
func parseCoachesTeam(raw string) (bool, error) {
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w, got %q", ErrImportInvalidCoachesTeam, raw)
	}
	return v, nil
}
