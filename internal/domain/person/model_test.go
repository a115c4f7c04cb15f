package person_test

import (
	"testing"

	"clubhouse/internal/domain/discipline"
	"clubhouse/internal/domain/person"
)

// TestParseRole tests case-insensitive role parsing.
func TestParseRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    person.Role
		wantErr bool
	}{
		{"coach", person.RoleCoach, false},
		{" Coach ", person.RoleCoach, false},
		{"ADMIN", person.RoleAdmin, false},
		{"athlete", person.RoleAthlete, false},
		{"player", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := person.ParseRole(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

// TestPerson_Validate tests Person validation rules.
func TestPerson_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       person.Person
		wantErr bool
	}{
		{"valid coach", person.Person{ID: "c1", Name: "Ana", Role: person.RoleCoach, Sports: []discipline.Key{"tennis"}}, false},
		{"valid athlete without sports", person.Person{ID: "a1", Name: "Ben", Role: person.RoleAthlete}, false},
		{"empty id", person.Person{Name: "Ana", Role: person.RoleCoach}, true},
		{"empty name", person.Person{ID: "c1", Role: person.RoleCoach}, true},
		{"bad role", person.Person{ID: "c1", Name: "Ana", Role: "captain"}, true},
		{"empty sport", person.Person{ID: "c1", Name: "Ana", Role: person.RoleCoach, Sports: []discipline.Key{""}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestPerson_SetSports tests normalization and de-duplication of declared sports.
func TestPerson_SetSports(t *testing.T) {
	p := person.Person{ID: "c1", Name: "Ana", Role: person.RoleCoach}
	p.SetSports([]string{"Tennis", "football", " tennis ", ""})
	if len(p.Sports) != 2 {
		t.Fatalf("Sports = %v, want 2 entries", p.Sports)
	}
	if p.Sports[0] != "tennis" || p.Sports[1] != "football" {
		t.Errorf("Sports order = %v, want [tennis football]", p.Sports)
	}
	if !p.DeclaresSport("football") {
		t.Error("expected DeclaresSport(football)")
	}
}

// TestPerson_CanSchedule tests which roles may schedule activities.
func TestPerson_CanSchedule(t *testing.T) {
	for _, r := range person.ValidRoles {
		p := person.Person{Role: r}
		want := r == person.RoleManager || r == person.RoleAdmin
		if got := p.CanSchedule(); got != want {
			t.Errorf("CanSchedule() for %s = %v, want %v", r, got, want)
		}
	}
}

// TestTeam_Validate tests Team validation rules.
func TestTeam_Validate(t *testing.T) {
	valid := person.Team{ID: "t1", Name: "Juniors", Discipline: "football"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid team, got %v", err)
	}
	noDisc := person.Team{ID: "t1", Name: "Juniors"}
	if err := noDisc.Validate(); err == nil {
		t.Error("expected error for team without discipline")
	}
	if valid.HasCoach() {
		t.Error("team without coach reported HasCoach")
	}
}
