package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CLUB_ENV", "")
	t.Setenv("CLUB_STORE", "")
	t.Setenv("CLUB_TZ", "")
	t.Setenv("CLUB_CSRF_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("Store = %q, want sqlite", cfg.Store)
	}
	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.EnrollRetry != 5 {
		t.Errorf("EnrollRetry = %d, want 5", cfg.EnrollRetry)
	}
	if cfg.SlowQuery != 50*time.Millisecond {
		t.Errorf("SlowQuery = %v", cfg.SlowQuery)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	t.Setenv("CLUB_STORE", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("err = %v, want DATABASE_URL complaint", err)
	}
}

func TestLoad_ProductionRequiresCSRFKey(t *testing.T) {
	t.Setenv("CLUB_ENV", "production")
	t.Setenv("CLUB_STORE", "")
	t.Setenv("CLUB_CSRF_KEY", "")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "CLUB_CSRF_KEY") {
		t.Fatalf("err = %v, want CLUB_CSRF_KEY complaint", err)
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	t.Setenv("CLUB_STORE", "mongo")
	t.Setenv("CLUB_TZ", "Mars/Olympus")
	t.Setenv("CLUB_CSRF_KEY", "zz")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"CLUB_STORE", "CLUB_TZ", "CLUB_CSRF_KEY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestLoad_ValidCSRFKey(t *testing.T) {
	t.Setenv("CLUB_STORE", "")
	t.Setenv("CLUB_TZ", "Pacific/Auckland")
	t.Setenv("CLUB_CSRF_KEY", strings.Repeat("ab", 32))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CSRFKey) != 32 {
		t.Errorf("CSRFKey length = %d, want 32", len(cfg.CSRFKey))
	}
	if cfg.Location.String() != "Pacific/Auckland" {
		t.Errorf("Location = %v", cfg.Location)
	}
}
