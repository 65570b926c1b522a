package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	// keep a developer's .env out of the test
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	err := root.Execute()
	return out.String(), err
}

func setSQLiteEnv(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "temperature.db")
	t.Setenv("APP_ENV", "dev")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DEBUG", "false")
	t.Setenv("DB_DSN", "")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("SQLITE_PATH", path)
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if got, want := strings.TrimSpace(out), appName+" "+version; got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestVersionCommand_ignoresBadConfig(t *testing.T) {
	t.Setenv("APP_ENV", "staging")

	if _, err := execute(t, "version"); err != nil {
		t.Errorf("version with invalid APP_ENV = %v; want nil", err)
	}
}

func TestMigrateCommand(t *testing.T) {
	setSQLiteEnv(t)

	out, err := execute(t, "migrate", "--dry-run")
	if err != nil {
		t.Fatalf("migrate --dry-run: %v", err)
	}
	if !strings.Contains(out, "pending migration") || !strings.Contains(out, "0001_schema.sql") {
		t.Errorf("dry-run output = %q; want pending 0001_schema.sql", out)
	}

	out, err = execute(t, "migrate")
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !strings.Contains(out, "Applied 0001_schema.sql") {
		t.Errorf("output = %q; want applied 0001_schema.sql", out)
	}

	out, err = execute(t, "migrate")
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("second output = %q; want up to date", out)
	}
}

func TestCommands_invalidConfig(t *testing.T) {
	setSQLiteEnv(t)
	t.Setenv("DB_DRIVER", "mysql")

	for _, args := range [][]string{{"migrate"}, {"serve"}} {
		t.Run(args[0], func(t *testing.T) {
			_, err := execute(t, args...)
			if err == nil || !strings.Contains(err.Error(), "DB_DRIVER") {
				t.Errorf("err = %v; want invalid DB_DRIVER", err)
			}
		})
	}
}

func TestServeCommand_rejectsArgs(t *testing.T) {
	setSQLiteEnv(t)

	if _, err := execute(t, "serve", "extra"); err == nil {
		t.Error("serve extra = nil; want error")
	}
}
