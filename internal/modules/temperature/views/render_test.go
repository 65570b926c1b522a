package views

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"tempmon-server/internal/modules/temperature/types"
)

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if dashboardTmpl == nil {
		t.Fatal("LoadTemplates() left dashboardTmpl nil")
	}
}

func TestLoadTemplates_failure(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		// no "templates" directory
		{name: "missing dir", fsys: fstest.MapFS{}},
		{name: "bad syntax", fsys: fstest.MapFS{"templates/dashboard.html": {Data: []byte("{{ .")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := loadTemplatesFromFS(tt.fsys, "templates"); err == nil {
				t.Fatal("loadTemplatesFromFS() = nil; want error")
			}
		})
	}
}

func TestRenderDashboard_notLoaded(t *testing.T) {
	prev := dashboardTmpl
	dashboardTmpl = nil
	t.Cleanup(func() { dashboardTmpl = prev })

	var buf bytes.Buffer
	err := RenderDashboard(&buf, &DashboardData{})
	if err == nil {
		t.Fatal("RenderDashboard() = nil; want error when templates not loaded")
	}
	if !strings.Contains(err.Error(), "not loaded") {
		t.Errorf("err = %q; want message containing \"not loaded\"", err.Error())
	}
}

func TestRenderDashboard_emptyData(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	for name, data := range map[string]*DashboardData{"zero": {}, "nil": nil} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := RenderDashboard(&buf, data); err != nil {
				t.Fatalf("RenderDashboard() = %v; want nil", err)
			}
			out := buf.String()
			if !strings.Contains(out, "<!doctype html>") {
				t.Errorf("output missing doctype; got %q", out)
			}
			if !strings.Contains(out, "No data available") {
				t.Errorf("output missing empty-state text; got %q", out)
			}
			if strings.Contains(out, `id="unavailable"`) {
				t.Errorf("unexpected unavailable notice; got %q", out)
			}
		})
	}
}

func TestRenderDashboard_withData(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	minimum, maximum := 18.25, 24.0
	data := &DashboardData{
		Latest: &types.Measurement{Timestamp: time.Date(2025, 2, 3, 14, 30, 0, 0, time.UTC), Temperature: 22.46},
		Stats: &types.Statistics{
			Period:  types.PeriodDay,
			Average: 21.04,
			Minimum: &minimum,
			Maximum: &maximum,
		},
		Endpoints: DefaultEndpoints,
	}

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, data); err != nil {
		t.Fatalf("RenderDashboard(data) = %v; want nil", err)
	}
	out := buf.String()
	for _, want := range []string{"22.5 °C", "21.0 °C", "18.2 °C", "24.0 °C", "/api/system_info"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q; got %q", want, out)
		}
	}
	// html/template escapes '&' in the alerts link
	if !strings.Contains(out, "/api/alerts?min=10&amp;max=30&amp;hours=24") {
		t.Errorf("alerts link not escaped; got %q", out)
	}
}

func TestRenderDashboard_unavailable(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, &DashboardData{Unavailable: true}); err != nil {
		t.Fatalf("RenderDashboard() = %v; want nil", err)
	}
	if !strings.Contains(buf.String(), "Database is currently unavailable") {
		t.Errorf("output missing unavailable notice; got %q", buf.String())
	}
}

// Ensure RenderDashboard propagates write errors (e.g. closed writer).
func TestRenderDashboard_writeError(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates(): %v", err)
	}

	w := &failingWriter{err: io.ErrClosedPipe}
	err := RenderDashboard(w, &DashboardData{})
	if err != io.ErrClosedPipe {
		t.Errorf("RenderDashboard() = %v; want %v", err, io.ErrClosedPipe)
	}
}

type failingWriter struct{ err error }

func (f *failingWriter) Write([]byte) (int, error) { return 0, f.err }
