package views

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"time"

	"tempmon-server/internal/modules/temperature/types"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

var funcs = template.FuncMap{
	"celsius": func(v any) string {
		switch t := v.(type) {
		case float64:
			return fmt.Sprintf("%.1f °C", t)
		case *float64:
			if t == nil {
				return "n/a"
			}
			return fmt.Sprintf("%.1f °C", *t)
		default:
			return "n/a"
		}
	},
	"datetime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04:05")
	},
}

// loadTemplatesFromFS parses the dashboard templates under dir in fsys.
// Tests use it to simulate broken template sets.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	tmpl, err := template.New("").Funcs(funcs).ParseFS(sub, "*.html")
	if err != nil {
		return err
	}
	dashboardTmpl = tmpl
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

type Endpoint struct {
	Path        string
	Description string
}

var DefaultEndpoints = []Endpoint{
	{Path: "/api/current", Description: "latest reading"},
	{Path: "/api/measurements?limit=100", Description: "recent raw measurements"},
	{Path: "/api/hourly?days=7", Description: "hourly averages"},
	{Path: "/api/daily?days=30", Description: "daily averages"},
	{Path: "/api/statistics?period=day", Description: "average, minimum and maximum"},
	{Path: "/api/alerts?min=10&max=30&hours=24", Description: "readings outside the band"},
	{Path: "/api/system_info", Description: "table sizes and database version"},
}

type DashboardData struct {
	Latest      *types.Measurement
	Stats       *types.Statistics
	Unavailable bool
	Endpoints   []Endpoint
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}
