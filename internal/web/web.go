// Package web holds the embedded HTML templates for the portal pages and
// the formatting helpers they use.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/optiretina/portal/internal/analysis"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates with the display helpers
// registered.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"percent":  analysis.PercentShort,
		"percent2": analysis.Percent,
		"label":    analysis.DisplayPrediction,
		"datetime": formatDate,
	}).ParseFS(templatesFS, "templates/*.html")
}

// formatDate renders the upstream ISO-8601 date for display. Unparseable
// values pass through untouched.
func formatDate(iso string) string {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.Format("2 Jan 2006 15:04")
		}
	}
	return iso
}
