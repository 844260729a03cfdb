package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/optiretina/portal/internal/analysis"
	"github.com/optiretina/portal/internal/api/middleware"
	"github.com/optiretina/portal/internal/auth"
)

// PageHandler renders the server-side HTML pages. Data shown on protected
// pages is fetched from the analysis service at render time; a fetch failure
// renders the page's empty state with a notice instead of an error page.
type PageHandler struct {
	templates *template.Template
	client    *analysis.Client
	tokens    *auth.TokenManager
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(templates *template.Template, client *analysis.Client, tokens *auth.TokenManager) *PageHandler {
	return &PageHandler{
		templates: templates,
		client:    client,
		tokens:    tokens,
	}
}

type dashboardData struct {
	Session    *auth.Session
	Records    []analysis.Record
	Summary    analysis.Summary
	LoadFailed bool
}

type historyData struct {
	Session    *auth.Session
	Records    []analysis.Record
	Query      string
	LoadFailed bool
}

type uploadData struct {
	Session *auth.Session
}

// Home redirects to the dashboard for authenticated browsers and to the
// login page otherwise.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if _, err := h.tokens.Parse(cookie.Value); err == nil {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// Login renders the sign-in form. The page script posts to /auth/login.
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "login.html", nil)
}

// Dashboard renders the overview page with the derived counts and the
// recent records.
func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{Session: middleware.GetSession(r.Context())}

	records, err := h.client.History(r.Context())
	if err != nil {
		slog.Error("dashboard history fetch failed", "error", err)
		data.LoadFailed = true
	} else {
		data.Records = records
		data.Summary = analysis.Summarize(records)
	}

	h.render(w, r, "dashboard.html", data)
}

// Upload renders the new-analysis page. The upload itself goes through
// POST /api/analyze from the page script.
func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "upload.html", uploadData{Session: middleware.GetSession(r.Context())})
}

// History renders the full records table. The optional q parameter filters
// the full retrieved snapshot locally; filtering is never pushed upstream.
func (h *PageHandler) History(w http.ResponseWriter, r *http.Request) {
	data := historyData{
		Session: middleware.GetSession(r.Context()),
		Query:   r.URL.Query().Get("q"),
	}

	records, err := h.client.History(r.Context())
	if err != nil {
		slog.Error("history fetch failed", "error", err)
		data.LoadFailed = true
	} else {
		data.Records = analysis.Filter(records, data.Query)
	}

	h.render(w, r, "history.html", data)
}

// render executes a template into a buffer so a failure mid-render cannot
// leak a partial page.
func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
