package httpx

import (
	"fmt"
	"html"
	"net/http"

	"github.com/Hissaria17/alcrm-sub001/internal/domain/access"
)

// PageHandlers serves the application pages. The rendering is
// deliberately minimal; every page sits behind the request guard, which
// is what these handlers exist to exercise.
type PageHandlers struct {
	Decider access.Decider
}

func (h *PageHandlers) page(w http.ResponseWriter, r *http.Request, title string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	who := "anonymous"
	if session, ok := GetUserSessionFromContext(r.Context()); ok {
		who = fmt.Sprintf("%s (%s)", html.EscapeString(session.Email), GetRoleFromContext(r.Context()))
	}
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head>"+
		"<body><h1>%s</h1><p>Signed in as: %s</p></body></html>",
		html.EscapeString(title), html.EscapeString(title), who)
}

func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "AlCRM")
}

func (h *PageHandlers) About(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "About")
}

func (h *PageHandlers) Signin(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Sign in")
}

func (h *PageHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Sign up")
}

// Unauthorized renders as a plain public page; denials are expressed
// by the guard's redirects, not by this page's status code.
func (h *PageHandlers) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Unauthorized")
}

func (h *PageHandlers) Jobs(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Job listings")
}

func (h *PageHandlers) JobDetail(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Job "+r.PathValue("id"))
}

func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Dashboard")
}

func (h *PageHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Admin dashboard")
}

func (h *PageHandlers) Applications(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Applications")
}

func (h *PageHandlers) Account(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "Account")
}
