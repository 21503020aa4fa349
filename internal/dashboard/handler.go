package dashboard

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/vilaca/repo-issues/internal/domain"
	"github.com/vilaca/repo-issues/internal/issues"
	"github.com/vilaca/repo-issues/internal/service"
)

// SessionCookie names the cookie carrying the viewer's session ID.
const SessionCookie = "session_id"

const requestTimeout = 30 * time.Second

// Handler handles HTTP requests for the issues viewer.
type Handler struct {
	renderer Renderer
	logger   Logger
	service  IssueService
}

// Logger interface for logging operations (Interface Segregation Principle).
type Logger interface {
	Printf(format string, v ...interface{})
}

// IssueService interface for per-session issue operations (Dependency Inversion Principle).
type IssueService interface {
	EnsureSession(id string) string
	Snapshot(id string) (service.Session, bool)
	HasAPIKey(id string) bool
	SetAPIKey(id, key string) error
	Repositories(ctx context.Context, id string) ([]domain.Repository, error)
	SelectRepository(ctx context.Context, id string, repo domain.Repository) (issues.Collection, error)
	Reload(ctx context.Context, id string) (issues.Collection, error)
	ToggleColumn(id string, column domain.Column) (issues.Collection, error)
	SelectColumn(id string, column domain.Column) (issues.Collection, error)
	SelectDirection(id string, direction domain.Direction) (issues.Collection, error)
}

// HandlerConfig holds configuration for creating a new Handler
type HandlerConfig struct {
	Renderer     Renderer
	Logger       Logger
	IssueService IssueService
}

// NewHandler creates a new Handler with injected dependencies.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
		service:  cfg.IssueService,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.handlePage)
	mux.HandleFunc("/select", h.handleSelect)
	mux.HandleFunc("/reload", h.handleReload)
	mux.HandleFunc("/sort/toggle", h.handleToggle)
	mux.HandleFunc("/sort/column", h.handleSelectColumn)
	mux.HandleFunc("/sort/direction", h.handleSelectDirection)
	mux.HandleFunc("/key", h.handleKey)
	mux.HandleFunc("/api/issues", h.handleIssuesJSON)
	mux.HandleFunc("/api/health", h.handleHealth)
}

// handleHealth serves the health check endpoint.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := h.renderer.RenderHealth(w); err != nil {
		h.logger.Printf("failed to render health: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// handlePage serves the repository list and the selected repository's issues.
// Sessions without an API key get the key form instead.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	id := h.session(w, r)
	w.Header().Set("Content-Type", "text/html")

	if !h.service.HasAPIKey(id) {
		h.renderKeyForm(w, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	page := PageData{}
	repos, err := h.service.Repositories(ctx, id)
	if err != nil {
		h.logger.Printf("failed to list repositories: %v", err)
		page.RepositoriesErr = true
	}
	page.Repositories = repos

	if snap, ok := h.service.Snapshot(id); ok {
		page.Collection = snap.Collection
	} else {
		page.Collection = issues.NewCollection()
	}

	if err := h.renderer.RenderPage(w, page); err != nil {
		h.logger.Printf("failed to render page: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// handleSelect selects a repository and fetches its issues.
func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if owner == "" || name == "" {
		http.Error(w, "owner and name are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	repo := domain.Repository{Owner: owner, Name: name}
	if _, err := h.service.SelectRepository(ctx, id, repo); err != nil {
		h.logger.Printf("failed to select %s: %v", repo.Slug(), err)
	}
	redirectHome(w, r)
}

// handleReload refetches the selected repository's issues.
func (h *Handler) handleReload(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if _, err := h.service.Reload(ctx, id); err != nil {
		h.logger.Printf("failed to reload issues: %v", err)
	}
	redirectHome(w, r)
}

// handleToggle applies a column header click.
func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	column, err := domain.ParseColumn(r.URL.Query().Get("column"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.service.ToggleColumn(id, column); err != nil {
		h.logger.Printf("failed to toggle %s: %v", column, err)
	}
	redirectHome(w, r)
}

// handleSelectColumn applies the sort-by selector.
func (h *Handler) handleSelectColumn(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	column, err := domain.ParseColumn(r.URL.Query().Get("column"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.service.SelectColumn(id, column); err != nil {
		h.logger.Printf("failed to sort by %s: %v", column, err)
	}
	redirectHome(w, r)
}

// handleSelectDirection applies the sort direction selector.
func (h *Handler) handleSelectDirection(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)

	direction, err := domain.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := h.service.SelectDirection(id, direction); err != nil {
		h.logger.Printf("failed to sort %s: %v", direction, err)
	}
	redirectHome(w, r)
}

// handleKey shows the key form on GET and stores the submitted key on POST.
func (h *Handler) handleKey(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)
	w.Header().Set("Content-Type", "text/html")

	switch r.Method {
	case http.MethodGet:
		h.renderKeyForm(w, "")
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			h.renderKeyForm(w, "Invalid form submission")
			return
		}
		err := h.service.SetAPIKey(id, strings.TrimSpace(r.PostForm.Get("api_key")))
		if errors.Is(err, service.ErrEmptyKey) {
			w.WriteHeader(http.StatusBadRequest)
			h.renderKeyForm(w, domain.MissingKeyMessage)
			return
		}
		if err != nil {
			h.logger.Printf("failed to store API key: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		redirectHome(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

// handleIssuesJSON serves the session's issue table as JSON.
func (h *Handler) handleIssuesJSON(w http.ResponseWriter, r *http.Request) {
	id := h.session(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	coll := issues.NewCollection()
	if snap, ok := h.service.Snapshot(id); ok {
		coll = snap.Collection
	}

	if err := h.renderer.RenderIssuesJSON(w, coll); err != nil {
		h.logger.Printf("failed to render issues JSON: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *Handler) renderKeyForm(w http.ResponseWriter, fieldError string) {
	if err := h.renderer.RenderKeyForm(w, fieldError); err != nil {
		h.logger.Printf("failed to render key form: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// session resolves the request's session, issuing a new cookie when the
// presented one is missing or expired.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	presented := ""
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		presented = cookie.Value
	}

	id := h.service.EnsureSession(presented)
	if id != presented {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return id
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// StdLogger wraps the standard log package to implement Logger interface.
type StdLogger struct{}

func NewStdLogger() *StdLogger {
	return &StdLogger{}
}

func (l *StdLogger) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}
