package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"enso-settings/internal/about"
	"enso-settings/internal/cmdtable"
	"enso-settings/internal/editor"
	"enso-settings/internal/model"
	"enso-settings/internal/options"

	"github.com/rs/zerolog"
	"github.com/starfederation/datastar-go/datastar"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

// DefaultDatastarURL is the client bundle the pages load.
const DefaultDatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

// Backend is everything the settings pages ask of Enso.
type Backend interface {
	options.API
	about.API
	editor.ScriptStore
	editor.TaskStore
	cmdtable.Toggler
	Commands(ctx context.Context) ([]model.Command, error)
}

type ServerConfig struct {
	Addr    string
	Backend Backend
	// Memory remembers the last edited namespace. Nil keeps it in memory.
	Memory editor.NamespaceMemory
	Log    zerolog.Logger

	// AutosaveDelay debounces script saves while typing.
	AutosaveDelay time.Duration
	DatastarURL   string
}

// Server renders the settings UI. There is one user, so the editors are
// shared by all requests.
type Server struct {
	mu   sync.RWMutex
	cfg  ServerConfig
	tmpl *template.Template

	category *editor.CategoryEditor
	tasks    *editor.Document
	options  *options.Panel
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.DatastarURL = strings.TrimSpace(cfg.DatastarURL)
	if cfg.Backend == nil {
		return nil, errors.New("web: backend is nil")
	}
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = editor.DefaultAutosaveDelay
	}
	if cfg.DatastarURL == "" {
		cfg.DatastarURL = DefaultDatastarURL
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:  cfg,
		tmpl: tmpl,
		category: editor.NewCategoryEditor(editor.CategoryOptions{
			API:    cfg.Backend,
			Memory: cfg.Memory,
			Log:    cfg.Log,
			Delay:  cfg.AutosaveDelay,
		}),
		tasks:   editor.NewTaskEditor(cfg.Backend, cfg.Log, cfg.AutosaveDelay),
		options: options.NewPanel(cfg.Backend, cfg.Log),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) backend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Backend
}

func (s *Server) log() zerolog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Log
}

// Close stops pending autosaves.
func (s *Server) Close() {
	s.category.Close()
	s.tasks.Close()
	s.options.Close()
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /{$}", s.handleHome)

	mux.HandleFunc("GET /commands", s.handleCommands)
	mux.HandleFunc("POST /commands/toggle", s.handleCommandToggle)

	mux.HandleFunc("GET /edit", s.handleEdit)
	mux.HandleFunc("GET /edit/download", s.handleEditDownload)
	mux.HandleFunc("POST /edit/change", s.handleEditChange)
	mux.HandleFunc("POST /edit/blur", s.handleEditBlur)
	mux.HandleFunc("POST /edit/switch", s.handleEditSwitch)
	mux.HandleFunc("POST /edit/create", s.handleEditCreate)
	mux.HandleFunc("POST /edit/delete", s.handleEditDelete)
	mux.HandleFunc("POST /edit/upload", s.handleEditUpload)
	mux.HandleFunc("POST /edit/stub", s.handleEditStub)

	mux.HandleFunc("GET /tasks", s.handleTasks)
	mux.HandleFunc("GET /tasks/download", s.handleTasksDownload)
	mux.HandleFunc("POST /tasks/change", s.handleTasksChange)
	mux.HandleFunc("POST /tasks/focus", s.handleTasksFocus)
	mux.HandleFunc("POST /tasks/blur", s.handleTasksBlur)
	mux.HandleFunc("POST /tasks/upload", s.handleTasksUpload)

	mux.HandleFunc("GET /options", s.handleOptions)
	mux.HandleFunc("POST /options/theme", s.handleOptionsTheme)
	mux.HandleFunc("POST /options/retreat", s.handleOptionsRetreat)
	mux.HandleFunc("POST /options/retreat-icon", s.handleOptionsRetreatIcon)
	mux.HandleFunc("POST /options/open-config-dir", s.handleOptionsOpenConfigDir)
	mux.HandleFunc("POST /options/ensorc/focus", s.handleEnsorcFocus)
	mux.HandleFunc("POST /options/ensorc/blur", s.handleEnsorcBlur)

	mux.HandleFunc("GET /about", s.handleAbout)
	return mux
}

// baseVM is the chrome shared by every page.
type baseVM struct {
	Page        string
	Title       string
	DatastarURL string
	Error       string
}

func (s *Server) baseVM(page, title string) baseVM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return baseVM{Page: page, Title: title, DatastarURL: s.cfg.DatastarURL}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/commands", http.StatusSeeOther)
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// isDatastar reports whether r was issued by the Datastar client, which
// expects an SSE answer instead of a redirect.
func isDatastar(r *http.Request) bool {
	return r.Header.Get("Datastar-Request") == "true"
}

// ack answers a fire-and-forget action: nothing to patch for Datastar, a
// redirect for plain form posts.
func ack(w http.ResponseWriter, r *http.Request, fallback string) {
	if isDatastar(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

// patch re-renders the named fragment into the element it carries the id
// of, or redirects plain form posts to fallback.
func (s *Server) patch(w http.ResponseWriter, r *http.Request, fallback, name string, data any) {
	if !isDatastar(r) {
		http.Redirect(w, r, fallback, http.StatusSeeOther)
		return
	}
	html, err := s.renderTemplate(name, data)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		return
	}
	_ = sse.PatchElements(html)
}

// status shows a one-line message in the page's status area.
func (s *Server) status(w http.ResponseWriter, r *http.Request, fallback, msg string) {
	if !isDatastar(r) {
		http.Redirect(w, r, fallback, http.StatusSeeOther)
		return
	}
	html, err := s.renderTemplate("status", msg)
	sse := datastar.NewSSE(w, r)
	if err != nil {
		_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
		return
	}
	_ = sse.PatchElements(html, datastar.WithSelector("#status"), datastar.WithMode(datastar.ElementPatchModeInner))
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(8 << 20)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// formBool reads a checkbox: present and not "false"/"off" means checked.
func formBool(r *http.Request, key string) bool {
	v := strings.ToLower(strings.TrimSpace(r.Form.Get(key)))
	return v != "" && v != "false" && v != "off" && v != "0"
}

func writeAttachment(w http.ResponseWriter, name, text string) {
	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(name, `"`, "")+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func readUpload(r *http.Request) (io.ReadCloser, error) {
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	return f, nil
}
