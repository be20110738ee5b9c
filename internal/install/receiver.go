package install

import (
	"embed"
	"html/template"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed assets/*.html assets/*.js
var assetsFS embed.FS

// Enqueuer accepts confirmed command URLs.
type Enqueuer interface {
	Enqueue(url string) bool
}

// Receiver answers the Install forms. A first POST renders a confirmation
// page carrying a one-time nonce; the confirmed POST queues the URL.
type Receiver struct {
	queue Enqueuer
	log   zerolog.Logger
	tmpl  *template.Template

	mu     sync.Mutex
	nonces map[string]string
}

func NewReceiver(queue Enqueuer, log zerolog.Logger) (*Receiver, error) {
	tmpl, err := template.ParseFS(assetsFS, "assets/*.html")
	if err != nil {
		return nil, err
	}
	return &Receiver{queue: queue, log: log, tmpl: tmpl, nonces: map[string]string{}}, nil
}

func (rc *Receiver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rc.serveGet(w, r)
	case http.MethodPost:
		rc.servePost(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (rc *Receiver) serveGet(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/install.js" {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("404 Not Found"))
		return
	}
	b, err := assetsFS.ReadFile("assets/install.js")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/javascript")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type pageVM struct {
	URL   string
	Ref   string
	Nonce string
}

func (rc *Receiver) servePost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		badRequest(w)
		return
	}
	u := strings.TrimSpace(r.PostForm.Get("url"))
	ref := strings.TrimSpace(r.PostForm.Get("ref"))
	if u == "" || ref == "" {
		badRequest(w)
		return
	}

	nonce := r.PostForm.Get("nonce")
	if nonce == "" {
		nonce = uuid.NewString()
		rc.mu.Lock()
		rc.nonces[u] = nonce
		rc.mu.Unlock()
		rc.render(w, "confirm.html", pageVM{URL: u, Ref: ref, Nonce: nonce})
		return
	}

	rc.mu.Lock()
	want, ok := rc.nonces[u]
	if ok && want == nonce {
		delete(rc.nonces, u)
	}
	rc.mu.Unlock()
	if !ok || want != nonce {
		rc.log.Warn().Str("url", u).Msg("install: nonce mismatch")
		badRequest(w)
		return
	}

	install := r.PostForm.Get("install")
	cancel := r.PostForm.Get("cancel")
	if install != "" || cancel == "" {
		rc.queue.Enqueue(u)
		rc.log.Info().Str("url", u).Msg("install: queued")
	}
	rc.render(w, "redirect.html", pageVM{URL: u, Ref: ref})
}

func (rc *Receiver) render(w http.ResponseWriter, name string, vm pageVM) {
	var b strings.Builder
	if err := rc.tmpl.ExecuteTemplate(&b, name, vm); err != nil {
		rc.log.Error().Err(err).Str("template", name).Msg("install: render")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func badRequest(w http.ResponseWriter) {
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte("Bad Request"))
}
