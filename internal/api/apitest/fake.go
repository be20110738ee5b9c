// Package apitest provides an in-memory Enso backend for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"enso-settings/internal/model"
)

// Request is one recorded call against the fake backend.
type Request struct {
	Method string
	Path   string
	Form   url.Values
	Auth   string
}

// Backend mimics the subset of the Enso API the settings UI uses.
type Backend struct {
	mu sync.Mutex

	Version       string
	PythonVersion string
	Themes        model.ColorThemes
	Config        map[string]string
	ConfigDir     string
	Ensorc        string
	Commands      []model.Command
	Scripts       map[string]string
	Tasks         string
	Retreat       bool
	Changes       string

	// Fail maps a path prefix to a status code returned instead of the normal answer.
	Fail map[string]int

	requests []Request
	Server   *httptest.Server
}

// New starts a backend with a few defaults and closes it with the test.
func New(t *testing.T) *Backend {
	t.Helper()
	b := &Backend{
		Version:       "0.9.1",
		PythonVersion: "3.11.4",
		Themes: model.ColorThemes{
			All:     map[string]any{"default": []string{}, "green": []string{}, "red": []string{}},
			Current: "green",
		},
		Config:  map[string]string{},
		Scripts: map[string]string{"user": ""},
		Fail:    map[string]int{},
	}
	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL of the fake backend.
func (b *Backend) URL() string { return b.Server.URL }

// Requests returns a copy of the recorded calls in arrival order.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Request, len(b.requests))
	copy(out, b.requests)
	return out
}

// Paths returns "METHOD path" strings for the recorded calls.
func (b *Backend) Paths() []string {
	var out []string
	for _, r := range b.Requests() {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

// With runs fn while holding the backend lock, for reading or changing
// state while the server is live.
func (b *Backend) With(fn func(b *Backend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// Reset drops recorded calls.
func (b *Backend) Reset() {
	b.mu.Lock()
	b.requests = nil
	b.mu.Unlock()
}

// Script returns the stored text of a namespace.
func (b *Backend) Script(ns string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.Scripts[ns]
	return s, ok
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := url.Values{}
	if r.Method == http.MethodPost {
		form = r.PostForm
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Form: form, Auth: r.Header.Get("Authorization")})

	p := r.URL.Path
	for prefix, code := range b.Fail {
		if strings.HasPrefix(p, prefix) {
			w.WriteHeader(code)
			return
		}
	}

	rest := func(prefix string) (string, bool) {
		if !strings.HasPrefix(p, prefix) {
			return "", false
		}
		return strings.TrimPrefix(p, prefix), true
	}

	switch {
	case p == "/api/enso/version":
		writeText(w, b.Version)
	case p == "/api/python/version":
		writeText(w, b.PythonVersion)
	case p == "/api/enso/color_themes":
		writeJSON(w, b.Themes)
	case p == "/api/enso/get/config_dir":
		writeText(w, b.ConfigDir)
	case p == "/api/enso/open/config_dir":
		writeText(w, "")
	case p == "/api/enso/get/ensorc":
		writeText(w, b.Ensorc)
	case p == "/api/enso/set/ensorc":
		b.Ensorc = form.Get("ensorc")
	case p == "/api/enso/get/commands":
		writeJSON(w, b.Commands)
	case p == "/api/enso/get/user_command_categories":
		names := make([]string, 0, len(b.Scripts))
		for n := range b.Scripts {
			names = append(names, n)
		}
		sort.Strings(names)
		writeJSON(w, names)
	case p == "/api/enso/read_tasks":
		writeText(w, b.Tasks)
	case p == "/api/enso/write_tasks":
		b.Tasks = form.Get("code")
	case p == "/api/retreat/installed":
		if b.Retreat {
			writeText(w, "True")
		}
	case p == "/changes.html":
		writeText(w, b.Changes)
	default:
		if key, ok := rest("/api/enso/get/config/"); ok {
			writeText(w, b.Config[key])
			return
		}
		if kv, ok := rest("/api/enso/set/config/"); ok {
			k, v, _ := strings.Cut(kv, "/")
			b.Config[k] = v
			return
		}
		if name, ok := rest("/api/enso/commands/enable/"); ok {
			b.setDisabled(name, false)
			return
		}
		if name, ok := rest("/api/enso/commands/disable/"); ok {
			b.setDisabled(name, true)
			return
		}
		if ns, ok := rest("/api/enso/commands/read_category/"); ok {
			writeText(w, b.Scripts[ns])
			return
		}
		if ns, ok := rest("/api/enso/commands/write_category/"); ok {
			b.Scripts[ns] = form.Get("code")
			return
		}
		if ns, ok := rest("/api/enso/commands/delete_category/"); ok {
			delete(b.Scripts, ns)
			return
		}
		http.NotFound(w, r)
	}
}

func (b *Backend) setDisabled(name string, disabled bool) {
	for i := range b.Commands {
		if b.Commands[i].Name == name {
			b.Commands[i].Disabled = disabled
		}
	}
}

func writeText(w http.ResponseWriter, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
