package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrNoCommand = errors.New("install: there was no command to install")
	ErrNotPython = errors.New("install: command file is not a .py file")
	ErrExists    = errors.New("install: a command with that name already exists")
)

// Doer fetches command scripts.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Result describes one installation attempt.
type Result struct {
	URL      string   `json:"url"`
	File     string   `json:"file,omitempty"`
	Commands []string `json:"commands,omitempty"`
	Err      error    `json:"-"`
}

// Message is the user-facing outcome text.
func (r Result) Message() string {
	if r.Err != nil {
		switch {
		case errors.Is(r.Err, ErrExists):
			return "You already have a command named " + strings.TrimSuffix(filepath.Base(r.File), ".py")
		case errors.Is(r.Err, ErrNoCommand):
			return "There was no command to install!"
		case errors.Is(r.Err, ErrNotPython):
			return "Couldn't install this command " + path.Base(r.File)
		}
		return "Couldn't install that command"
	}
	switch len(r.Commands) {
	case 0:
		return strings.TrimSuffix(filepath.Base(r.File), ".py") + " was installed"
	case 1:
		return r.Commands[0] + " is now a command"
	}
	return strings.Join(r.Commands, ", ") + " are now commands"
}

type InstallerOptions struct {
	// Dir is the scripts folder commands are written to.
	Dir  string
	HTTP Doer
	Log  zerolog.Logger
	// Notify receives every result, e.g. to show a message.
	Notify func(Result)
	// Queue is the capacity of pending URLs.
	Queue int
}

// Installer downloads queued command URLs into the scripts folder, one at a
// time.
type Installer struct {
	dir    string
	http   Doer
	log    zerolog.Logger
	notify func(Result)
	jobs   chan string
}

func NewInstaller(opts InstallerOptions) *Installer {
	if opts.HTTP == nil {
		opts.HTTP = http.DefaultClient
	}
	if opts.Queue <= 0 {
		opts.Queue = 16
	}
	return &Installer{
		dir:    opts.Dir,
		http:   opts.HTTP,
		log:    opts.Log,
		notify: opts.Notify,
		jobs:   make(chan string, opts.Queue),
	}
}

// Enqueue schedules u for installation. It reports false when the queue is full.
func (in *Installer) Enqueue(u string) bool {
	select {
	case in.jobs <- u:
		return true
	default:
		in.log.Warn().Str("url", u).Msg("install queue full")
		return false
	}
}

// Run installs queued URLs until ctx is done.
func (in *Installer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-in.jobs:
			res := in.Install(ctx, u)
			ev := in.log.Info()
			if res.Err != nil {
				ev = in.log.Warn().Err(res.Err)
			}
			ev.Str("url", u).Str("file", res.File).Msg(res.Message())
			if in.notify != nil {
				in.notify(res)
			}
		}
	}
}

// Install fetches one command script and writes it to the scripts folder.
func (in *Installer) Install(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	name, err := fileName(rawURL)
	if err != nil {
		res.Err = err
		return res
	}
	res.File = filepath.Join(in.dir, name)

	text, err := in.fetch(ctx, rawURL)
	if err != nil {
		res.Err = fmt.Errorf("install: fetch %s: %w", rawURL, err)
		return res
	}
	if len(strings.Split(text, "\n")) < 3 {
		res.Err = ErrNoCommand
		return res
	}
	if !strings.HasSuffix(name, ".py") {
		res.Err = ErrNotPython
		return res
	}
	if _, err := os.Stat(res.File); err == nil {
		res.Err = ErrExists
		return res
	}

	text = normalizeNewlines(text)
	res.Commands = CommandNames(text)
	if err := os.MkdirAll(in.dir, 0o755); err != nil {
		res.Err = err
		return res
	}
	// The file may have appeared since the Stat above.
	f, err := os.OpenFile(res.File, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			err = ErrExists
		}
		res.Err = err
		return res
	}
	if _, err := io.WriteString(f, text); err != nil {
		_ = f.Close()
		res.Err = err
		return res
	}
	res.Err = f.Close()
	return res
}

func (in *Installer) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := in.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func fileName(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("install: bad url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		return "", ErrNotPython
	}
	return name, nil
}

// normalizeNewlines converts CRLF and lone CR to LF. Everything else is
// written as fetched.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

var cmdDef = regexp.MustCompile(`(?m)^def\s+cmd_(\w+)\s*\(`)

// CommandNames lists the commands a script defines: cmd_open_url becomes
// "open url".
func CommandNames(text string) []string {
	var out []string
	for _, m := range cmdDef.FindAllStringSubmatch(text, -1) {
		out = append(out, strings.ReplaceAll(m[1], "_", " "))
	}
	return out
}
