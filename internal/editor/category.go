package editor

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"enso-settings/internal/model"

	"github.com/rs/zerolog"
)

var ErrReservedNamespace = errors.New("editor: the user namespace cannot be deleted")

// ScriptStore is the backend side of category scripts.
type ScriptStore interface {
	Categories(ctx context.Context) ([]string, error)
	ReadCategory(ctx context.Context, ns string) (string, error)
	WriteCategory(ctx context.Context, ns, code string) error
	DeleteCategory(ctx context.Context, ns string) error
}

// NamespaceMemory remembers the last edited namespace across runs.
type NamespaceMemory interface {
	LastNamespace(ctx context.Context) (string, error)
	SetLastNamespace(ctx context.Context, ns string) error
}

// CategoryView is a consistent snapshot of the editor for rendering.
type CategoryView struct {
	Current    string
	Text       string
	Namespaces []string
}

// CategoryEditor holds the script text of one command category at a time.
//
// Operations are serialized: a namespace switch always saves the previous
// text before the new text is fetched.
type CategoryEditor struct {
	api      ScriptStore
	mem      NamespaceMemory
	log      zerolog.Logger
	autosave *Debouncer

	mu         sync.Mutex
	current    string
	text       string
	dirty      bool
	namespaces []string
}

type CategoryOptions struct {
	API    ScriptStore
	Memory NamespaceMemory
	Log    zerolog.Logger
	Delay  time.Duration
}

func NewCategoryEditor(opts CategoryOptions) *CategoryEditor {
	e := &CategoryEditor{
		api:     opts.API,
		mem:     opts.Memory,
		log:     opts.Log,
		current: model.ReservedNamespace,
	}
	e.autosave = NewDebouncer(opts.Delay, e.flushDirty)
	return e
}

// Open picks the namespace (requested, else remembered, else "user"),
// fetches the namespace list and loads the script. Unsaved text of the
// namespace being edited is written first.
func (e *CategoryEditor) Open(ctx context.Context, requested string) error {
	e.autosave.Cancel()
	e.mu.Lock()
	if e.dirty {
		_ = e.saveLocked(ctx)
	}
	e.mu.Unlock()

	ns := strings.TrimSpace(requested)
	if ns == "" && e.mem != nil {
		last, err := e.mem.LastNamespace(ctx)
		if err != nil {
			e.log.Warn().Err(err).Msg("read last namespace")
		}
		ns = strings.TrimSpace(last)
	}
	if ns == "" {
		ns = model.ReservedNamespace
	}

	list, listErr := e.api.Categories(ctx)
	if listErr != nil {
		e.log.Warn().Err(listErr).Msg("list script namespaces")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.namespaces = []string{model.ReservedNamespace}
	for _, n := range list {
		if n != model.ReservedNamespace {
			e.namespaces = append(e.namespaces, n)
		}
	}
	e.current = ns
	if err := e.loadLocked(ctx); err != nil {
		return err
	}
	return listErr
}

// View returns a snapshot for rendering.
func (e *CategoryEditor) View() CategoryView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return CategoryView{
		Current:    e.current,
		Text:       e.text,
		Namespaces: append([]string(nil), e.namespaces...),
	}
}

// Current is the namespace being edited.
func (e *CategoryEditor) Current() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Switch saves the current text, then loads ns.
func (e *CategoryEditor) Switch(ctx context.Context, ns string) error {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return nil
	}
	e.autosave.Cancel()

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.saveLocked(ctx); err != nil {
		e.log.Warn().Err(err).Str("namespace", e.current).Msg("save before switch")
	}
	e.current = ns
	e.remember(ctx, ns)
	return e.loadLocked(ctx)
}

// Create switches to name, adding it as a new empty namespace if unknown.
func (e *CategoryEditor) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	e.mu.Lock()
	exists := e.hasLocked(name)
	e.mu.Unlock()
	if exists {
		return e.Switch(ctx, name)
	}

	e.autosave.Cancel()
	e.mu.Lock()
	if err := e.saveLocked(ctx); err != nil {
		e.log.Warn().Err(err).Str("namespace", e.current).Msg("save before create")
	}
	e.namespaces = append(e.namespaces, name)
	e.current = name
	e.text = ""
	// The empty script is written by the next autosave, which creates the
	// namespace on the backend.
	e.dirty = true
	e.remember(ctx, name)
	e.mu.Unlock()

	e.autosave.Notify()
	return nil
}

// Delete removes the current namespace after confirm approves it, then
// opens the next namespace in the list. The reserved "user" namespace is
// refused without asking and without any request.
func (e *CategoryEditor) Delete(ctx context.Context, confirm func(ns string) bool) (bool, error) {
	e.mu.Lock()
	ns := e.current
	e.mu.Unlock()

	if ns == model.ReservedNamespace {
		return false, ErrReservedNamespace
	}
	if confirm != nil && !confirm(ns) {
		return false, nil
	}

	e.autosave.Cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.api.DeleteCategory(ctx, ns); err != nil {
		return false, err
	}

	idx := -1
	for i, n := range e.namespaces {
		if n == ns {
			idx = i
			break
		}
	}
	next := model.ReservedNamespace
	if idx >= 0 {
		e.namespaces = append(e.namespaces[:idx:idx], e.namespaces[idx+1:]...)
		switch {
		case idx < len(e.namespaces):
			next = e.namespaces[idx]
		case idx > 0:
			next = e.namespaces[idx-1]
		}
	}
	e.current = next
	e.dirty = false
	e.remember(ctx, next)
	return true, e.loadLocked(ctx)
}

// Edit replaces the buffer and schedules an autosave.
func (e *CategoryEditor) Edit(text string) {
	e.mu.Lock()
	e.text = text
	e.dirty = true
	e.mu.Unlock()
	e.autosave.Notify()
}

// Blur saves immediately.
func (e *CategoryEditor) Blur(ctx context.Context) error {
	e.autosave.Cancel()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked(ctx)
}

// Upload replaces the buffer with the contents of r.
func (e *CategoryEditor) Upload(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	e.Edit(string(b))
	return nil
}

// InsertStub inserts an example command at byte offset (end of text if out of range).
func (e *CategoryEditor) InsertStub(kind string, offset int) error {
	s, err := stub(kind)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.text = insertAt(e.text, s, offset)
	e.dirty = true
	e.mu.Unlock()
	e.autosave.Notify()
	return nil
}

// Download returns "<namespace>.py" and the current text.
func (e *CategoryEditor) Download() (string, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current + ".py", e.text
}

// Close stops the autosave timer.
func (e *CategoryEditor) Close() {
	e.autosave.Stop()
}

func (e *CategoryEditor) hasLocked(name string) bool {
	for _, n := range e.namespaces {
		if n == name {
			return true
		}
	}
	return false
}

func (e *CategoryEditor) remember(ctx context.Context, ns string) {
	if e.mem == nil {
		return
	}
	if err := e.mem.SetLastNamespace(ctx, ns); err != nil {
		e.log.Warn().Err(err).Str("namespace", ns).Msg("remember namespace")
	}
}

func (e *CategoryEditor) loadLocked(ctx context.Context) error {
	text, err := e.api.ReadCategory(ctx, e.current)
	e.dirty = false
	if err != nil {
		e.text = ""
		e.log.Warn().Err(err).Str("namespace", e.current).Msg("load script")
		return err
	}
	e.text = text
	return nil
}

func (e *CategoryEditor) saveLocked(ctx context.Context) error {
	if err := e.api.WriteCategory(ctx, e.current, e.text); err != nil {
		e.log.Warn().Err(err).Str("namespace", e.current).Msg("save script")
		return err
	}
	e.dirty = false
	return nil
}

func (e *CategoryEditor) flushDirty() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dirty {
		return
	}
	_ = e.saveLocked(context.Background())
}
