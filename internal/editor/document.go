package editor

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Document is a single script edited against a fixed load/save endpoint pair.
// A placeholder is shown while the stored text is empty; the placeholder
// itself is never saved.
type Document struct {
	placeholder string
	filename    string
	load        func(context.Context) (string, error)
	save        func(context.Context, string) error
	log         zerolog.Logger
	autosave    *Debouncer

	mu    sync.Mutex
	text  string
	dirty bool
}

type DocumentOptions struct {
	Placeholder string
	// Filename is the suggested download name.
	Filename string
	Load     func(context.Context) (string, error)
	Save     func(context.Context, string) error
	Log      zerolog.Logger
	// Autosave is the debounce delay after an edit. Zero saves on blur only.
	Autosave time.Duration
}

func NewDocument(opts DocumentOptions) *Document {
	d := &Document{
		placeholder: opts.Placeholder,
		filename:    opts.Filename,
		load:        opts.Load,
		save:        opts.Save,
		log:         opts.Log,
	}
	if opts.Autosave > 0 {
		d.autosave = NewDebouncer(opts.Autosave, d.flushDirty)
	}
	return d
}

// Load fetches the stored text. Errors and blank text show the placeholder.
func (d *Document) Load(ctx context.Context) error {
	text, err := d.load(ctx)
	text = strings.TrimSpace(text)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.dirty = false
	if err != nil || text == "" {
		d.text = d.placeholder
		if err != nil {
			d.log.Warn().Err(err).Str("document", d.filename).Msg("load script")
		}
		return err
	}
	d.text = text
	return nil
}

// Text is the current buffer.
func (d *Document) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

// Placeholder is the text shown while nothing has been customized.
func (d *Document) Placeholder() string { return d.placeholder }

// IsPlaceholder reports whether the buffer still shows the placeholder.
func (d *Document) IsPlaceholder() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text == d.placeholder
}

// Focus clears the placeholder so the user starts from an empty buffer.
func (d *Document) Focus() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.text == d.placeholder {
		d.text = ""
	}
}

// Edit replaces the buffer and schedules an autosave.
func (d *Document) Edit(text string) {
	d.mu.Lock()
	d.text = text
	d.dirty = true
	d.mu.Unlock()
	d.autosave.Notify()
}

// Upload replaces the buffer with the contents of r.
func (d *Document) Upload(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	d.Edit(string(b))
	return nil
}

// Blur saves immediately unless the buffer is the placeholder, then shows
// the placeholder again if the buffer was left empty.
func (d *Document) Blur(ctx context.Context) error {
	d.autosave.Cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.text == d.placeholder {
		return nil
	}
	err := d.saveLocked(ctx)
	if d.text == "" {
		d.text = d.placeholder
	}
	return err
}

// Download returns the suggested file name and the text to save.
func (d *Document) Download() (string, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.text == d.placeholder {
		return d.filename, ""
	}
	return d.filename, d.text
}

// Close stops the autosave timer.
func (d *Document) Close() {
	d.autosave.Stop()
}

func (d *Document) flushDirty() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dirty || d.text == d.placeholder {
		return
	}
	_ = d.saveLocked(context.Background())
}

func (d *Document) saveLocked(ctx context.Context) error {
	if err := d.save(ctx, d.text); err != nil {
		d.log.Warn().Err(err).Str("document", d.filename).Msg("save script")
		return err
	}
	d.dirty = false
	return nil
}
