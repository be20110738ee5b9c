// Package about loads the about page: the Enso version and the changelog.
package about

import (
	"context"
	"html/template"
	"strings"

	"enso-settings/internal/cmdtable"

	"github.com/rs/zerolog"
)

// API is the backend surface the about page needs.
type API interface {
	Version(ctx context.Context) (string, error)
	Changes(ctx context.Context) (string, error)
}

type Page struct {
	Version string `json:"version"`
	// Changes is the sanitized changelog fragment.
	Changes template.HTML `json:"changes"`
}

// VersionLine is the version caption, e.g. "Version: 0.9.1".
func (p Page) VersionLine() string {
	if p.Version == "" {
		return ""
	}
	return "Version: " + p.Version
}

// Load fetches the version and the changelog. A failing changelog leaves
// Changes empty and does not fail the page.
func Load(ctx context.Context, api API, log zerolog.Logger) (Page, error) {
	var p Page
	v, err := api.Version(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load enso version")
	}
	p.Version = strings.TrimSpace(v)

	changes, cerr := api.Changes(ctx)
	if cerr != nil {
		log.Warn().Err(cerr).Msg("load changelog")
		return p, err
	}
	p.Changes = cmdtable.Sanitize(changes)
	return p, err
}
