package about

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"enso-settings/internal/api"
	"enso-settings/internal/api/apitest"
	"enso-settings/internal/logging"
)

func newTestAPI(t *testing.T, b *apitest.Backend) *api.Enso {
	t.Helper()
	return api.NewEnso(api.NewClient(api.ClientConfig{BaseURL: b.URL(), Log: logging.Nop()}))
}

func TestLoad_SanitizesChangelog(t *testing.T) {
	b := apitest.New(t)
	b.With(func(b *apitest.Backend) {
		b.Changes = `<h2>0.9.1</h2><ul><li>Fixed <b>tray</b> icon</li></ul><script>alert(1)</script>`
	})

	p, err := Load(context.Background(), newTestAPI(t, b), logging.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.VersionLine() != "Version: 0.9.1" {
		t.Fatalf("VersionLine = %q", p.VersionLine())
	}
	if strings.Contains(string(p.Changes), "script") {
		t.Fatalf("changelog not sanitized: %s", p.Changes)
	}
	if !strings.Contains(string(p.Changes), "<b>tray</b>") {
		t.Fatalf("changelog lost markup: %s", p.Changes)
	}
}

func TestLoad_FailingChangelogLeavesItEmpty(t *testing.T) {
	b := apitest.New(t)
	b.With(func(b *apitest.Backend) { b.Fail["/changes.html"] = http.StatusNotFound })

	p, err := Load(context.Background(), newTestAPI(t, b), logging.Nop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Version != "0.9.1" || p.Changes != "" {
		t.Fatalf("unexpected page: %+v", p)
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	got := HTMLToMarkdown(`<h2>0.9.1</h2>
<ul>
  <li>Fixed <b>tray</b> icon</li>
  <li>See <a href="https://example.org/x">notes</a></li>
</ul>
<p>Thanks   to <code>all</code>.</p>`)

	for _, want := range []string{
		"## 0.9.1",
		"- Fixed **tray** icon",
		"- See [notes](https://example.org/x)",
		"Thanks to `all`.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("markdown missing %q:\n%s", want, got)
		}
	}
}

func TestHTMLToMarkdown_KeepsTextInsideBlocks(t *testing.T) {
	cases := map[string]string{
		`<p>Fixed <b>bugs</b></p>`:                   "Fixed **bugs**\n",
		`<p>Zap it</p>`:                              "Zap it\n",
		`<div>Plain <i>x</i><p>Nested</p>tail</div>`: "Plain *x*\n\nNested\n\ntail\n",
		`<strong>Top</strong> level`:                 "**Top** level\n",
	}
	for in, want := range cases {
		if got := HTMLToMarkdown(in); got != want {
			t.Fatalf("HTMLToMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderTerminal_Plain(t *testing.T) {
	p := Page{Version: "0.9.1", Changes: "<p>Hello changelog</p>"}
	out := RenderTerminal(p, 80, "notty")
	if !strings.Contains(out, "Version: 0.9.1") || !strings.Contains(out, "Hello changelog") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
