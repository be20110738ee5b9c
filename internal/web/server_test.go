package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"enso-settings/internal/api"
	"enso-settings/internal/api/apitest"
	"enso-settings/internal/cmdtable"
	"enso-settings/internal/logging"
	"enso-settings/internal/model"
	"enso-settings/internal/store"
)

func newTestServer(t *testing.T, b *apitest.Backend) *Server {
	t.Helper()
	enso := api.NewEnso(api.NewClient(api.ClientConfig{BaseURL: b.URL(), Token: "tok", Log: logging.Nop()}))
	s, err := NewServer(ServerConfig{
		Addr:          "127.0.0.1:0",
		Backend:       enso,
		Memory:        &store.State{},
		Log:           logging.Nop(),
		AutosaveDelay: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func do(t *testing.T, s *Server, method, target string, form url.Values, datastar bool) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if datastar {
		req.Header.Set("Datastar-Request", "true")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestServer_HomeRedirectsAndHealth(t *testing.T) {
	s := newTestServer(t, apitest.New(t))

	rr := do(t, s, http.MethodGet, "/", nil, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/commands" {
		t.Fatalf("GET / = %d %q", rr.Code, rr.Header().Get("Location"))
	}
	rr = do(t, s, http.MethodGet, "/health", nil, false)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok\n" {
		t.Fatalf("health = %d %q", rr.Code, rr.Body.String())
	}
	rr = do(t, s, http.MethodGet, "/static/app.css", nil, false)
	if rr.Code != http.StatusOK || !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/css") {
		t.Fatalf("css = %d %q", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestServer_CommandsPage(t *testing.T) {
	b := apitest.New(t)
	b.With(func(b *apitest.Backend) {
		b.Commands = []model.Command{
			{Name: "open", Category: "web", Description: `Opens <b>it</b><script>x()</script>`},
			{Name: "google", Category: "web"},
			{Name: "calc", Category: "other", Disabled: true},
		}
	})
	s := newTestServer(t, b)

	rr := do(t, s, http.MethodGet, "/commands", nil, false)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"other commands", `href="/edit?web"`, `rowspan="2"`, "Opens <b>it</b>", "3 commands in 2 categories"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}
	if strings.Contains(body, "<script>x()") {
		t.Fatalf("description must be sanitized")
	}
	if strings.Index(body, "other commands") > strings.Index(body, `href="/edit?web"`) {
		t.Fatalf("categories should be sorted")
	}
}

func TestServer_ToggleIssuesOneRequest(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)

	rr := do(t, s, http.MethodPost, "/commands/toggle", url.Values{"name": {"learn as"}, "enabled": {"true"}}, true)
	if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/event-stream") {
		t.Fatalf("expected SSE answer, got %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Body.String(), "learn as enabled") {
		t.Fatalf("status not patched: %s", rr.Body.String())
	}

	rr = do(t, s, http.MethodPost, "/commands/toggle", url.Values{"name": {"learn as"}}, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("plain post should redirect, got %d", rr.Code)
	}

	want := []string{
		"GET /api/enso/commands/enable/learn as",
		"GET /api/enso/commands/disable/learn as",
	}
	if got := b.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
}

func TestServer_EditSwitchSavesThenLoads(t *testing.T) {
	b := apitest.New(t)
	b.With(func(b *apitest.Backend) {
		b.Scripts = map[string]string{"user": "", "web": "def cmd_web(e): pass"}
	})
	s := newTestServer(t, b)

	rr := do(t, s, http.MethodGet, "/edit?user", nil, false)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `<option value="web"`) {
		t.Fatalf("edit page: %d\n%s", rr.Code, rr.Body.String())
	}

	b.Reset()
	rr = do(t, s, http.MethodPost, "/edit/switch", url.Values{"ns": {"web"}, "code": {"x = 1"}}, true)
	if !strings.Contains(rr.Body.String(), "category-editor") || !strings.Contains(rr.Body.String(), "def cmd_web(e): pass") {
		t.Fatalf("editor not patched: %s", rr.Body.String())
	}
	want := []string{
		"POST /api/enso/commands/write_category/user",
		"GET /api/enso/commands/read_category/web",
	}
	if got := b.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if text, _ := b.Script("user"); text != "x = 1" {
		t.Fatalf("user script = %q", text)
	}

	rr = do(t, s, http.MethodGet, "/edit/download", nil, false)
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="web.py"` {
		t.Fatalf("Content-Disposition = %q", cd)
	}
	if rr.Body.String() != "def cmd_web(e): pass" {
		t.Fatalf("download body = %q", rr.Body.String())
	}
}

func TestServer_DeleteUserNamespaceIsRefused(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)
	_ = do(t, s, http.MethodGet, "/edit", nil, false)
	b.Reset()

	rr := do(t, s, http.MethodPost, "/edit/delete", url.Values{"confirm": {"yes"}}, true)
	if !strings.Contains(rr.Body.String(), "cannot be deleted") {
		t.Fatalf("expected refusal message: %s", rr.Body.String())
	}
	if n := len(b.Requests()); n != 0 {
		t.Fatalf("expected no backend requests, got %v", b.Paths())
	}
}

func TestServer_EditCreateAndStub(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)
	_ = do(t, s, http.MethodGet, "/edit", nil, false)

	rr := do(t, s, http.MethodPost, "/edit/create", url.Values{"name": {"tools"}, "code": {""}}, true)
	if !strings.Contains(rr.Body.String(), `<option value="tools" selected>`) {
		t.Fatalf("new namespace not selected: %s", rr.Body.String())
	}

	rr = do(t, s, http.MethodPost, "/edit/stub?kind=simple", url.Values{"code": {""}, "offset": {"0"}}, true)
	if !strings.Contains(rr.Body.String(), "def cmd_my_command(ensoapi)") {
		t.Fatalf("stub not inserted: %s", rr.Body.String())
	}
}

func TestServer_EditUpload(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)
	_ = do(t, s, http.MethodGet, "/edit", nil, false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "mine.py")
	_, _ = fw.Write([]byte("def cmd_mine(e): pass"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/edit/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Datastar-Request", "true")
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	if !strings.Contains(rr.Body.String(), "def cmd_mine(e): pass") {
		t.Fatalf("upload not shown: %s", rr.Body.String())
	}
}

func TestServer_TasksPlaceholderFlow(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)

	rr := do(t, s, http.MethodGet, "/tasks", nil, false)
	if !strings.Contains(rr.Body.String(), "Tasks is a block of code") {
		t.Fatalf("expected tasks placeholder")
	}

	rr = do(t, s, http.MethodPost, "/tasks/focus", nil, true)
	if strings.Contains(rr.Body.String(), "Tasks is a block of code") {
		t.Fatalf("focus should clear the placeholder: %s", rr.Body.String())
	}

	b.Reset()
	_ = do(t, s, http.MethodPost, "/tasks/blur", url.Values{"code": {"start()"}}, true)
	reqs := b.Requests()
	if len(reqs) != 1 || reqs[0].Path != "/api/enso/write_tasks" || reqs[0].Form.Get("code") != "start()" {
		t.Fatalf("unexpected requests: %+v", reqs)
	}

	b.Reset()
	_ = do(t, s, http.MethodPost, "/tasks/blur", url.Values{"code": {""}}, true)
	rr = do(t, s, http.MethodPost, "/tasks/blur", url.Values{"code": {s.tasks.Placeholder()}}, true)
	if !strings.Contains(rr.Body.String(), "Tasks is a block of code") {
		t.Fatalf("empty buffer should show the placeholder again")
	}
	if got := b.Paths(); len(got) != 1 {
		t.Fatalf("placeholder must not be saved, got %v", got)
	}
}

func TestServer_OptionsAndAbout(t *testing.T) {
	b := apitest.New(t)
	b.With(func(b *apitest.Backend) {
		b.Retreat = true
		b.Changes = "<ul><li>New tray menu</li></ul>"
	})
	s := newTestServer(t, b)

	rr := do(t, s, http.MethodGet, "/options", nil, false)
	body := rr.Body.String()
	for _, want := range []string{`<option value="green" selected>`, `<option value="red" >`, "retreat-settings", "0.9.1", "3.11.4"} {
		if !strings.Contains(body, want) {
			t.Fatalf("options page missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, `value="default"`) {
		t.Fatalf("default theme must be hidden")
	}

	b.Reset()
	_ = do(t, s, http.MethodPost, "/options/theme", url.Values{"theme": {"red"}}, true)
	_ = do(t, s, http.MethodPost, "/options/retreat", url.Values{}, true)
	_ = do(t, s, http.MethodPost, "/options/retreat-icon", url.Values{"show_icon": {"true"}}, true)
	_ = do(t, s, http.MethodPost, "/options/open-config-dir", nil, true)
	want := []string{
		"GET /api/enso/set/config/COLOR_THEME/red",
		"GET /api/enso/set/config/RETREAT_DISABLE/True",
		"GET /api/enso/set/config/RETREAT_SHOW_ICON/True",
		"GET /api/enso/open/config_dir",
	}
	if got := b.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}

	rr = do(t, s, http.MethodGet, "/about", nil, false)
	if !strings.Contains(rr.Body.String(), "Version: 0.9.1") || !strings.Contains(rr.Body.String(), "New tray menu") {
		t.Fatalf("about page:\n%s", rr.Body.String())
	}
}

func TestServer_EnsorcBlurSaves(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)
	_ = do(t, s, http.MethodGet, "/options", nil, false)

	_ = do(t, s, http.MethodPost, "/options/ensorc/focus", nil, true)
	b.Reset()
	_ = do(t, s, http.MethodPost, "/options/ensorc/blur", url.Values{"ensorc": {"KEY = 1"}}, true)

	var got string
	b.With(func(b *apitest.Backend) { got = b.Ensorc })
	if got != "KEY = 1" {
		t.Fatalf("ensorc = %q (requests %v)", got, b.Paths())
	}
}

func TestServer_PlainFormBlurSavesWithoutFocus(t *testing.T) {
	b := apitest.New(t)
	s := newTestServer(t, b)
	_ = do(t, s, http.MethodGet, "/tasks", nil, false)
	_ = do(t, s, http.MethodGet, "/options", nil, false)
	b.Reset()

	rr := do(t, s, http.MethodPost, "/tasks/blur", url.Values{"code": {"schedule()\r\nrun()"}}, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("tasks blur = %d", rr.Code)
	}
	rr = do(t, s, http.MethodPost, "/options/ensorc/blur", url.Values{"ensorc": {"X = 1"}}, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("ensorc blur = %d", rr.Code)
	}

	var tasks, ensorc string
	b.With(func(b *apitest.Backend) { tasks, ensorc = b.Tasks, b.Ensorc })
	if tasks != "schedule()\nrun()" {
		t.Fatalf("tasks = %q (requests %v)", tasks, b.Paths())
	}
	if ensorc != "X = 1" {
		t.Fatalf("ensorc = %q (requests %v)", ensorc, b.Paths())
	}

	b.Reset()
	_ = do(t, s, http.MethodPost, "/options/ensorc/blur", url.Values{"ensorc": {s.options.Ensorc().Placeholder()}}, false)
	b.With(func(b *apitest.Backend) { ensorc = b.Ensorc })
	if ensorc != "X = 1" {
		t.Fatalf("posting the placeholder must not overwrite ensorc, got %q", ensorc)
	}
}

func TestServer_CommandsPageShowsLoadError(t *testing.T) {
	b := apitest.New(t)
	b.With(func(b *apitest.Backend) { b.Fail["/api/enso/get/commands"] = http.StatusInternalServerError })
	s := newTestServer(t, b)

	rr := do(t, s, http.MethodGet, "/commands", nil, false)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Could not load commands") {
		t.Fatalf("commands page = %d:\n%s", rr.Code, rr.Body.String())
	}
}

func TestNamespaceFromQuery_EditorURLRoundTrip(t *testing.T) {
	for _, ns := range []string{"a=b", "x&y", "ns=media", "my tools", "c+d"} {
		r := httptest.NewRequest(http.MethodGet, cmdtable.EditorURL(ns), nil)
		if got := namespaceFromQuery(r); got != ns {
			t.Fatalf("%s: got %q, want %q", cmdtable.EditorURL(ns), got, ns)
		}
	}
}

func TestNamespaceFromQuery(t *testing.T) {
	cases := map[string]string{
		"/edit":             "",
		"/edit?web":         "web",
		"/edit?my%20things": "my things",
		"/edit?ns=media":    "media",
	}
	for target, want := range cases {
		r := httptest.NewRequest(http.MethodGet, target, nil).WithContext(context.Background())
		if got := namespaceFromQuery(r); got != want {
			t.Fatalf("%s: got %q, want %q", target, got, want)
		}
	}
}
