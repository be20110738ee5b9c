package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"enso-settings/internal/cmdtable"
	"enso-settings/internal/editor"
)

type categoryVM struct {
	editor.CategoryView
	Stubs   []string
	Message string
}

type editVM struct {
	baseVM
	Editor categoryVM
}

func (s *Server) categoryVM(msg string) categoryVM {
	return categoryVM{CategoryView: s.category.View(), Stubs: editor.StubKinds(), Message: msg}
}

// namespaceFromQuery reads "/edit?web" style links; "/edit?ns=web" works too.
func namespaceFromQuery(r *http.Request) string {
	if ns := r.URL.Query().Get("ns"); ns != "" {
		return ns
	}
	raw := r.URL.RawQuery
	if raw == "" || strings.Contains(raw, "=") {
		return ""
	}
	ns, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return ns
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	vm := editVM{baseVM: s.baseVM("edit", "Edit commands")}
	if err := s.category.Open(r.Context(), namespaceFromQuery(r)); err != nil {
		vm.Error = "Could not load scripts: " + err.Error()
	}
	vm.Editor = s.categoryVM("")
	s.writeHTMLTemplate(w, "edit.html", vm)
}

func (s *Server) editorURL() string {
	return cmdtable.EditorURL(s.category.Current())
}

// takeCode applies the textarea content posted alongside an action.
func (s *Server) takeCode(r *http.Request) {
	if _, ok := r.Form["code"]; ok {
		s.category.Edit(r.Form.Get("code"))
	}
}

func (s *Server) handleEditChange(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.takeCode(r)
	ack(w, r, s.editorURL())
}

func (s *Server) handleEditBlur(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.takeCode(r)
	if err := s.category.Blur(r.Context()); err != nil {
		s.status(w, r, s.editorURL(), "Save failed: "+err.Error())
		return
	}
	ack(w, r, s.editorURL())
}

func (s *Server) handleEditSwitch(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.takeCode(r)
	msg := ""
	if err := s.category.Switch(r.Context(), r.Form.Get("ns")); err != nil {
		msg = "Could not load script: " + err.Error()
	}
	s.patch(w, r, s.editorURL(), "category_editor", s.categoryVM(msg))
}

func (s *Server) handleEditCreate(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.takeCode(r)
	msg := ""
	if err := s.category.Create(r.Context(), r.Form.Get("name")); err != nil {
		msg = err.Error()
	}
	s.patch(w, r, s.editorURL(), "category_editor", s.categoryVM(msg))
}

// handleEditDelete expects the page to have asked for confirmation and to
// post confirm=yes.
func (s *Server) handleEditDelete(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	confirmed := formBool(r, "confirm")
	msg := ""
	_, err := s.category.Delete(r.Context(), func(string) bool { return confirmed })
	switch {
	case errors.Is(err, editor.ErrReservedNamespace):
		msg = "The user namespace cannot be deleted."
	case err != nil:
		msg = "Delete failed: " + err.Error()
	}
	s.patch(w, r, s.editorURL(), "category_editor", s.categoryVM(msg))
}

func (s *Server) handleEditUpload(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	f, err := readUpload(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()
	msg := ""
	if err := s.category.Upload(f); err != nil {
		msg = "Upload failed: " + err.Error()
	}
	s.patch(w, r, s.editorURL(), "category_editor", s.categoryVM(msg))
}

func (s *Server) handleEditStub(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.takeCode(r)
	offset := -1
	if v := strings.TrimSpace(r.Form.Get("offset")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}
	msg := ""
	// r.Form merges the query, where the Datastar client puts the kind.
	if err := s.category.InsertStub(r.Form.Get("kind"), offset); err != nil {
		msg = err.Error()
	}
	s.patch(w, r, s.editorURL(), "category_editor", s.categoryVM(msg))
}

func (s *Server) handleEditDownload(w http.ResponseWriter, r *http.Request) {
	name, text := s.category.Download()
	writeAttachment(w, name, text)
}
