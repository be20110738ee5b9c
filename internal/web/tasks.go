package web

import (
	"net/http"
	"strings"

	"enso-settings/internal/editor"
)

type tasksEditorVM struct {
	Text          string
	IsPlaceholder bool
	Message       string
}

type tasksVM struct {
	baseVM
	Editor tasksEditorVM
}

func documentVM(d *editor.Document, msg string) tasksEditorVM {
	return tasksEditorVM{Text: d.Text(), IsPlaceholder: d.IsPlaceholder(), Message: msg}
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	vm := tasksVM{baseVM: s.baseVM("tasks", "Tasks")}
	_ = s.tasks.Load(r.Context())
	vm.Editor = documentVM(s.tasks, "")
	s.writeHTMLTemplate(w, "tasks.html", vm)
}

func (s *Server) handleTasksChange(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	s.tasks.Edit(r.Form.Get("code"))
	ack(w, r, "/tasks")
}

func (s *Server) handleTasksFocus(w http.ResponseWriter, r *http.Request) {
	wasPlaceholder := s.tasks.IsPlaceholder()
	s.tasks.Focus()
	if !wasPlaceholder {
		ack(w, r, "/tasks")
		return
	}
	s.patch(w, r, "/tasks", "tasks_editor", documentVM(s.tasks, ""))
}

func (s *Server) handleTasksBlur(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	if code, ok := postedText(r, "code", s.tasks); ok {
		s.tasks.Edit(code)
	}
	msg := ""
	if err := s.tasks.Blur(r.Context()); err != nil {
		msg = "Save failed: " + err.Error()
	}
	s.patch(w, r, "/tasks", "tasks_editor", documentVM(s.tasks, msg))
}

func (s *Server) handleTasksUpload(w http.ResponseWriter, r *http.Request) {
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
	if err := s.tasks.Upload(f); err != nil {
		msg = "Upload failed: " + err.Error()
	}
	s.patch(w, r, "/tasks", "tasks_editor", documentVM(s.tasks, msg))
}

func (s *Server) handleTasksDownload(w http.ResponseWriter, r *http.Request) {
	name, text := s.tasks.Download()
	writeAttachment(w, name, text)
}

// postedText returns the submitted buffer for field unless it is missing or
// still the placeholder. Browsers post textareas with CRLF line ends.
func postedText(r *http.Request, field string, doc *editor.Document) (string, bool) {
	vals, ok := r.Form[field]
	if !ok || len(vals) == 0 {
		return "", false
	}
	text := strings.ReplaceAll(vals[0], "\r\n", "\n")
	if text == doc.Placeholder() {
		return "", false
	}
	return text, true
}
