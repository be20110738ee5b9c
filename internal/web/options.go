package web

import (
	"net/http"
	"strings"

	"enso-settings/internal/options"
)

type optionsVM struct {
	baseVM
	View   options.View
	Ensorc tasksEditorVM
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	vm := optionsVM{baseVM: s.baseVM("options", "Options")}
	v, err := s.options.Load(r.Context())
	if err != nil {
		log := s.log()
		log.Debug().Err(err).Msg("options partially loaded")
	}
	vm.View = v
	vm.Ensorc = documentVM(s.options.Ensorc(), "")
	s.writeHTMLTemplate(w, "options.html", vm)
}

func (s *Server) handleOptionsTheme(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	name := strings.TrimSpace(r.Form.Get("theme"))
	if name == "" {
		http.Error(w, "missing theme", http.StatusBadRequest)
		return
	}
	if err := s.options.SetTheme(r.Context(), name); err != nil {
		s.status(w, r, "/options", "Could not set theme: "+err.Error())
		return
	}
	s.status(w, r, "/options", "Theme set to "+name)
}

func (s *Server) handleOptionsRetreat(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	usable, err := s.options.SetRetreatEnabled(r.Context(), formBool(r, "enabled"))
	if err != nil {
		s.status(w, r, "/options", "Could not change Retreat: "+err.Error())
		return
	}
	s.patch(w, r, "/options", "retreat_icon", options.Retreat{Visible: true, Enabled: usable, ShowIcon: formBool(r, "show_icon")})
}

func (s *Server) handleOptionsRetreatIcon(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	if err := s.options.SetRetreatShowIcon(r.Context(), formBool(r, "show_icon")); err != nil {
		s.status(w, r, "/options", "Could not change Retreat: "+err.Error())
		return
	}
	ack(w, r, "/options")
}

func (s *Server) handleOptionsOpenConfigDir(w http.ResponseWriter, r *http.Request) {
	_ = s.options.OpenConfigDir(r.Context())
	ack(w, r, "/options")
}

func (s *Server) handleEnsorcFocus(w http.ResponseWriter, r *http.Request) {
	doc := s.options.Ensorc()
	wasPlaceholder := doc.IsPlaceholder()
	doc.Focus()
	if !wasPlaceholder {
		ack(w, r, "/options")
		return
	}
	s.patch(w, r, "/options", "ensorc_editor", documentVM(doc, ""))
}

func (s *Server) handleEnsorcBlur(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	doc := s.options.Ensorc()
	if text, ok := postedText(r, "ensorc", doc); ok {
		doc.Edit(text)
	}
	msg := ""
	if err := doc.Blur(r.Context()); err != nil {
		msg = "Save failed: " + err.Error()
	}
	s.patch(w, r, "/options", "ensorc_editor", documentVM(doc, msg))
}
