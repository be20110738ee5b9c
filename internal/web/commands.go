package web

import (
	"net/http"
	"strings"

	"enso-settings/internal/cmdtable"
)

type commandsVM struct {
	baseVM
	Table cmdtable.Table
}

func (s *Server) handleCommands(w http.ResponseWriter, r *http.Request) {
	vm := commandsVM{baseVM: s.baseVM("commands", "Commands")}
	cmds, err := s.backend().Commands(r.Context())
	if err != nil {
		log := s.log()
		log.Warn().Err(err).Msg("load commands")
		vm.Error = "Could not load commands: " + err.Error()
	}
	vm.Table = cmdtable.Build(cmds)
	s.writeHTMLTemplate(w, "commands.html", vm)
}

func (s *Server) handleCommandToggle(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	name := r.Form.Get("name")
	if strings.TrimSpace(name) == "" {
		http.Error(w, "missing command name", http.StatusBadRequest)
		return
	}
	enabled := formBool(r, "enabled")
	cmdtable.ToggleAndForget(r.Context(), s.log(), s.backend(), name, enabled)

	msg := name + " disabled"
	if enabled {
		msg = name + " enabled"
	}
	s.status(w, r, "/commands", msg)
}
