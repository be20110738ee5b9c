package web

import (
	"net/http"

	"enso-settings/internal/about"
)

type aboutVM struct {
	baseVM
	About about.Page
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	vm := aboutVM{baseVM: s.baseVM("about", "About")}
	p, err := about.Load(r.Context(), s.backend(), s.log())
	if err != nil {
		vm.Error = "Could not reach Enso: " + err.Error()
	}
	vm.About = p
	s.writeHTMLTemplate(w, "about.html", vm)
}
