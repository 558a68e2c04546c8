package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/users"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	// Platform admins may omit church_id here to list across all tenants.
	churchID := id.ChurchID
	if id.IsPlatformAdmin() {
		churchID = r.URL.Query().Get("church_id")
	}

	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}

	page, err := s.users.List(r.Context(), id, churchID, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in users.CreateInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	user, err := s.users.Create(r.Context(), id, churchID, in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteCreated(w, user)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	user, err := s.users.Get(r.Context(), id, churchID, mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var patch models.UserPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	user, err := s.users.Update(r.Context(), id, churchID, mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, user)
}
