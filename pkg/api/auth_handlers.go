package api

import (
	"net/http"

	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/users"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	session, err := s.users.Register(r.Context(), in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteCreated(w, session)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !s.decodeJSON(w, r, &in) {
		return
	}

	session, err := s.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, session)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	user, err := s.users.Me(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, user)
}

func (s *Server) handleMyChurches(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	list, err := s.users.MyChurches(r.Context(), id)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, list)
}

type switchChurchRequest struct {
	ChurchID string `json:"churchId"`
}

func (s *Server) handleSwitchChurch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}

	var in switchChurchRequest
	if !s.decodeJSON(w, r, &in) {
		return
	}

	session, err := s.users.SwitchChurch(r.Context(), id, in.ChurchID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, session)
}
