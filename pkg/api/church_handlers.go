package api

import (
	"net/http"

	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/models"
)

func (s *Server) handleGetChurch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	church, err := s.churches.Get(r.Context(), id, churchID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, church)
}

func (s *Server) handleUpdateChurch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var patch models.ChurchPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	church, err := s.churches.Update(r.Context(), id, churchID, patch)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, church)
}

func (s *Server) handleChurchStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	stats, err := s.churches.Stats(r.Context(), id, churchID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, stats)
}
