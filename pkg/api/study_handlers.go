package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/studies"
)

func (s *Server) handleListStudies(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	opts, ok := s.listOptions(w, r)
	if !ok {
		return
	}

	page, err := s.studies.List(r.Context(), id, churchID, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleCreateStudy(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in studies.CreateInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	study, err := s.studies.Create(r.Context(), id, churchID, in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteCreated(w, study)
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	study, err := s.studies.Get(r.Context(), id, churchID, mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, study)
}

func (s *Server) handleUpdateStudy(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var patch models.StudyPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	study, err := s.studies.Update(r.Context(), id, churchID, mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, study)
}

type studyStatusRequest struct {
	Status models.StudyStatus `json:"status"`
}

func (s *Server) handleUpdateStudyStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in studyStatusRequest
	if !s.decodeJSON(w, r, &in) {
		return
	}

	study, err := s.studies.UpdateStatus(r.Context(), id, churchID, mux.Vars(r)["id"], in.Status)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, study)
}
