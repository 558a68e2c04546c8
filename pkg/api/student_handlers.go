package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/students"
)

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
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

	page, err := s.students.List(r.Context(), id, churchID, opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in students.CreateInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	student, err := s.students.Create(r.Context(), id, churchID, in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteCreated(w, student)
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	student, err := s.students.Get(r.Context(), id, churchID, mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, student)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var patch models.StudentPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	student, err := s.students.Update(r.Context(), id, churchID, mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, student)
}

func (s *Server) handleUpdateNewBirth(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in students.MilestoneUpdate
	if !s.decodeJSON(w, r, &in) {
		return
	}

	student, err := s.students.UpdateNewBirth(r.Context(), id, churchID, mux.Vars(r)["id"], in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, student)
}

func (s *Server) handleUpdateFirstStep(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in students.StepUpdate
	if !s.decodeJSON(w, r, &in) {
		return
	}

	vars := mux.Vars(r)
	student, err := s.students.UpdateFirstStep(r.Context(), id, churchID, vars["id"], vars["step"], in)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, student)
}

func (s *Server) handleNewBirthStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	stats, err := s.students.StatsNewBirth(r.Context(), id, churchID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, stats)
}

func (s *Server) handleFirstStepsStats(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	stats, err := s.students.StatsFirstSteps(r.Context(), id, churchID)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, stats)
}
