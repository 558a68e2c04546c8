package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/models"
)

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
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

	page, err := s.lessons.ListByStudy(r.Context(), id, churchID, mux.Vars(r)["studyId"], opts)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writePage(w, page)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	lesson, err := s.lessons.Get(r.Context(), id, churchID, mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, lesson)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var patch models.LessonPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	lesson, err := s.lessons.Update(r.Context(), id, churchID, mux.Vars(r)["id"], patch)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, lesson)
}

func (s *Server) handleCompleteLesson(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	lesson, err := s.lessons.Complete(r.Context(), id, churchID, mux.Vars(r)["id"])
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, lesson)
}

type lessonNoteRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleAddLessonNote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.identity(w, r)
	if !ok {
		return
	}
	churchID, ok := s.tenant(w, r, id)
	if !ok {
		return
	}

	var in lessonNoteRequest
	if !s.decodeJSON(w, r, &in) {
		return
	}

	lesson, err := s.lessons.AddNote(r.Context(), id, churchID, mux.Vars(r)["id"], in.Text)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	httputil.WriteSuccess(w, lesson)
}
