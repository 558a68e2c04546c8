package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/churches"
	"github.com/shepherdhq/shepherd/pkg/lessons"
	"github.com/shepherdhq/shepherd/pkg/middleware"
	"github.com/shepherdhq/shepherd/pkg/observability"
	"github.com/shepherdhq/shepherd/pkg/rbac"
	"github.com/shepherdhq/shepherd/pkg/students"
	"github.com/shepherdhq/shepherd/pkg/studies"
	"github.com/shepherdhq/shepherd/pkg/users"
)

// Server wires the domain services into the router.
type Server struct {
	router *mux.Router

	users    *users.Service
	churches *churches.Service
	students *students.Service
	studies  *studies.Service
	lessons  *lessons.Service

	tokens      *auth.TokenManager
	logger      *observability.Logger
	metrics     *observability.Metrics
	rateLimiter *middleware.RateLimiter

	exposeErrors bool
}

// Deps holds everything a Server needs. RateLimiter may be nil when rate
// limiting is disabled.
type Deps struct {
	Users    *users.Service
	Churches *churches.Service
	Students *students.Service
	Studies  *studies.Service
	Lessons  *lessons.Service

	Tokens      *auth.TokenManager
	Logger      *observability.Logger
	Metrics     *observability.Metrics
	RateLimiter *middleware.RateLimiter

	// ExposeErrorDetails attaches internal error causes to INTERNAL_ERROR
	// envelopes. Enabled outside production only.
	ExposeErrorDetails bool
}

// NewServer creates the API server and registers all routes.
func NewServer(deps Deps) *Server {
	s := &Server{
		router:       mux.NewRouter(),
		users:        deps.Users,
		churches:     deps.Churches,
		students:     deps.Students,
		studies:      deps.Studies,
		lessons:      deps.Lessons,
		tokens:       deps.Tokens,
		logger:       deps.Logger,
		metrics:      deps.Metrics,
		rateLimiter:  deps.RateLimiter,
		exposeErrors: deps.ExposeErrorDetails,
	}
	s.routes()
	return s
}

// Handler returns the root handler with the outer middleware chain applied.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.router
	handler = middleware.Recover(s.logger)(handler)
	if s.metrics != nil {
		handler = middleware.Instrument(s.metrics)(handler)
	}
	handler = middleware.LogRequests(s.logger)(handler)
	handler = middleware.RequestID(handler)
	return handler
}

func (s *Server) routes() {
	s.router.NotFoundHandler = http.HandlerFunc(s.notFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(s.notFound)
	api.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowed)

	// Public auth routes, rate limited when Redis is configured.
	public := api.PathPrefix("/auth").Subrouter()
	public.Use(s.rateLimiter.Handler)
	public.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	public.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)

	// Everything else requires a token.
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.Authenticate(s.tokens))

	protected.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)
	protected.HandleFunc("/auth/me/churches", s.handleMyChurches).Methods(http.MethodGet)
	protected.HandleFunc("/auth/switch-church", s.handleSwitchChurch).Methods(http.MethodPost)

	churchesR := protected.PathPrefix("/churches").Subrouter()
	churchesR.Handle("/me", s.guard(rbac.PermChurchRead, s.handleGetChurch)).Methods(http.MethodGet)
	churchesR.Handle("/me", s.guard(rbac.PermChurchManageSettings, s.handleUpdateChurch)).Methods(http.MethodPatch)
	churchesR.Handle("/me/stats", s.guard(rbac.PermChurchViewStats, s.handleChurchStats)).Methods(http.MethodGet)

	usersR := protected.PathPrefix("/users").Subrouter()
	usersR.Handle("", s.guard(rbac.PermUserRead, s.handleListUsers)).Methods(http.MethodGet)
	usersR.Handle("", s.guard(rbac.PermUserCreate, s.handleCreateUser)).Methods(http.MethodPost)
	usersR.HandleFunc("/{id}", s.handleGetUser).Methods(http.MethodGet)
	usersR.HandleFunc("/{id}", s.handleUpdateUser).Methods(http.MethodPatch)

	studentsR := protected.PathPrefix("/students").Subrouter()
	studentsR.Handle("", s.guard(rbac.PermStudentRead, s.handleListStudents)).Methods(http.MethodGet)
	studentsR.Handle("", s.guard(rbac.PermStudentCreate, s.handleCreateStudent)).Methods(http.MethodPost)
	studentsR.Handle("/stats/new-birth", s.guard(rbac.PermStudentViewStats, s.handleNewBirthStats)).Methods(http.MethodGet)
	studentsR.Handle("/stats/first-steps", s.guard(rbac.PermStudentViewStats, s.handleFirstStepsStats)).Methods(http.MethodGet)
	studentsR.HandleFunc("/{id}", s.handleGetStudent).Methods(http.MethodGet)
	studentsR.Handle("/{id}", s.guard(rbac.PermStudentUpdate, s.handleUpdateStudent)).Methods(http.MethodPatch)
	studentsR.Handle("/{id}/new-birth", s.guard(rbac.PermStudentUpdateMilestones, s.handleUpdateNewBirth)).Methods(http.MethodPost)
	studentsR.Handle("/{id}/first-steps/{step}", s.guard(rbac.PermStudentUpdateFirstSteps, s.handleUpdateFirstStep)).Methods(http.MethodPost)

	studiesR := protected.PathPrefix("/studies").Subrouter()
	studiesR.Handle("", s.guard(rbac.PermStudyRead, s.handleListStudies)).Methods(http.MethodGet)
	studiesR.Handle("", s.guard(rbac.PermStudyCreate, s.handleCreateStudy)).Methods(http.MethodPost)
	studiesR.Handle("/{id}", s.guard(rbac.PermStudyRead, s.handleGetStudy)).Methods(http.MethodGet)
	studiesR.Handle("/{id}", s.guard(rbac.PermStudyUpdate, s.handleUpdateStudy)).Methods(http.MethodPatch)
	studiesR.Handle("/{id}/status", s.guard(rbac.PermStudyUpdateStatus, s.handleUpdateStudyStatus)).Methods(http.MethodPost)

	lessonsR := protected.PathPrefix("/lessons").Subrouter()
	lessonsR.Handle("/study/{studyId}", s.guard(rbac.PermLessonRead, s.handleListLessons)).Methods(http.MethodGet)
	lessonsR.Handle("/{id}", s.guard(rbac.PermLessonRead, s.handleGetLesson)).Methods(http.MethodGet)
	lessonsR.Handle("/{id}", s.guard(rbac.PermLessonUpdate, s.handleUpdateLesson)).Methods(http.MethodPatch)
	lessonsR.Handle("/{id}/complete", s.guard(rbac.PermLessonComplete, s.handleCompleteLesson)).Methods(http.MethodPost)
	lessonsR.Handle("/{id}/notes", s.guard(rbac.PermLessonAddNotes, s.handleAddLessonNote)).Methods(http.MethodPost)
}

// guard wraps a handler with a per-route permission check.
func (s *Server) guard(perm rbac.Permission, h http.HandlerFunc) http.Handler {
	return middleware.RequirePermission(perm)(h)
}
