package api

import (
	"net/http"

	"github.com/shepherdhq/shepherd/pkg/apperr"
	"github.com/shepherdhq/shepherd/pkg/auth"
	"github.com/shepherdhq/shepherd/pkg/contextkeys"
	"github.com/shepherdhq/shepherd/pkg/httputil"
	"github.com/shepherdhq/shepherd/pkg/models"
	"github.com/shepherdhq/shepherd/pkg/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// identity pulls the authenticated identity set by the middleware.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := contextkeys.GetIdentity(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "authentication required")
		return auth.Identity{}, false
	}
	return id, true
}

// tenant resolves the tenant a request acts in. Platform admins carry the
// SYSTEM sentinel and must name a concrete tenant through the church_id
// query parameter; everyone else is pinned to their token's church.
func (s *Server) tenant(w http.ResponseWriter, r *http.Request, id auth.Identity) (string, bool) {
	if !id.IsPlatformAdmin() {
		return id.ChurchID, true
	}

	churchID := r.URL.Query().Get("church_id")
	if churchID == "" || churchID == models.SystemChurchID {
		httputil.WriteValidationError(w, "platform admins must supply a church_id query parameter")
		return "", false
	}
	return churchID, true
}

// decodeJSON decodes the request body, rejecting unknown fields.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	return httputil.ParseJSONOrError(w, r, dst)
}

// listOptions reads limit and cursor query parameters.
func (s *Server) listOptions(w http.ResponseWriter, r *http.Request) (storage.ListOptions, bool) {
	params, err := httputil.ParsePageParams(r, defaultPageSize, maxPageSize)
	if err != nil {
		httputil.WriteValidationError(w, err.Error())
		return storage.ListOptions{}, false
	}
	return storage.ListOptions{Limit: params.Limit, Cursor: params.Cursor}, true
}

// pageData is the envelope payload for list endpoints.
type pageData struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"nextCursor,omitempty"`
}

func writePage[T any](w http.ResponseWriter, page storage.Page[T]) {
	httputil.WriteSuccess(w, pageData{Items: page.Items, NextCursor: page.NextCursor})
}

// writeErr renders an error envelope, logging the cause of internal errors.
// Outside production the cause is also attached to the envelope details.
func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)
	if appErr.Code == apperr.CodeInternal {
		s.logger.WithError(appErr.Cause()).WithFields(map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": contextkeys.GetRequestID(r.Context()),
		}).Error("request failed")
		if s.exposeErrors && appErr.Cause() != nil {
			detailed := *appErr
			detailed.Details = map[string]string{"cause": appErr.Cause().Error()}
			httputil.WriteAppError(w, &detailed)
			return
		}
	}
	httputil.WriteAppError(w, appErr)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFound(w, "route not found")
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteAppError(w, apperr.New(apperr.CodeValidation, http.StatusMethodNotAllowed, "method not allowed"))
}
