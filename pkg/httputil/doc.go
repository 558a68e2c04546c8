// Package httputil provides HTTP handler utilities for the response
// envelope, error rendering, and request parsing.
//
// Every endpoint, success or failure, responds with the same envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": {"code": "...", "message": "...", "details": {...}}}
//
// so API clients need exactly one parsing path.
package httputil
