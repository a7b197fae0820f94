package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"parcelflow/fault"
)

// envelope is the response body shape shared by every endpoint.
type envelope map[string]any

func (s *Server) respond(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.WithError(err).Error("httpapi: encode response")
	}
}

// ok writes a success envelope with the given payload fields merged in.
func (s *Server) ok(w http.ResponseWriter, status int, fields envelope) {
	body := envelope{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	s.respond(w, status, body)
}

// fail maps a domain fault to a status code and writes a failure envelope.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := fault.KindOf(err)
	status := statusFor(kind)

	msg := err.Error()
	var fe *fault.Error
	if errors.As(err, &fe) {
		msg = fe.Message()
	}
	if kind == fault.Unexpected {
		s.log.WithError(err).WithField("path", r.URL.Path).Error("httpapi: internal error")
		msg = "internal server error"
	}
	s.respond(w, status, envelope{"success": false, "error": msg})
}

func statusFor(kind fault.Kind) int {
	switch kind {
	case fault.Validation, fault.Conflict:
		return http.StatusBadRequest
	case fault.Unauthorized:
		return http.StatusUnauthorized
	case fault.Forbidden:
		return http.StatusForbidden
	case fault.NotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. An empty body is not an error so that
// endpoints with optional bodies can apply defaults.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fault.Wrap(fault.Validation, err, "invalid request body")
	}
	return nil
}
