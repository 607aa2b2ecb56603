package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	apierr "github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/store"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    apierr.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a coded error to an HTTP status.
func statusFor(e *apierr.Error) int {
	if apierr.IsStructural(e) {
		return http.StatusUnprocessableEntity
	}
	switch e.Code {
	case apierr.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apierr.ErrCodeNotFound:
		return http.StatusNotFound
	case apierr.ErrCodeAudioLifecycle:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// classify gives uncoded errors a code.
func classify(err error) *apierr.Error {
	var coded *apierr.Error
	switch {
	case errors.As(err, &coded):
		return coded
	case errors.Is(err, store.ErrNotFound):
		return apierr.Wrap(apierr.ErrCodeNotFound, err, "graph not found")
	case chunk.IsValidationError(err):
		return apierr.FromStructural(err)
	default:
		return apierr.Wrap(apierr.ErrCodeInternal, err, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	status := statusFor(e)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "code", e.Code, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", e.Code, "err", err)
	}
	msg := e.Message
	if e.Cause != nil && status < http.StatusInternalServerError {
		msg = e.Message + ": " + e.Cause.Error()
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: e.Code, Message: msg}})
}

// pathID reads and checks the {id} URL parameter.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := apierr.ValidateResourceID(id); err != nil {
		return "", err
	}
	return id, nil
}

// decodeJSON reads a JSON request body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apierr.Wrap(apierr.ErrCodeInvalidInput, err, "malformed request body")
	}
	return nil
}
