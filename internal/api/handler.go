package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/orchestree/orchestree/pkg/errors"
	"github.com/orchestree/orchestree/pkg/observability"
)

// handlerFunc is like http.HandlerFunc but returns an error, which is
// written to the client as JSON.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (a *API) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			a.writeError(w, r, err)
		}
	}
}

// writeError logs err and writes it as JSON. 4xx errors are logged as
// warnings and 5xx as errors. Nothing is written if the handler already
// started the response.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status >= 500 && code == errors.ErrCodeInternal {
		msg = http.StatusText(status)
	}

	logger := a.Logger.With("request_id", middleware.GetReqID(r.Context()))
	if status >= 500 {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		logger.Warn("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	if ww, ok := w.(middleware.WrapResponseWriter); ok && ww.Status() != 0 {
		return
	}
	writeJSON(a.Logger, w, status, errorResponse{Code: code, Message: msg})
}

func writeJSON(logger *log.Logger, w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("json marshal", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
