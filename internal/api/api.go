// Package api serves the diagram pipeline over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/render?format=svg|png|pdf|dot   body: description
//	POST   /v1/diagrams?name=                  body: description
//	GET    /v1/diagrams/{id}
//	GET    /v1/diagrams/{id}/svg
//	DELETE /v1/diagrams/{id}
//
// Errors are JSON objects {"code": ..., "message": ...} with the status
// derived from the error code.
package api

import (
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/orchestree/orchestree/pkg/errors"
	"github.com/orchestree/orchestree/pkg/pipeline"
	"github.com/orchestree/orchestree/pkg/render"
	"github.com/orchestree/orchestree/pkg/store"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// API holds the dependencies of the HTTP handlers.
type API struct {
	Runner     *pipeline.Runner
	Store      store.Store
	Logger     *log.Logger
	DiagramTTL time.Duration
}

// Handler returns the routed handler with middleware applied.
func (a *API) Handler() http.Handler {
	if a.Logger == nil {
		a.Logger = log.New(io.Discard)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog(a.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.handle(a.health))
	r.Route("/v1", func(r chi.Router) {
		r.Post("/render", a.handle(a.render))
		r.Route("/diagrams", func(r chi.Router) {
			r.Post("/", a.handle(a.createDiagram))
			r.Get("/{id}", a.handle(a.getDiagram))
			r.Get("/{id}/svg", a.handle(a.getDiagramSVG))
			r.Delete("/{id}", a.handle(a.deleteDiagram))
		})
	})
	r.NotFound(a.handle(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New(errors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
	}))
	return http.MaxBytesHandler(r, MaxBodyBytes)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) error {
	writeJSON(a.Logger, w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (a *API) render(w http.ResponseWriter, r *http.Request) error {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		return err
	}

	body, err := readBody(r)
	if err != nil {
		return err
	}

	res, err := a.Runner.Execute(r.Context(), pipeline.Options{
		Description: body,
		Name:        r.URL.Query().Get("name"),
		Formats:     []string{format},
		Logger:      a.Logger,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("X-Cache", cacheHeader(res.CacheHit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
	return nil
}

// diagramResponse is the JSON form of a stored diagram.
type diagramResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

func newDiagramResponse(d *store.Diagram) diagramResponse {
	return diagramResponse{
		ID:        d.ID,
		Name:      d.Name,
		Size:      len(d.SVG),
		CreatedAt: d.CreatedAt,
		ExpiresAt: d.ExpiresAt,
		URL:       "/v1/diagrams/" + d.ID + "/svg",
	}
}

func (a *API) createDiagram(w http.ResponseWriter, r *http.Request) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}

	res, err := a.Runner.Execute(r.Context(), pipeline.Options{
		Description: body,
		Name:        r.URL.Query().Get("name"),
		Formats:     []string{render.FormatSVG},
		Logger:      a.Logger,
	})
	if err != nil {
		return err
	}

	d := store.New(res.Diagram.Name, body, res.Artifacts[render.FormatSVG], a.DiagramTTL)
	if err := a.Store.Save(r.Context(), d); err != nil {
		return err
	}
	a.Logger.Info("stored diagram", "id", d.ID, "name", d.Name, "expires", d.ExpiresAt.Format(time.RFC3339))

	w.Header().Set("Location", "/v1/diagrams/"+d.ID)
	writeJSON(a.Logger, w, http.StatusCreated, newDiagramResponse(d))
	return nil
}

func (a *API) lookup(r *http.Request) (*store.Diagram, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDiagramID(id); err != nil {
		return nil, err
	}
	return a.Store.Get(r.Context(), id)
}

func (a *API) getDiagram(w http.ResponseWriter, r *http.Request) error {
	d, err := a.lookup(r)
	if err != nil {
		return err
	}
	writeJSON(a.Logger, w, http.StatusOK, newDiagramResponse(d))
	return nil
}

func (a *API) getDiagramSVG(w http.ResponseWriter, r *http.Request) error {
	d, err := a.lookup(r)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", render.ContentType(render.FormatSVG))
	w.Header().Set("Content-Disposition", `attachment; filename="`+d.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.SVG)
	return nil
}

func (a *API) deleteDiagram(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateDiagramID(id); err != nil {
		return err
	}
	if err := a.Store.Delete(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body too large (max %d bytes)", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "request body is empty")
	}
	return body, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
