package server

import (
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/instrumap/pkg/buildinfo"
	"github.com/matzehuels/instrumap/pkg/diagram/sink"
	"github.com/matzehuels/instrumap/pkg/errors"
	"github.com/matzehuels/instrumap/pkg/pipeline"
	"github.com/matzehuels/instrumap/pkg/store"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	GoVersion string `json:"go_version"`
}

// CreateResponse is the body of POST /diagrams.
type CreateResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Boxes    int      `json:"boxes"`
	Arrows   int      `json:"arrows"`
	Warnings []string `json:"warnings,omitempty"`
	Cached   bool     `json:"cached"`
}

// HoverResponse is the body of GET /diagrams/{id}/hover.
type HoverResponse struct {
	Description string `json:"description"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   buildinfo.Version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		GoVersion: runtime.Version(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer r.Body.Close()
	if len(body) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "empty request body"))
		return
	}

	opts, err := s.buildOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, hit, err := s.runner.BuildWithCacheInfo(r.Context(), body, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	id, err := s.store.Put(r.Context(), &store.Record{Name: d.Name, Source: body, Diagram: d})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/diagrams/"+id)
	writeJSON(w, http.StatusCreated, CreateResponse{
		ID:       id,
		Name:     d.Name,
		Boxes:    len(d.Boxes),
		Arrows:   len(d.Arrows),
		Warnings: d.Warnings,
		Cached:   hit,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.RenderJSON(rec.Diagram)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(pipeline.FormatJSON))
	w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.renderOptions(r.URL.Query(), format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), rec.Diagram, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.Write(artifacts[format])
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	x, errX := strconv.ParseFloat(q.Get("x"), 64)
	y, errY := strconv.ParseFloat(q.Get("y"), 64)
	if errX != nil || errY != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "x and y must be numbers"))
		return
	}
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	desc, ok := rec.Diagram.Hover(x, y)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no box near (%g, %g)", x, y))
		return
	}
	writeJSON(w, http.StatusOK, HoverResponse{Description: desc})
}

func (s *Server) record(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) buildOptions(q url.Values) (pipeline.Options, error) {
	style := s.style
	opts := pipeline.Options{Style: &style, Logger: s.logger}
	var err error
	if opts.Analysis, err = boolParam(q, "analysis"); err != nil {
		return opts, err
	}
	if opts.Refresh, err = boolParam(q, "refresh"); err != nil {
		return opts, err
	}
	opts.Measure = q.Get("measure")
	return opts, nil
}

func (s *Server) renderOptions(q url.Values, format string) (pipeline.Options, error) {
	style := s.style
	opts := pipeline.Options{Style: &style, Logger: s.logger, Formats: []string{format}}
	var err error
	if opts.Popups, err = boolParam(q, "popups"); err != nil {
		return opts, err
	}
	if opts.Refresh, err = boolParam(q, "refresh"); err != nil {
		return opts, err
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil || opts.Scale <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number")
		}
	}
	return opts, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean", name)
	}
	return b, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
