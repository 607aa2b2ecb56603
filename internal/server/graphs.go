package server

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/soundchunk/pkg/chunk"
	apierr "github.com/matzehuels/soundchunk/pkg/errors"
	graphio "github.com/matzehuels/soundchunk/pkg/io"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/render/nodelink"
	"github.com/matzehuels/soundchunk/pkg/store"
)

// requestFormat picks the graph encoding from ?format= or Content-Type.
func requestFormat(r *http.Request) (graphio.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		format, err := graphio.ParseFormat(f)
		if err != nil {
			return "", apierr.Wrap(apierr.ErrCodeInvalidInput, err, "format")
		}
		return format, nil
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return graphio.FormatYAML, nil
	}
	return graphio.FormatJSON, nil
}

// readGraph decodes the request body. An empty body yields the seed graph.
func readGraph(w http.ResponseWriter, r *http.Request) (chunk.Elements, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return chunk.Elements{}, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "read body")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return chunk.Seed(), nil
	}

	format, err := requestFormat(r)
	if err != nil {
		return chunk.Elements{}, err
	}
	g, err := graphio.Read(bytes.NewReader(body), format)
	if err != nil {
		if chunk.IsValidationError(err) {
			return chunk.Elements{}, err
		}
		return chunk.Elements{}, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "malformed graph")
	}
	for _, n := range g.Nodes {
		if err := apierr.ValidateNodeID(n.ID); err != nil {
			return chunk.Elements{}, err
		}
	}
	return g, nil
}

func (s *Server) createGraph(w http.ResponseWriter, r *http.Request) {
	g, err := readGraph(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.store.Put(r.Context(), store.Record{
		ID:    uuid.NewString(),
		Name:  r.URL.Query().Get("name"),
		Graph: g,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("graph created", "graph", rec.ID, "nodes", len(g.Nodes), "edges", len(g.Edges))
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) listGraphs(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// record loads the graph named by the {id} path parameter.
func (s *Server) record(r *http.Request) (store.Record, error) {
	id, err := pathID(r)
	if err != nil {
		return store.Record{}, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "" {
		writeJSON(w, http.StatusOK, rec)
		return
	}

	format, err := requestFormat(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := graphio.Marshal(rec.Graph, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ct := "application/json"
	if format == graphio.FormatYAML {
		ct = "application/yaml"
	}
	w.Header().Set("Content-Type", ct)
	_, _ = w.Write(data)
}

func (s *Server) deleteGraph(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type validationResponse struct {
	Valid    bool        `json:"valid"`
	Code     apierr.Code `json:"code,omitempty"`
	Errors   []string    `json:"errors"`
	Warnings []string    `json:"warnings"`
}

func newValidationResponse(res chunk.Result) validationResponse {
	out := validationResponse{
		Valid:    res.Valid(),
		Errors:   make([]string, 0, len(res.Errors)),
		Warnings: make([]string, 0, len(res.Warnings)),
	}
	for _, e := range res.Errors {
		out.Errors = append(out.Errors, e.Error())
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	if !out.Valid {
		out.Code = apierr.FromStructural(res.Err()).Code
	}
	return out
}

func (s *Server) validateGraph(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	strict := s.strict
	if v := r.URL.Query().Get("strict"); v != "" {
		strict, err = strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "strict"))
			return
		}
	}
	writeJSON(w, http.StatusOK, newValidationResponse(chunk.Validate(rec.Graph, chunk.StrictIf(strict))))
}

// dotOptions reads ?detailed= and ?direction=.
func dotOptions(r *http.Request) (nodelink.Options, error) {
	q := r.URL.Query()
	dir, err := layout.ParseDirection(q.Get("direction"))
	if err != nil {
		return nodelink.Options{}, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "direction")
	}
	detailed, _ := strconv.ParseBool(q.Get("detailed"))
	return nodelink.Options{Detailed: detailed, Direction: dir}, nil
}

func (s *Server) graphDOT(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := dotOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = io.WriteString(w, nodelink.ToDOT(rec.Graph, opts))
}

func (s *Server) graphSVG(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := dotOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := nodelink.RenderSVG(r.Context(), nodelink.ToDOT(rec.Graph, opts))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
