package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphscape/pkg/errors"
	"github.com/matzehuels/graphscape/pkg/graph"
	"github.com/matzehuels/graphscape/pkg/pipeline"
	"github.com/matzehuels/graphscape/pkg/render/nodelink"
	"github.com/matzehuels/graphscape/pkg/session"
)

// layoutRequest is the body of layout and session run requests.
type layoutRequest struct {
	Graph   graph.Document    `json:"graph"`
	Options *pipeline.Options `json:"options,omitempty"`
}

// expandResponse is the body of an expand response.
type expandResponse struct {
	Expanded []string         `json:"expanded"`
	Result   *pipeline.Result `json:"result"`
}

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func (s *Server) readLayout(w http.ResponseWriter, r *http.Request) (graph.Document, pipeline.Options, error) {
	var req layoutRequest
	if err := decode(w, r, &req); err != nil {
		return graph.Document{}, pipeline.Options{}, err
	}
	opts := s.defaults()
	if req.Options != nil {
		opts = *req.Options
	}
	opts.Logger = s.logger
	return req.Graph, opts, nil
}

// GET /healthz
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Len(),
	})
}

// POST /v1/layout
func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	doc, opts, err := s.readLayout(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, res)
		return
	}
	data, _, err := s.runner.Render(r.Context(), res, pipeline.RenderOptions{Format: format})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

var contentTypes = map[string]string{
	nodelink.FormatSVG: "image/svg+xml",
	nodelink.FormatPNG: "image/png",
	nodelink.FormatPDF: "application/pdf",
	nodelink.FormatDOT: "text/vnd.graphviz",
}

// POST /v1/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Create()
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

// DELETE /v1/sessions/{id}
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /v1/sessions/{id}/run
func (s *Server) runSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, opts, err := s.readLayout(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := sess.Run(r.Context(), doc, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PUT /v1/sessions/{id}/drags/{node}
func (s *Server) setDrag(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	node := chi.URLParam(r, "node")
	if err := errors.ValidateNodeID(node); err != nil {
		writeError(w, err)
		return
	}
	var pos graph.Position
	if err := decode(w, r, &pos); err != nil {
		writeError(w, err)
		return
	}
	sess.Engine().Drags().Set(node, pos.Finite())
	s.rerun(w, r, sess)
}

// DELETE /v1/sessions/{id}/drags
func (s *Server) clearDrags(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.Engine().Drags().Clear()
	s.rerun(w, r, sess)
}

// rerun responds with a fresh result, or 204 when the session has not run
// yet.
func (s *Server) rerun(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !sess.HasInput() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	res, err := sess.Rerun(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/sessions/{id}/expand/{node}
func (s *Server) expand(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	node := chi.URLParam(r, "node")
	if err := errors.ValidateNodeID(node); err != nil {
		writeError(w, err)
		return
	}
	res, path, err := sess.Expand(r.Context(), node)
	if err != nil {
		writeError(w, err)
		return
	}
	if path == nil {
		path = []string{}
	}
	writeJSON(w, http.StatusOK, expandResponse{Expanded: path, Result: res})
}
