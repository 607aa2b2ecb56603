package server

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/soundchunk/pkg/audio"
	"github.com/matzehuels/soundchunk/pkg/chunk"
	"github.com/matzehuels/soundchunk/pkg/editor"
	apierr "github.com/matzehuels/soundchunk/pkg/errors"
	"github.com/matzehuels/soundchunk/pkg/flow"
	"github.com/matzehuels/soundchunk/pkg/layout"
	"github.com/matzehuels/soundchunk/pkg/observability"
	"github.com/matzehuels/soundchunk/pkg/reconcile"
	"github.com/matzehuels/soundchunk/pkg/render/canvas"
)

// session is one mounted editor. mu serializes gestures.
type session struct {
	mu      sync.Mutex
	id      string
	graphID string
	created time.Time
	audio   *audio.NullContext
	editor  *editor.Editor
}

type sessionView struct {
	ID        string           `json:"id"`
	GraphID   string           `json:"graph_id"`
	Revision  uint64           `json:"revision"`
	Direction layout.Direction `json:"direction,omitempty"`
	Audio     audio.State      `json:"audio"`
	Mounted   bool             `json:"mounted"`
	Created   time.Time        `json:"created"`
	Elements  []flow.Element   `json:"elements,omitempty"`
}

// view must be called with sess.mu held.
func (sess *session) view(withElements bool) sessionView {
	v := sessionView{
		ID:        sess.id,
		GraphID:   sess.graphID,
		Revision:  sess.editor.Revision(),
		Direction: sess.editor.Direction(),
		Audio:     sess.editor.AudioState(),
		Mounted:   sess.editor.Mounted(),
		Created:   sess.created,
	}
	if withElements {
		v.Elements = sess.editor.Elements()
	}
	return v
}

// persistEdges writes an edge proposal to the store. When the write fails
// the session keeps its current edges.
func (s *Server) persistEdges(sess *session) func(context.Context, []chunk.Edge) []chunk.Edge {
	return func(ctx context.Context, edges []chunk.Edge) []chunk.Edge {
		rec, err := s.store.UpdateEdges(ctx, sess.graphID, edges)
		if err != nil {
			s.logger.Error("edge update not stored", "session", sess.id, "graph", sess.graphID, "err", err)
			return sess.editor.Graph().Edges
		}
		return rec.Graph.Edges
	}
}

type createSessionRequest struct {
	GraphID   string `json:"graph_id"`
	Direction string `json:"direction"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := apierr.ValidateResourceID(req.GraphID); err != nil {
		s.writeError(w, r, err)
		return
	}
	dir := s.dir
	if req.Direction != "" {
		d, err := layout.ParseDirection(req.Direction)
		if err != nil {
			s.writeError(w, r, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "direction"))
			return
		}
		dir = d
	}
	rec, err := s.store.Get(ctx, req.GraphID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := &session{
		id:      uuid.NewString(),
		graphID: rec.ID,
		created: time.Now().UTC(),
		audio:   audio.NewGatedContext(),
	}
	opts := []editor.Option{
		editor.WithLogger(s.logger.With("session", sess.id)),
		editor.WithSolver(s.solver),
		editor.WithStrict(s.strict),
		editor.WithJitter(s.jitter),
	}
	sess.editor = editor.New(rec.Graph, editor.Dependencies{
		SendEdgeUpdate:  s.persistEdges(sess),
		SendEdgeRemoval: s.persistEdges(sess),
		AudioContext:    sess.audio,
	}, opts...)

	sess.editor.Mount(ctx)
	if err := sess.editor.Layout(ctx, dir); err != nil {
		s.logger.Warn("initial layout failed", "session", sess.id, "err", err)
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	observability.Server().OnSessionCount(ctx, n)

	s.logger.Info("session mounted", "session", sess.id, "graph", rec.ID)
	writeJSON(w, http.StatusCreated, sess.view(true))
}

func (s *Server) listSessions(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	views := make([]sessionView, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		views = append(views, sess.view(false))
		sess.mu.Unlock()
	}
	sort.Slice(views, func(i, j int) bool {
		if !views[i].Created.Equal(views[j].Created) {
			return views[i].Created.Before(views[j].Created)
		}
		return views[i].ID < views[j].ID
	})
	writeJSON(w, http.StatusOK, views)
}

// withSession runs fn with the session named by {id} locked.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session)) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		s.writeError(w, r, apierr.New(apierr.ErrCodeNotFound, "session %s not found", id))
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, sess.view(true))
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		sess.editor.Unmount(r.Context())

		s.mu.Lock()
		delete(s.sessions, sess.id)
		n := len(s.sessions)
		s.mu.Unlock()
		observability.Server().OnSessionCount(r.Context(), n)

		s.logger.Info("session unmounted", "session", sess.id)
		w.WriteHeader(http.StatusNoContent)
	})
}

type connectResponse struct {
	Accepted bool        `json:"accepted"`
	Session  sessionView `json:"session"`
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var c reconcile.Connection
	if err := decodeJSON(w, r, &c); err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, id := range []string{c.Source, c.Target} {
		if err := apierr.ValidateNodeID(id); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.withSession(w, r, func(sess *session) {
		ok := sess.editor.Connect(r.Context(), c)
		writeJSON(w, http.StatusOK, connectResponse{Accepted: ok, Session: sess.view(true)})
	})
}

type removeRequest struct {
	IDs []string `json:"ids"`
}

type removeResponse struct {
	Removed int         `json:"removed"`
	Session sessionView `json:"session"`
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	var req removeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.IDs) == 0 {
		s.writeError(w, r, apierr.New(apierr.ErrCodeInvalidInput, "ids must not be empty"))
		return
	}
	s.withSession(w, r, func(sess *session) {
		n := sess.editor.Remove(r.Context(), req.IDs...)
		writeJSON(w, http.StatusOK, removeResponse{Removed: n, Session: sess.view(true)})
	})
}

type layoutRequest struct {
	Direction string `json:"direction"`
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	dir, err := layout.ParseDirection(req.Direction)
	if err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.ErrCodeInvalidInput, err, "direction"))
		return
	}
	s.withSession(w, r, func(sess *session) {
		if err := sess.editor.Layout(r.Context(), dir); err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess.view(true))
	})
}

type audioResponse struct {
	State audio.State `json:"state"`
	Stats audio.Stats `json:"stats"`
}

// resumeAudio is the "allow audio" gesture: it unlocks the gated context
// and resumes it.
func (s *Server) resumeAudio(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		sess.audio.Allow()
		state := sess.editor.ResumeAudio(r.Context())
		if state != audio.StateRunning {
			s.writeError(w, r, apierr.New(apierr.ErrCodeAudioLifecycle, "audio context is %s", state))
			return
		}
		writeJSON(w, http.StatusOK, audioResponse{State: state, Stats: sess.editor.AudioStats()})
	})
}

func (s *Server) suspendAudio(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		state := sess.editor.SuspendAudio(r.Context())
		writeJSON(w, http.StatusOK, audioResponse{State: state, Stats: sess.editor.AudioStats()})
	})
}

func (s *Server) elements(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		writeJSON(w, http.StatusOK, sess.editor.Elements())
	})
}

func (s *Server) sessionSVG(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) {
		svg := canvas.RenderSVG(sess.editor.Elements(), canvas.WithTitle(sess.graphID))
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(svg)
	})
}
