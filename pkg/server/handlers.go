package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/timelane/pkg/cache"
	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/depgraph"
	"github.com/matzehuels/timelane/pkg/diff"
	"github.com/matzehuels/timelane/pkg/engine"
	"github.com/matzehuels/timelane/pkg/errors"
	"github.com/matzehuels/timelane/pkg/layout"
	"github.com/matzehuels/timelane/pkg/store"
	"github.com/matzehuels/timelane/pkg/timeaxis"
	"github.com/matzehuels/timelane/pkg/view"
	"github.com/matzehuels/timelane/pkg/viewport"
)

// =============================================================================
// Charts
// =============================================================================

func (s *Server) chartStore() (store.Store, error) {
	if s.cfg.Store == nil {
		return nil, errors.New(errors.ErrCodeUnsupported, "no chart store configured")
	}
	return s.cfg.Store, nil
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	st, err := s.chartStore()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	infos, err := st.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if infos == nil {
		infos = []store.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	st, err := s.chartStore()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := st.Get(r.Context(), chi.URLParam(r, "chartID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePutChart(w http.ResponseWriter, r *http.Request) {
	st, err := s.chartStore()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := readChart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "chartID")
	if err := st.Put(r.Context(), id, c); err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, tasks, deps := c.Stats()
	writeJSON(w, http.StatusOK, store.Info{ID: id, Rows: rows, Tasks: tasks, Dependencies: deps, UpdatedAt: time.Now().UTC()})
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	st, err := s.chartStore()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := st.Delete(r.Context(), chi.URLParam(r, "chartID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Sessions
// =============================================================================

// sessionInfo describes a created session.
type sessionInfo struct {
	ID            string         `json:"id"`
	Chart         string         `json:"chart,omitempty"`
	Rows          int            `json:"rows"`
	Tasks         int            `json:"tasks"`
	Dependencies  int            `json:"dependencies"`
	ContentHeight float64        `json:"content_height"`
	Discarded     view.Discarded `json:"discarded"`
}

// patchResponse is the result of a structural change to a session.
type patchResponse struct {
	ContentHeight float64          `json:"content_height"`
	Diff          view.DiffSummary `json:"diff"`
}

// viewportResponse is a windowed snapshot plus the number of objects that
// entered the window for the first time.
type viewportResponse struct {
	view.Snapshot
	Materialized int `json:"materialized"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		c       *chart.Chart
		chartID = r.URL.Query().Get("chart")
		err     error
	)
	if chartID != "" {
		st, serr := s.chartStore()
		if serr != nil {
			s.writeError(w, r, serr)
			return
		}
		c, err = st.Get(ctx, chartID)
	} else {
		c, err = readChart(r)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	opts := s.cfg.Options
	width, err := floatParam(r, "width", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if width > 0 {
		if start, end, ok := c.Bounds(); ok {
			m, err := timeaxis.NewLinear(start, end, width)
			if err != nil {
				s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "time axis"))
				return
			}
			opts.Mapper = m
		}
	}

	var seq int
	e := engine.New(opts,
		engine.WithLogger(s.logger),
		engine.WithMaterializer(engine.MaterializerFunc(func(layout.Object) (any, error) {
			seq++
			return seq, nil
		})))
	if _, err := e.Update(c); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.sessions.add(e, c, chartID)
	g := e.Current()
	s.hooks.OnSession(ctx, "create", sess.ID)
	s.logger.Debug("session created", "session", sess.ID, "chart", chartID, "rows", len(g.Rows))
	writeJSON(w, http.StatusCreated, sessionInfo{
		ID:            sess.ID,
		Chart:         chartID,
		Rows:          len(g.Rows),
		Tasks:         len(g.Tasks()),
		Dependencies:  len(g.Dependencies),
		ContentHeight: g.ContentHeight,
		Discarded:     view.Discarded{Tasks: g.Discarded.Tasks, Dependencies: g.Discarded.Dependencies},
	})
}

// session returns the session named in the URL, or writes a 404 and
// returns nil.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	id := chi.URLParam(r, "sessionID")
	sess := s.sessions.get(id)
	if sess == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id))
	}
	return sess
}

// withSession runs fn under the lock of the session named in the URL.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*session) error) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := fn(sess); err != nil {
		s.writeError(w, r, err)
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *session) error {
		writeJSON(w, http.StatusOK, view.FromGeneration(sess.engine.Current(), nil))
		return nil
	})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	c, err := readChart(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *session) error {
		res, err := sess.engine.Update(c)
		if err != nil {
			return err
		}
		sess.chart = c
		writeJSON(w, http.StatusOK, patchResponse{
			ContentHeight: sess.engine.Current().ContentHeight,
			Diff:          view.Summarize(res, false),
		})
		return nil
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.remove(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id))
		return
	}
	s.hooks.OnSession(r.Context(), "delete", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var win viewport.Window
	var err error
	if win.Offset, err = floatParam(r, "offset", 0); err != nil {
		s.writeError(w, r, err)
		return
	}
	if win.Height, err = floatParam(r, "height", 600); err != nil {
		s.writeError(w, r, err)
		return
	}
	if win.Overscan, err = floatParam(r, "overscan", 0); err != nil {
		s.writeError(w, r, err)
		return
	}
	if win.Height < 0 || win.Overscan < 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "height and overscan must not be negative"))
		return
	}

	s.withSession(w, r, func(sess *session) error {
		g := sess.engine.Current()
		rng := win.Rows(g)
		n, err := sess.engine.MaterializeRange(rng)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, viewportResponse{Snapshot: view.FromGeneration(g, &rng), Materialized: n})
		return nil
	})
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	all, err := boolParam(r, "all")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.withSession(w, r, func(sess *session) error {
		writeJSON(w, http.StatusOK, view.Summarize(sess.engine.LastDiff(), all))
		return nil
	})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	rowID := chi.URLParam(r, "rowID")
	action := chi.URLParam(r, "action")
	if action != "expand" && action != "collapse" && action != "toggle" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "unknown row action %q", action))
		return
	}

	s.withSession(w, r, func(sess *session) error {
		var (
			res *diff.Result
			err error
		)
		switch action {
		case "expand":
			res, err = sess.engine.PatchExpandCollapse(rowID, layout.Expand)
		case "collapse":
			res, err = sess.engine.PatchExpandCollapse(rowID, layout.Collapse)
		default:
			res, err = sess.engine.Toggle(rowID)
		}
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, patchResponse{
			ContentHeight: sess.engine.Current().ContentHeight,
			Diff:          view.Summarize(res, false),
		})
		return nil
	})
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if format != "dot" && format != "svg" {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "unsupported graph format %q", format))
		return
	}
	var opts depgraph.Options
	var err error
	if opts.Detailed, err = boolParam(r, "detailed"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Isolated, err = boolParam(r, "isolated"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Range, err = rangeParam(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.mu.Lock()
	dot := depgraph.ToDOT(sess.engine.Current(), opts)
	sess.mu.Unlock()

	if format == "dot" {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(dot))
		return
	}

	ctx := r.Context()
	key := s.cfg.Keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{
		Format:   "svg",
		Detailed: opts.Detailed,
		Isolated: opts.Isolated,
	})
	svg, hit, err := cache.Fetch(ctx, s.cfg.Cache, key, "svg", s.cfg.RenderTTL, func() ([]byte, error) {
		return s.cfg.Render(ctx, dot)
	})
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "render dependency graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(svg)
}

// rangeParam reads an optional min/max row window.
func rangeParam(r *http.Request) (*viewport.Range, error) {
	q := r.URL.Query()
	if q.Get("min") == "" && q.Get("max") == "" {
		return nil, nil
	}
	lo, err1 := strconv.Atoi(q.Get("min"))
	hi, err2 := strconv.Atoi(q.Get("max"))
	if err1 != nil || err2 != nil || lo < 0 || hi < lo {
		return nil, errors.New(errors.ErrCodeInvalidInput, "min and max must be row indices with min <= max")
	}
	return &viewport.Range{Min: lo, Max: hi}, nil
}
