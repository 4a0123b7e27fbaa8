package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/timelane/pkg/chart"
	"github.com/matzehuels/timelane/pkg/engine"
)

// session is one engine and the chart it was built from.
type session struct {
	ID      string
	ChartID string // store id, empty for posted charts

	mu      sync.Mutex
	engine  *engine.Engine
	chart   *chart.Chart
	created time.Time
	touched time.Time
}

// sessions is the in-memory session table.
type sessions struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]*session
	now func() time.Time
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{ttl: ttl, m: make(map[string]*session), now: time.Now}
}

func (s *sessions) add(e *engine.Engine, c *chart.Chart, chartID string) *session {
	now := s.now()
	sess := &session{
		ID:      uuid.NewString(),
		ChartID: chartID,
		engine:  e,
		chart:   c,
		created: now,
		touched: now,
	}
	s.mu.Lock()
	s.m[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// get returns a live session and marks it used. Expired sessions are
// dropped and reported as missing.
func (s *sessions) get(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		return nil
	}
	now := s.now()
	if now.Sub(sess.touched) > s.ttl {
		delete(s.m, id)
		return nil
	}
	sess.touched = now
	return sess
}

func (s *sessions) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	delete(s.m, id)
	return ok
}

// sweep drops every session idle for longer than the TTL and returns their ids.
func (s *sessions) sweep(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []string
	for id, sess := range s.m {
		if now.Sub(sess.touched) > s.ttl {
			delete(s.m, id)
			expired = append(expired, id)
		}
	}
	return expired
}

func (s *sessions) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
