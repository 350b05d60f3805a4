// Package session holds the mutable per-trainee session records between
// start and completion. The store is process-local: constructor-injected,
// guarded by a map-level RWMutex plus sharded per-session locks so late
// event batches for the same session serialize without blocking others.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/decoy/internal/domain/model"
	"github.com/okian/decoy/internal/syncutil"
	"github.com/okian/decoy/pkg/logger"
	"github.com/okian/decoy/pkg/metrics"
)

// Snapshot is the diagnostic read shape of a session.
type Snapshot struct {
	SessionID  string `json:"sessionId"`
	LabID      string `json:"labId"`
	StartedAt  int64  `json:"startedAt"`
	EndedAt    *int64 `json:"endedAt"`
	EventCount int    `json:"eventCount"`
}

// Store owns all session records. Completed sessions are retained until the
// optional reaper removes them; the request path never evicts.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	locks    syncutil.ShardedMutex

	reaperInterval time.Duration
	completedTTL   time.Duration
	stopCh         chan struct{}
	started        bool

	log logger.Logger
	now func() time.Time
}

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithReaperInterval sets how often the background reaper sweeps. The reaper
// only runs when both the interval and the TTL are positive.
func WithReaperInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.reaperInterval = d
		}
	}
}

// WithCompletedTTL sets how long completed sessions are retained before the
// reaper may remove them.
func WithCompletedTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.completedTTL = d
		}
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*model.Session),
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background reaper when configured. Safe to call on an
// unconfigured store; it is then a no-op.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.reaperInterval <= 0 || s.completedTTL <= 0 {
		return
	}
	s.started = true
	go s.reap(ctx)
}

// Stop halts the background reaper.
func (s *Store) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.started = false
}

// Create allocates a new session for the given lab with an unguessable id
// and an empty event list. Lab existence is the caller's concern.
func (s *Store) Create(ctx context.Context, labID string) *model.Session {
	sess := &model.Session{
		ID:        uuid.NewString(),
		LabID:     labID,
		StartedAt: s.now().UnixMilli(),
		Events:    []model.Event{},
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	active := s.activeLocked()
	s.mu.Unlock()

	metrics.UpdateActiveSessions(active)
	return snapshotOf(sess)
}

// Append normalizes and appends a batch of raw events to a session.
// Well-formed entries need a string "type"; payload defaults to an empty
// map and "ts" to the current server time unless supplied as a JSON number.
// Malformed entries are dropped silently by design: losing one telemetry
// event must not block the trainee's flow. Returns accepted and dropped
// counts for metrics.
func (s *Store) Append(ctx context.Context, id string, raw []map[string]any) (accepted, dropped int, err error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return 0, 0, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	now := s.now().UnixMilli()
	for _, entry := range raw {
		ev, ok := normalizeEvent(entry, now)
		if !ok {
			dropped++
			continue
		}
		sess.Events = append(sess.Events, ev)
		accepted++
	}
	return accepted, dropped, nil
}

// normalizeEvent converts one raw batch entry into an Event. Entries without
// a string type are rejected.
func normalizeEvent(entry map[string]any, now int64) (model.Event, bool) {
	if entry == nil {
		return model.Event{}, false
	}
	typ, ok := entry["type"].(string)
	if !ok || typ == "" {
		return model.Event{}, false
	}

	payload, _ := entry["payload"].(map[string]any)
	if payload == nil {
		payload = map[string]any{}
	}

	ts := now
	if f, ok := entry["ts"].(float64); ok {
		ts = int64(f)
	}

	return model.Event{Type: typ, Payload: payload, TS: ts}, true
}

// Get returns a diagnostic snapshot of a session.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	unlock := s.locks.Lock(id)
	defer unlock()
	return Snapshot{
		SessionID:  sess.ID,
		LabID:      sess.LabID,
		StartedAt:  sess.StartedAt,
		EndedAt:    sess.EndedAt,
		EventCount: len(sess.Events),
	}, nil
}

// Complete stamps the session's end time and returns an immutable copy for
// evaluation. The session stays in the store afterward. Repeated completion
// is not guarded against: each call restamps endedAt, matching the engine's
// documented lifecycle.
//
// EndedAt is stamped under the map write lock: ActiveCount and Sweep read it
// for every session while holding only s.mu, so the shard lock alone is not
// enough here.
func (s *Store) Complete(ctx context.Context, id string) (model.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return model.Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	ended := s.now().UnixMilli()
	sess.EndedAt = &ended
	s.mu.Unlock()

	return *snapshotOf(sess), nil
}

// Count returns the total number of sessions held, completed or not.
func (s *Store) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ActiveCount returns the number of sessions not yet completed.
func (s *Store) ActiveCount(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

func (s *Store) activeLocked() int {
	n := 0
	for _, sess := range s.sessions {
		if sess.EndedAt == nil {
			n++
		}
	}
	return n
}

// Sweep removes completed sessions whose endedAt is older than the
// configured TTL. Returns the number of sessions removed.
func (s *Store) Sweep(ctx context.Context) int {
	if s.completedTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.completedTTL).UnixMilli()

	s.mu.Lock()
	removed := 0
	for id, sess := range s.sessions {
		if sess.EndedAt != nil && *sess.EndedAt < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	size := len(s.sessions)
	active := s.activeLocked()
	s.mu.Unlock()

	if removed > 0 {
		metrics.RecordSessionsReaped(removed)
		if s.log != nil {
			s.log.Info(ctx, "reaped completed sessions",
				logger.Int("removed", removed),
				logger.Int("remaining", size),
			)
		}
	}
	metrics.UpdateActiveSessions(active)
	return removed
}

// reap runs Sweep on the configured interval until ctx or Stop ends it.
func (s *Store) reap(ctx context.Context) {
	ticker := time.NewTicker(s.reaperInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// snapshotOf returns a copy whose event slice is detached from the live
// record, so evaluation reads a stable view while batches keep arriving.
func snapshotOf(sess *model.Session) *model.Session {
	events := make([]model.Event, len(sess.Events))
	copy(events, sess.Events)
	cp := *sess
	cp.Events = events
	return &cp
}
