// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/okian/decoy/internal/catalog"
	"github.com/okian/decoy/internal/domain/evaluate"
	"github.com/okian/decoy/internal/domain/model"
	"github.com/okian/decoy/internal/session"
	"github.com/okian/decoy/pkg/logger"
	"github.com/okian/decoy/pkg/metrics"
)

// StartResult is returned when a session begins: the new id plus the full
// lab definition so the presentation layer can render the environment
// without a second round trip. Redacting trap contents from the trainee's
// view is the presentation layer's job, not the engine's.
type StartResult struct {
	SessionID string              `json:"sessionId"`
	Lab       model.LabDefinition `json:"lab"`
}

// Completion wraps the debrief with the session's lifecycle timestamps.
type Completion struct {
	SessionID string        `json:"sessionId"`
	LabID     string        `json:"labId"`
	StartedAt int64         `json:"startedAt"`
	EndedAt   int64         `json:"endedAt"`
	Debrief   model.Debrief `json:"debrief"`
}

// Service wires the lab catalog, session store, and evaluator together.
type Service struct {
	labs     *catalog.Catalog
	sessions *session.Store

	maxEventBatch int
	// started is read by the metrics updater goroutine while Stop runs.
	started atomic.Bool
	log     logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the lab catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.labs = c
		}
	}
}

// WithSessionStore sets the session store.
func WithSessionStore(store *session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithMaxEventBatch caps the number of events one batch may carry.
// Zero (the default) disables the cap.
func WithMaxEventBatch(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxEventBatch = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service. A catalog must be supplied via WithCatalog; the
// session store defaults to an unconfigured in-memory store.
func New(opts ...Option) *Service {
	s := &Service{
		labs:     catalog.FromDefinitions(),
		sessions: session.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins background work (the session reaper) and reports readiness.
func (s *Service) Start(ctx context.Context) error {
	if s.log == nil {
		s.log = logger.Get()
	}
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.sessions.Start(ctx)

	metrics.UpdateLabsLoaded(s.labs.Len())
	s.log.Info(ctx, "lab engine started", logger.Int("labs", s.labs.Len()))
	return nil
}

// Stop halts background work.
func (s *Service) Stop() {
	if !s.started.CompareAndSwap(true, false) {
		return
	}
	s.sessions.Stop()
	s.log.Info(context.Background(), "lab engine stopped")
}

// ListLabs returns browsing summaries for every loaded lab.
func (s *Service) ListLabs(ctx context.Context) []catalog.Summary {
	return s.labs.List(ctx)
}

// GetLab returns one full lab definition.
func (s *Service) GetLab(ctx context.Context, labID string) (model.LabDefinition, error) {
	lab, err := s.labs.Get(ctx, labID)
	if err != nil {
		return model.LabDefinition{}, fmt.Errorf("get lab: %w", err)
	}
	return lab, nil
}

// StartSession creates a session against a lab. Fails with the catalog's
// ErrNotFound when the lab is unknown.
func (s *Service) StartSession(ctx context.Context, labID string) (StartResult, error) {
	lab, err := s.labs.Get(ctx, labID)
	if err != nil {
		return StartResult{}, fmt.Errorf("start session: %w", err)
	}

	sess := s.sessions.Create(ctx, labID)
	metrics.RecordSessionStarted()
	s.log.Info(ctx, "session started",
		logger.String("sessionId", sess.ID),
		logger.String("labId", labID),
	)

	return StartResult{SessionID: sess.ID, Lab: lab}, nil
}

// AppendEvents ingests a batch of raw events into a session. Malformed
// entries are dropped silently; only an unknown session id is an error.
func (s *Service) AppendEvents(ctx context.Context, sessionID string, raw []map[string]any) error {
	if s.maxEventBatch > 0 && len(raw) > s.maxEventBatch {
		return fmt.Errorf("append events: %w: %d events exceeds limit of %d",
			session.ErrInvalidBatch, len(raw), s.maxEventBatch)
	}

	accepted, dropped, err := s.sessions.Append(ctx, sessionID, raw)
	if err != nil {
		return fmt.Errorf("append events: %w", err)
	}

	metrics.RecordEventsIngested(accepted)
	metrics.RecordEventsDropped(dropped)
	s.log.Debug(ctx, "events ingested",
		logger.String("sessionId", sessionID),
		logger.Int("accepted", accepted),
		logger.Int("dropped", dropped),
	)
	return nil
}

// CompleteSession stamps the session's end, evaluates it exactly once
// against its lab definition, and returns the debrief. The session record
// is retained afterward for the reaper to collect.
func (s *Service) CompleteSession(ctx context.Context, sessionID string) (Completion, error) {
	sess, err := s.sessions.Complete(ctx, sessionID)
	if err != nil {
		return Completion{}, fmt.Errorf("complete session: %w", err)
	}

	lab, err := s.labs.Get(ctx, sess.LabID)
	if err != nil {
		// Catalog/session inconsistency; surfaced as an internal error.
		return Completion{}, fmt.Errorf("%w: %s", ErrLabGone, sess.LabID)
	}

	start := time.Now()
	debrief := evaluate.Session(lab, sess)
	metrics.RecordEvaluationDuration(float64(time.Since(start).Microseconds()) / 1000)
	metrics.RecordSessionCompleted()
	metrics.RecordTrapsTriggered(evaluate.TriggeredCount(debrief))
	metrics.RecordRiskScore(debrief.RiskScore)
	metrics.RecordRiskBand(string(debrief.RiskBand))

	s.log.Info(ctx, "session completed",
		logger.String("sessionId", sessionID),
		logger.String("labId", sess.LabID),
		logger.Int("riskScore", debrief.RiskScore),
		logger.String("riskBand", string(debrief.RiskBand)),
	)

	return Completion{
		SessionID: sess.ID,
		LabID:     sess.LabID,
		StartedAt: sess.StartedAt,
		EndedAt:   *sess.EndedAt,
		Debrief:   debrief,
	}, nil
}

// GetSession returns the diagnostic snapshot of a session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (session.Snapshot, error) {
	snap, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("get session: %w", err)
	}
	return snap, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	ctx := context.Background()
	total := s.sessions.Count(ctx)
	active := s.sessions.ActiveCount(ctx)

	metrics.UpdateActiveSessions(active)

	return map[string]interface{}{
		"started":           s.started.Load(),
		"labs":              s.labs.Len(),
		"totalSessions":     total,
		"activeSessions":    active,
		"completedSessions": total - active,
	}
}
