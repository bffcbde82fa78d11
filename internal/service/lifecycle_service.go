package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/logger"
)

// validTransitions is the whole session state machine. DELETED is terminal:
// a deleted session's row is gone, so nothing can transition out of it.
var validTransitions = map[entity.SessionStatus][]entity.SessionStatus{
	entity.SessionStatusActive:   {entity.SessionStatusArchived, entity.SessionStatusDeleted},
	entity.SessionStatusArchived: {entity.SessionStatusActive, entity.SessionStatusDeleted},
	entity.SessionStatusDeleted:  {},
}

func CanTransition(from, to entity.SessionStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SweepReport summarizes one sweeper pass.
type SweepReport struct {
	Archived     int
	Deleted      int
	TokensPurged int64
	Errors       []error
	StartedAt    time.Time
	Duration     time.Duration
}

// Err folds the per-session failures into one error, nil if the pass was
// clean.
func (r *SweepReport) Err() error {
	return errors.Join(r.Errors...)
}

type SweeperOptions struct {
	InactivityWindow time.Duration
	RetentionWindow  time.Duration
	Interval         time.Duration
}

// Sweeper ages sessions through the lifecycle in the background: ACTIVE
// sessions idle past the inactivity window get archived, ARCHIVED sessions
// past the retention window get hard-deleted, and expired access tokens get
// purged. One failing session never stops the pass; its error is collected
// and the sweep moves on.
type Sweeper struct {
	sessions ISessionService
	auth     IAuthService
	log      logger.ILogger
	opts     SweeperOptions
	now      func() time.Time

	// Guards against overlapping passes when one run outlives the interval
	running sync.Mutex

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewSweeper(sessions ISessionService, auth IAuthService, log logger.ILogger, opts SweeperOptions) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		auth:     auth,
		log:      log,
		opts:     opts,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start blocks until Stop is called or ctx is cancelled. Run it on its own
// goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	s.log.Info("sweeper", "lifecycle sweeper started", map[string]interface{}{
		"interval":          s.opts.Interval.String(),
		"inactivity_window": s.opts.InactivityWindow.String(),
		"retention_window":  s.opts.RetentionWindow.String(),
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// RunOnce executes a single pass. If another pass is still in flight the
// call is skipped and an empty report returned.
func (s *Sweeper) RunOnce(ctx context.Context) *SweepReport {
	if !s.running.TryLock() {
		s.log.Warn("sweeper", "previous pass still running, skipping", nil)
		return &SweepReport{StartedAt: s.now()}
	}
	defer s.running.Unlock()

	started := s.now()
	report := &SweepReport{StartedAt: started}

	s.archivePass(ctx, report)
	s.deletePass(ctx, report)
	s.tokenPass(ctx, report)

	report.Duration = s.now().Sub(started)

	details := map[string]interface{}{
		"archived":      report.Archived,
		"deleted":       report.Deleted,
		"tokens_purged": report.TokensPurged,
		"errors":        len(report.Errors),
		"duration":      report.Duration.String(),
	}
	if len(report.Errors) > 0 {
		details["error"] = report.Err().Error()
		s.log.Warn("sweeper", "sweep pass finished with errors", details)
	} else {
		s.log.Info("sweeper", "sweep pass finished", details)
	}

	return report
}

func (s *Sweeper) archivePass(ctx context.Context, report *SweepReport) {
	cutoff := s.now().Add(-s.opts.InactivityWindow)

	candidates, err := s.sessions.ListExpired(ctx, entity.SessionStatusActive, cutoff)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("listing idle sessions: %w", err))
		return
	}

	for _, session := range candidates {
		swapped, err := s.sessions.SweepArchive(ctx, session)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("archiving session %s: %w", session.Id, err))
			continue
		}
		if swapped {
			report.Archived++
		}
	}
}

func (s *Sweeper) deletePass(ctx context.Context, report *SweepReport) {
	cutoff := s.now().Add(-s.opts.RetentionWindow)

	candidates, err := s.sessions.ListExpired(ctx, entity.SessionStatusArchived, cutoff)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("listing retained sessions: %w", err))
		return
	}

	for _, session := range candidates {
		if err := s.sessions.SweepDelete(ctx, session); err != nil {
			report.Errors = append(report.Errors, fmt.Errorf("deleting session %s: %w", session.Id, err))
		} else {
			report.Deleted++
		}
	}
}

func (s *Sweeper) tokenPass(ctx context.Context, report *SweepReport) {
	purged, err := s.auth.PurgeExpired(ctx)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Errorf("purging expired tokens: %w", err))
		return
	}
	report.TokensPurged = purged
}
