package service

import (
	"context"
	"fmt"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"
	"pdfchat-be/pkg/events"

	"github.com/google/uuid"
)

const (
	ActorOwner = "owner"
	ActorSweep = "sweep"
)

// ISessionService is the owner-scoped session registry. Every operation
// takes the authenticated owner's identity as an explicit parameter; a
// session owned by someone else is indistinguishable from one that does not
// exist.
type ISessionService interface {
	Create(ctx context.Context, ownerId uuid.UUID, title string, metadata map[string]interface{}) (*entity.Session, error)
	Get(ctx context.Context, ownerId, sessionId uuid.UUID) (*entity.Session, error)
	List(ctx context.Context, ownerId uuid.UUID, statusFilter *entity.SessionStatus, limit int) ([]*entity.Session, error)
	Rename(ctx context.Context, ownerId, sessionId uuid.UUID, title string) (*entity.Session, error)
	// Touch moves last_activity_at. Called only from chat/upload paths.
	Touch(ctx context.Context, ownerId, sessionId uuid.UUID) error
	Archive(ctx context.Context, ownerId, sessionId uuid.UUID) (*entity.Session, error)
	Restore(ctx context.Context, ownerId, sessionId uuid.UUID) (*entity.Session, error)
	HardDelete(ctx context.Context, ownerId, sessionId uuid.UUID) error

	// Sweep-facing operations. The sweeper talks to sessions only through
	// this contract, never through the repositories directly.
	ListExpired(ctx context.Context, status entity.SessionStatus, cutoff time.Time) ([]*entity.Session, error)
	SweepArchive(ctx context.Context, session *entity.Session) (bool, error)
	SweepDelete(ctx context.Context, session *entity.Session) error
}

type sessionService struct {
	uowFactory unitofwork.RepositoryFactory
	isolation  IIsolationService
	publisher  *events.Publisher
	log        logger.ILogger
	now        func() time.Time
}

func NewSessionService(
	uowFactory unitofwork.RepositoryFactory,
	isolation IIsolationService,
	publisher *events.Publisher,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		uowFactory: uowFactory,
		isolation:  isolation,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// ownedSession resolves a session under its owner's scope. A mismatched
// owner falls out of the query itself, so the caller sees the same NotFound
// as for a nonexistent id and existence never leaks to non-owners.
func (s *sessionService) ownedSession(ctx context.Context, uow unitofwork.UnitOfWork, ownerId, sessionId uuid.UUID) (*entity.Session, error) {
	session, err := uow.SessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.OwnedBy{UserID: ownerId},
	)
	if err != nil {
		return nil, apperror.Unavailable("looking up session", err)
	}
	if session == nil {
		return nil, apperror.New(apperror.CodeNotFound, "session not found")
	}
	return session, nil
}

func (s *sessionService) Create(ctx context.Context, ownerId uuid.UUID, title string, metadata map[string]interface{}) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := s.now()

	owner, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: ownerId})
	if err != nil {
		return nil, apperror.Unavailable("looking up owner", err)
	}
	if owner == nil {
		return nil, apperror.New(apperror.CodeNotFound, "user not found")
	}

	if title == "" {
		title = fmt.Sprintf("Session %s", now.UTC().Format("2006-01-02 15:04"))
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	session := &entity.Session{
		Id:             uuid.New(),
		UserId:         ownerId,
		Title:          title,
		Status:         entity.SessionStatusActive,
		Metadata:       metadata,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	if err := uow.SessionRepository().Create(ctx, session); err != nil {
		return nil, apperror.Unavailable("creating session", err)
	}

	s.publishEvent(events.TypeSessionCreated, session, ActorOwner)
	s.log.Info("sessions", "session created", map[string]interface{}{
		"session_id": session.Id.String(),
		"user_id":    ownerId.String(),
	})

	return session, nil
}

func (s *sessionService) Get(ctx context.Context, ownerId, sessionId uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.ownedSession(ctx, uow, ownerId, sessionId)
}

func (s *sessionService) List(ctx context.Context, ownerId uuid.UUID, statusFilter *entity.SessionStatus, limit int) ([]*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OwnedBy{UserID: ownerId},
		specification.OrderBy{Field: "last_activity_at", Desc: true},
	}
	if statusFilter != nil {
		specs = append(specs, specification.StatusEquals{Status: string(*statusFilter)})
	}
	if limit > 0 {
		specs = append(specs, specification.Limit{N: limit})
	}

	sessions, err := uow.SessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Unavailable("listing sessions", err)
	}
	return sessions, nil
}

func (s *sessionService) Rename(ctx context.Context, ownerId, sessionId uuid.UUID, title string) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, ownerId, sessionId)
	if err != nil {
		return nil, err
	}

	if err := uow.SessionRepository().UpdateTitle(ctx, session.Id, title); err != nil {
		return nil, apperror.Unavailable("renaming session", err)
	}
	session.Title = title
	return session, nil
}

func (s *sessionService) Touch(ctx context.Context, ownerId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, ownerId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.SessionRepository().Touch(ctx, session.Id, s.now()); err != nil {
		return apperror.Unavailable("touching session", err)
	}
	return nil
}

func (s *sessionService) Archive(ctx context.Context, ownerId, sessionId uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, ownerId, sessionId)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, uow, session, entity.SessionStatusActive, entity.SessionStatusArchived, ActorOwner)
}

func (s *sessionService) Restore(ctx context.Context, ownerId, sessionId uuid.UUID) (*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, ownerId, sessionId)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, uow, session, entity.SessionStatusArchived, entity.SessionStatusActive, ActorOwner)
}

// transition applies one CAS state change. Already being in the target state
// is an idempotent no-op; losing the CAS race re-reads and converges, since
// user action and the sweep drive sessions toward the same outcomes.
func (s *sessionService) transition(ctx context.Context, uow unitofwork.UnitOfWork, session *entity.Session, from, to entity.SessionStatus, actor string) (*entity.Session, error) {
	if session.Status == to {
		return session, nil
	}
	if !CanTransition(session.Status, to) {
		return nil, apperror.New(apperror.CodeInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", session.Status, to))
	}

	swapped, err := uow.SessionRepository().CompareAndSwapStatus(ctx, session.Id, from, to, s.now())
	if err != nil {
		return nil, apperror.Unavailable("updating session status", err)
	}
	if !swapped {
		// Lost the race; report whatever state the winner left behind
		current, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
		if err != nil {
			return nil, apperror.Unavailable("re-reading session", err)
		}
		if current == nil {
			return nil, apperror.New(apperror.CodeNotFound, "session not found")
		}
		return current, nil
	}

	refreshed, err := uow.SessionRepository().FindOne(ctx, specification.ByID{ID: session.Id})
	if err != nil {
		return nil, apperror.Unavailable("re-reading session", err)
	}
	if refreshed == nil {
		return nil, apperror.New(apperror.CodeNotFound, "session not found")
	}

	eventType := events.TypeSessionArchived
	if to == entity.SessionStatusActive {
		eventType = events.TypeSessionRestored
	}
	s.publishEvent(eventType, refreshed, actor)

	return refreshed, nil
}

func (s *sessionService) HardDelete(ctx context.Context, ownerId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.ownedSession(ctx, uow, ownerId, sessionId)
	if err != nil {
		return err
	}

	return s.cascadeDelete(ctx, session, ActorOwner)
}

// cascadeDelete removes the session row and its documents first, so the
// session stops being externally visible at or before namespace teardown,
// then destroys the retrieval namespace. A teardown failure after the row is
// gone risks orphaned vector storage, so it surfaces as a distinct
// TeardownFailed error and is never swallowed.
func (s *sessionService) cascadeDelete(ctx context.Context, session *entity.Session, actor string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	if err := uow.Begin(ctx); err != nil {
		return apperror.Unavailable("starting delete transaction", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentRepository().DeleteBySessionId(ctx, session.Id); err != nil {
		return apperror.Unavailable("deleting session documents", err)
	}
	if err := uow.SessionRepository().DeleteHard(ctx, session.Id); err != nil {
		return apperror.Unavailable("deleting session", err)
	}
	if err := uow.Commit(); err != nil {
		return apperror.Unavailable("committing session delete", err)
	}

	if err := s.isolation.DestroyNamespace(ctx, session); err != nil {
		s.log.Warn("sessions", "namespace teardown failed after session delete", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		return apperror.Wrap(apperror.CodeTeardownFailed, "namespace teardown failed", err)
	}

	s.publishEvent(events.TypeSessionDeleted, session, actor)
	s.log.Info("sessions", "session hard-deleted", map[string]interface{}{
		"session_id": session.Id.String(),
		"actor":      actor,
	})

	return nil
}

func (s *sessionService) ListExpired(ctx context.Context, status entity.SessionStatus, cutoff time.Time) ([]*entity.Session, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.StatusEquals{Status: string(status)},
	}
	switch status {
	case entity.SessionStatusActive:
		specs = append(specs, specification.LastActivityBefore{Cutoff: cutoff})
	case entity.SessionStatusArchived:
		specs = append(specs, specification.ArchivedBefore{Cutoff: cutoff})
	}

	sessions, err := uow.SessionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, apperror.Unavailable("listing expired sessions", err)
	}
	return sessions, nil
}

func (s *sessionService) SweepArchive(ctx context.Context, session *entity.Session) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	swapped, err := uow.SessionRepository().CompareAndSwapStatus(ctx,
		session.Id, entity.SessionStatusActive, entity.SessionStatusArchived, s.now())
	if err != nil {
		return false, apperror.Unavailable("archiving session", err)
	}
	if swapped {
		s.publishEvent(events.TypeSessionArchived, session, ActorSweep)
	}
	// A CAS miss means the owner touched, archived, or deleted the session
	// after the candidate list was read; nothing left to do
	return swapped, nil
}

func (s *sessionService) SweepDelete(ctx context.Context, session *entity.Session) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Claim the session before tearing it down. If the owner restored it
	// between the candidate read and now, the claim misses and the session
	// survives until its next archival cycle
	swapped, err := uow.SessionRepository().CompareAndSwapStatus(ctx,
		session.Id, entity.SessionStatusArchived, entity.SessionStatusDeleted, s.now())
	if err != nil {
		return apperror.Unavailable("claiming session for deletion", err)
	}
	if !swapped {
		return nil
	}

	return s.cascadeDelete(ctx, session, ActorSweep)
}

func (s *sessionService) publishEvent(eventType string, session *entity.Session, actor string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(events.NewSessionEvent(eventType, session.UserId, session.Id, actor, s.now())); err != nil {
		s.log.Warn("sessions", "failed to publish session event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
