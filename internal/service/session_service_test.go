package service

import (
	"context"
	"testing"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T) (*sessionService, *memFactory, *fixedClock, uuid.UUID) {
	t.Helper()

	factory := newMemFactory()
	clock := newFixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC))

	ownerId := uuid.New()
	factory.store.users[ownerId] = &entity.User{
		Id:        ownerId,
		Email:     "owner@example.com",
		CreatedAt: clock.Now(),
	}

	isolation := NewIsolationService(factory, nopLogger{})
	svc := NewSessionService(factory, isolation, nil, nopLogger{}).(*sessionService)
	svc.now = clock.Now

	return svc, factory, clock, ownerId
}

func TestCreateSessionDefaults(t *testing.T) {
	svc, _, clock, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "", nil)
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusActive, session.Status)
	assert.Equal(t, clock.Now(), session.LastActivityAt)
	assert.Equal(t, "Session 2026-08-01 12:00", session.Title)
	assert.NotNil(t, session.Metadata)
	assert.Nil(t, session.ArchivedAt)
}

func TestCreateSessionUnknownOwner(t *testing.T) {
	svc, _, _, _ := newTestSessionService(t)

	_, err := svc.Create(context.Background(), uuid.New(), "x", nil)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestGetSessionOtherOwnerLooksAbsent(t *testing.T) {
	svc, factory, clock, ownerId := newTestSessionService(t)

	intruderId := uuid.New()
	factory.store.users[intruderId] = &entity.User{Id: intruderId, Email: "other@example.com", CreatedAt: clock.Now()}

	session, err := svc.Create(context.Background(), ownerId, "mine", nil)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), intruderId, session.Id)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))

	// The owner still sees it
	got, err := svc.Get(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, session.Id, got.Id)
}

func TestListSessionsOrderAndFilter(t *testing.T) {
	svc, _, clock, ownerId := newTestSessionService(t)

	older, err := svc.Create(context.Background(), ownerId, "older", nil)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	newer, err := svc.Create(context.Background(), ownerId, "newer", nil)
	require.NoError(t, err)

	sessions, err := svc.List(context.Background(), ownerId, nil, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.Id, sessions[0].Id)
	assert.Equal(t, older.Id, sessions[1].Id)

	// Archive the older one and filter by status
	_, err = svc.Archive(context.Background(), ownerId, older.Id)
	require.NoError(t, err)

	archived := entity.SessionStatusArchived
	sessions, err = svc.List(context.Background(), ownerId, &archived, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, older.Id, sessions[0].Id)

	sessions, err = svc.List(context.Background(), ownerId, nil, 1)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestListDoesNotMoveActivity(t *testing.T) {
	svc, _, clock, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "quiet", nil)
	require.NoError(t, err)
	created := session.LastActivityAt

	clock.Advance(48 * time.Hour)
	_, err = svc.List(context.Background(), ownerId, nil, 0)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), ownerId, session.Id)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, created, got.LastActivityAt)
}

func TestTouchMovesActivity(t *testing.T) {
	svc, _, clock, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "busy", nil)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	require.NoError(t, svc.Touch(context.Background(), ownerId, session.Id))

	got, err := svc.Get(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, clock.Now(), got.LastActivityAt)
}

func TestArchiveIsIdempotent(t *testing.T) {
	svc, _, clock, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "a", nil)
	require.NoError(t, err)

	first, err := svc.Archive(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusArchived, first.Status)
	require.NotNil(t, first.ArchivedAt)
	assert.Equal(t, clock.Now(), *first.ArchivedAt)

	second, err := svc.Archive(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusArchived, second.Status)
}

func TestRestoreRefreshesActivity(t *testing.T) {
	svc, _, clock, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "r", nil)
	require.NoError(t, err)

	_, err = svc.Archive(context.Background(), ownerId, session.Id)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	restored, err := svc.Restore(context.Background(), ownerId, session.Id)
	require.NoError(t, err)

	assert.Equal(t, entity.SessionStatusActive, restored.Status)
	assert.Nil(t, restored.ArchivedAt)
	assert.Equal(t, clock.Now(), restored.LastActivityAt)
}

func TestRestoreActiveIsNoOp(t *testing.T) {
	svc, _, _, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "n", nil)
	require.NoError(t, err)

	got, err := svc.Restore(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, got.Status)
}

func TestHardDeleteCascades(t *testing.T) {
	svc, factory, _, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "d", nil)
	require.NoError(t, err)

	handle := NamespaceHandle(ownerId, session.Id)
	docId := uuid.New()
	factory.store.documents[docId] = &entity.Document{Id: docId, SessionId: session.Id, FileName: "a.pdf"}
	factory.store.chunks = append(factory.store.chunks, &entity.DocumentChunk{Id: uuid.New(), DocumentId: docId, Namespace: handle})

	require.NoError(t, svc.HardDelete(context.Background(), ownerId, session.Id))

	assert.Empty(t, factory.store.sessions)
	assert.Empty(t, factory.store.documents)
	assert.Empty(t, factory.store.chunks)
	assert.Equal(t, 1, factory.store.chunkDeletesByNs[handle])

	// A second delete of the same id reports not found
	err = svc.HardDelete(context.Background(), ownerId, session.Id)
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}

func TestHardDeleteSurfacesTeardownFailure(t *testing.T) {
	svc, factory, _, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "t", nil)
	require.NoError(t, err)

	factory.store.failChunkDelete = true
	err = svc.HardDelete(context.Background(), ownerId, session.Id)
	assert.True(t, apperror.IsCode(err, apperror.CodeTeardownFailed))

	// Visibility is already gone even though teardown failed
	assert.Empty(t, factory.store.sessions)
}

func TestSweepDeleteSkipsRestoredSession(t *testing.T) {
	svc, _, _, ownerId := newTestSessionService(t)

	session, err := svc.Create(context.Background(), ownerId, "s", nil)
	require.NoError(t, err)
	archived, err := svc.Archive(context.Background(), ownerId, session.Id)
	require.NoError(t, err)

	// Owner restores between the candidate read and the claim
	_, err = svc.Restore(context.Background(), ownerId, session.Id)
	require.NoError(t, err)

	require.NoError(t, svc.SweepDelete(context.Background(), archived))

	got, err := svc.Get(context.Background(), ownerId, session.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.SessionStatusActive, got.Status)
}
