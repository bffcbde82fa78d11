package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/repository/contract"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// memStore is a shared in-memory backing store for the fake repositories.
// It interprets the same specification values the gorm implementations
// translate to SQL, so service tests exercise real query shapes.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*entity.User
	tokens    map[string]*entity.AuthToken
	sessions  map[uuid.UUID]*entity.Session
	documents map[uuid.UUID]*entity.Document
	chunks    []*entity.DocumentChunk

	failSessionDelete bool
	failChunkDelete   bool
	chunkDeletesByNs  map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		users:            map[uuid.UUID]*entity.User{},
		tokens:           map[string]*entity.AuthToken{},
		sessions:         map[uuid.UUID]*entity.Session{},
		documents:        map[uuid.UUID]*entity.Document{},
		chunkDeletesByNs: map[string]int{},
	}
}

type memFactory struct {
	store *memStore
}

func newMemFactory() *memFactory {
	return &memFactory{store: newMemStore()}
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

type memUnitOfWork struct {
	store *memStore
}

func (u *memUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error                   { return nil }
func (u *memUnitOfWork) Rollback() error                 { return nil }

func (u *memUnitOfWork) UserRepository() contract.UserRepository {
	return &memUserRepo{store: u.store}
}
func (u *memUnitOfWork) AuthTokenRepository() contract.AuthTokenRepository {
	return &memTokenRepo{store: u.store}
}
func (u *memUnitOfWork) SessionRepository() contract.SessionRepository {
	return &memSessionRepo{store: u.store}
}
func (u *memUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &memDocumentRepo{store: u.store}
}
func (u *memUnitOfWork) DocumentChunkRepository() contract.DocumentChunkRepository {
	return &memChunkRepo{store: u.store}
}

// --- users ---

type memUserRepo struct {
	store *memStore
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if existing.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	clone := *user
	r.store.users[user.Id] = &clone
	return nil
}

func (r *memUserRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, user := range r.store.users {
		if matchUser(user, specs) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, user := range r.store.users {
		if matchUser(user, specs) {
			n++
		}
	}
	return n, nil
}

func (r *memUserRepo) UpdatePassword(ctx context.Context, userId uuid.UUID, hash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if user, ok := r.store.users[userId]; ok {
		user.PasswordHash = hash
	}
	return nil
}

func matchUser(user *entity.User, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if user.Id != s.ID {
				return false
			}
		case specification.ByEmail:
			if user.Email != s.Email {
				return false
			}
		}
	}
	return true
}

// --- auth tokens ---

type memTokenRepo struct {
	store *memStore
}

func (r *memTokenRepo) Create(ctx context.Context, token *entity.AuthToken) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *token
	r.store.tokens[token.Token] = &clone
	return nil
}

func (r *memTokenRepo) FindByToken(ctx context.Context, token string) (*entity.AuthToken, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if row, ok := r.store.tokens[token]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, nil
}

func (r *memTokenRepo) Delete(ctx context.Context, token string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.tokens, token)
	return nil
}

func (r *memTokenRepo) SetActiveSession(ctx context.Context, token string, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if row, ok := r.store.tokens[token]; ok {
		id := sessionId
		row.ActiveSessionId = &id
	}
	return nil
}

func (r *memTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var purged int64
	for value, row := range r.store.tokens {
		if row.ExpiresAt.Before(now) {
			delete(r.store.tokens, value)
			purged++
		}
	}
	return purged, nil
}

// --- sessions ---

type memSessionRepo struct {
	store *memStore
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *session
	r.store.sessions[session.Id] = &clone
	return nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, session := range r.store.sessions {
		if matchSession(session, specs) {
			clone := *session
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []*entity.Session
	for _, session := range r.store.sessions {
		if matchSession(session, specs) {
			clone := *session
			matched = append(matched, &clone)
		}
	}

	for _, spec := range specs {
		if order, ok := spec.(specification.OrderBy); ok && order.Field == "last_activity_at" {
			sort.Slice(matched, func(i, j int) bool {
				if order.Desc {
					return matched[i].LastActivityAt.After(matched[j].LastActivityAt)
				}
				return matched[i].LastActivityAt.Before(matched[j].LastActivityAt)
			})
		}
	}
	for _, spec := range specs {
		if limit, ok := spec.(specification.Limit); ok && limit.N > 0 && len(matched) > limit.N {
			matched = matched[:limit.N]
		}
	}
	return matched, nil
}

func (r *memSessionRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memSessionRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session, ok := r.store.sessions[id]; ok {
		session.Title = title
	}
	return nil
}

func (r *memSessionRepo) Touch(ctx context.Context, id uuid.UUID, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session, ok := r.store.sessions[id]; ok {
		session.LastActivityAt = now
	}
	return nil
}

func (r *memSessionRepo) CompareAndSwapStatus(ctx context.Context, id uuid.UUID, from, to entity.SessionStatus, now time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	session, ok := r.store.sessions[id]
	if !ok || session.Status != from {
		return false, nil
	}
	session.Status = to
	switch to {
	case entity.SessionStatusArchived:
		archivedAt := now
		session.ArchivedAt = &archivedAt
	case entity.SessionStatusActive:
		session.ArchivedAt = nil
		session.LastActivityAt = now
	}
	return true, nil
}

func (r *memSessionRepo) DeleteHard(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failSessionDelete {
		return gorm.ErrInvalidTransaction
	}
	delete(r.store.sessions, id)
	return nil
}

func matchSession(session *entity.Session, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		case specification.OwnedBy:
			if session.UserId != s.UserID {
				return false
			}
		case specification.StatusEquals:
			if string(session.Status) != s.Status {
				return false
			}
		case specification.LastActivityBefore:
			if !session.LastActivityAt.Before(s.Cutoff) {
				return false
			}
		case specification.ArchivedBefore:
			if session.ArchivedAt == nil || !session.ArchivedAt.Before(s.Cutoff) {
				return false
			}
		}
	}
	return true
}

// --- documents ---

type memDocumentRepo struct {
	store *memStore
}

func (r *memDocumentRepo) Create(ctx context.Context, document *entity.Document) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clone := *document
	r.store.documents[document.Id] = &clone
	return nil
}

func (r *memDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var matched []*entity.Document
	for _, document := range r.store.documents {
		if matchDocument(document, specs) {
			clone := *document
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UploadedAt.Before(matched[j].UploadedAt)
	})
	return matched, nil
}

func (r *memDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *memDocumentRepo) UpdateChunkCount(ctx context.Context, id uuid.UUID, chunkCount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if document, ok := r.store.documents[id]; ok {
		document.ChunkCount = chunkCount
	}
	return nil
}

func (r *memDocumentRepo) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for id, document := range r.store.documents {
		if document.SessionId == sessionId {
			delete(r.store.documents, id)
		}
	}
	return nil
}

func matchDocument(document *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if document.Id != s.ID {
				return false
			}
		case specification.BySessionID:
			if document.SessionId != s.SessionID {
				return false
			}
		}
	}
	return true
}

// --- chunks ---

type memChunkRepo struct {
	store *memStore
}

func (r *memChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, chunk := range chunks {
		clone := *chunk
		r.store.chunks = append(r.store.chunks, &clone)
	}
	return nil
}

func (r *memChunkRepo) CountByNamespace(ctx context.Context, namespace string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var n int64
	for _, chunk := range r.store.chunks {
		if chunk.Namespace == namespace {
			n++
		}
	}
	return n, nil
}

func (r *memChunkRepo) SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int) ([]*contract.ScoredChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var scored []*contract.ScoredChunk
	for _, chunk := range r.store.chunks {
		if chunk.Namespace != namespace {
			continue
		}
		clone := *chunk
		scored = append(scored, &contract.ScoredChunk{Chunk: &clone, Similarity: 1})
		if limit > 0 && len(scored) == limit {
			break
		}
	}
	return scored, nil
}

func (r *memChunkRepo) DeleteByNamespace(ctx context.Context, namespace string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failChunkDelete {
		return gorm.ErrInvalidTransaction
	}
	r.store.chunkDeletesByNs[namespace]++
	kept := r.store.chunks[:0]
	for _, chunk := range r.store.chunks {
		if chunk.Namespace != namespace {
			kept = append(kept, chunk)
		}
	}
	r.store.chunks = kept
	return nil
}

// --- misc ---

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error {
	return nil
}

// fixedClock returns a clock pinned to t that can be advanced by tests.
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock(t time.Time) *fixedClock {
	return &fixedClock{t: t}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
