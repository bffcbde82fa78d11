package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pdfchat-be/internal/dto"
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/contract"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// NamespaceHandle derives the deterministic retrieval-store collection key
// for one session. Session ids are random uuids that are never reissued, so
// a handle is unique for the system's lifetime and a destroyed handle is
// never reassigned.
func NamespaceHandle(userId, sessionId uuid.UUID) string {
	sanitize := func(id uuid.UUID) string {
		return strings.ReplaceAll(strings.ToLower(id.String()), "-", "_")
	}
	return fmt.Sprintf("user_%s_session_%s", sanitize(userId), sanitize(sessionId))
}

// IIsolationService scopes every session to its own retrieval-store
// namespace and tracks uploaded-document metadata. The external
// parsing/embedding pipeline writes vectors through the returned handle;
// this service guarantees two sessions never share one.
type IIsolationService interface {
	// EnsureNamespace is idempotent. The pgvector collection is keyed by the
	// namespace column, so deriving the handle is what brings it into
	// existence; repeated calls return the same value.
	EnsureNamespace(ctx context.Context, session *entity.Session) (string, error)
	RegisterDocument(ctx context.Context, session *entity.Session, req *dto.RegisterDocumentRequest) (*entity.Document, error)
	ListDocuments(ctx context.Context, session *entity.Session) ([]*entity.Document, error)
	AddChunks(ctx context.Context, session *entity.Session, documentId uuid.UUID, chunks []*entity.DocumentChunk) error
	SearchSimilar(ctx context.Context, session *entity.Session, embedding []float32, limit int) ([]*contract.ScoredChunk, error)
	// DestroyNamespace deletes the session's entire collection. An absent
	// namespace counts as success.
	DestroyNamespace(ctx context.Context, session *entity.Session) error
}

type isolationService struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
	now        func() time.Time
}

func NewIsolationService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IIsolationService {
	return &isolationService{
		uowFactory: uowFactory,
		log:        log,
		now:        time.Now,
	}
}

func (s *isolationService) EnsureNamespace(ctx context.Context, session *entity.Session) (string, error) {
	if session == nil {
		return "", apperror.New(apperror.CodeNotFound, "session not found")
	}
	return NamespaceHandle(session.UserId, session.Id), nil
}

func (s *isolationService) RegisterDocument(ctx context.Context, session *entity.Session, req *dto.RegisterDocumentRequest) (*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document := &entity.Document{
		Id:          uuid.New(),
		SessionId:   session.Id,
		FileName:    req.FileName,
		FileSize:    req.FileSize,
		FileType:    req.FileType,
		StoragePath: req.StoragePath,
		ChunkCount:  req.ChunkCount,
		UploadedAt:  s.now(),
	}

	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		return nil, apperror.Unavailable("registering document", err)
	}

	s.log.Info("isolation", "document registered", map[string]interface{}{
		"session_id":  session.Id.String(),
		"document_id": document.Id.String(),
		"file_name":   document.FileName,
		"chunk_count": document.ChunkCount,
	})

	return document, nil
}

func (s *isolationService) ListDocuments(ctx context.Context, session *entity.Session) ([]*entity.Document, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "uploaded_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Unavailable("listing documents", err)
	}
	return documents, nil
}

func (s *isolationService) AddChunks(ctx context.Context, session *entity.Session, documentId uuid.UUID, chunks []*entity.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return apperror.Unavailable("looking up document", err)
	}
	if len(documents) == 0 {
		return apperror.New(apperror.CodeNotFound, "document not found")
	}
	// Later batches append after the chunks already ingested
	offset := documents[0].ChunkCount

	handle := NamespaceHandle(session.UserId, session.Id)
	now := s.now()
	for i, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		c.DocumentId = documentId
		c.Namespace = handle
		c.ChunkIndex = offset + i
		c.CreatedAt = now
	}

	if err := uow.Begin(ctx); err != nil {
		return apperror.Unavailable("starting chunk transaction", err)
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return apperror.Unavailable("storing chunks", err)
	}
	if err := uow.DocumentRepository().UpdateChunkCount(ctx, documentId, offset+len(chunks)); err != nil {
		return apperror.Unavailable("updating chunk count", err)
	}

	return uow.Commit()
}

func (s *isolationService) SearchSimilar(ctx context.Context, session *entity.Session, embedding []float32, limit int) ([]*contract.ScoredChunk, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	handle := NamespaceHandle(session.UserId, session.Id)
	scored, err := uow.DocumentChunkRepository().SearchSimilar(ctx, handle, embedding, limit)
	if err != nil {
		return nil, apperror.Unavailable("searching namespace", err)
	}
	return scored, nil
}

func (s *isolationService) DestroyNamespace(ctx context.Context, session *entity.Session) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	handle := NamespaceHandle(session.UserId, session.Id)
	if err := uow.DocumentChunkRepository().DeleteByNamespace(ctx, handle); err != nil {
		return apperror.Unavailable("destroying namespace", err)
	}

	s.log.Info("isolation", "namespace destroyed", map[string]interface{}{
		"session_id": session.Id.String(),
		"namespace":  handle,
	})

	return nil
}
