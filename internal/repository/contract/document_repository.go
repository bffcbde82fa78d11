package contract

import (
	"context"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	UpdateChunkCount(ctx context.Context, id uuid.UUID, chunkCount int) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
}

// ScoredChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk      *entity.DocumentChunk
	Similarity float64
}

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	CountByNamespace(ctx context.Context, namespace string) (int64, error)
	// SearchSimilar runs a cosine-distance ordered lookup scoped to one
	// namespace. This is the retrieval pipeline's read path.
	SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int) ([]*ScoredChunk, error)
	// DeleteByNamespace tears down a session's entire collection. Deleting an
	// absent namespace succeeds.
	DeleteByNamespace(ctx context.Context, namespace string) error
}
