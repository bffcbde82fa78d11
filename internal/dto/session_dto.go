package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title    string                 `json:"title"`
	Metadata map[string]interface{} `json:"metadata"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type SearchSessionRequest struct {
	Embedding []float32 `json:"embedding" validate:"required,min=1"`
	Limit     int       `json:"limit" validate:"gte=0,lte=50"`
}

type ScoredChunkResponse struct {
	DocumentId uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

type SessionResponse struct {
	Id             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}
