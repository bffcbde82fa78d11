package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is upload metadata only. Vector content lives in the session's
// retrieval namespace; a Document never outlives its Session.
type Document struct {
	Id          uuid.UUID
	SessionId   uuid.UUID
	FileName    string
	FileSize    int64
	FileType    string
	StoragePath string
	ChunkCount  int
	UploadedAt  time.Time
}

// DocumentChunk is one embedded slice of a document inside a session's
// retrieval namespace.
type DocumentChunk struct {
	Id         uuid.UUID
	DocumentId uuid.UUID
	Namespace  string
	ChunkIndex int
	Content    string
	Embedding  []float32
	CreatedAt  time.Time
}
