package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type Document struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   uuid.UUID `gorm:"type:uuid;not null;index:ix_documents_session"`
	FileName    string    `gorm:"type:varchar(255);not null"`
	FileSize    int64     `gorm:"not null"`
	FileType    string    `gorm:"type:varchar(50);not null"`
	StoragePath string    `gorm:"type:varchar(500)"`
	ChunkCount  int       `gorm:"not null;default:0"`
	UploadedAt  time.Time `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentChunk holds the pgvector rows for one session namespace. The
// namespace column is the collection key handed to the retrieval pipeline.
type DocumentChunk struct {
	Id         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId uuid.UUID       `gorm:"type:uuid;not null;index"`
	Namespace  string          `gorm:"type:varchar(150);not null;index"`
	ChunkIndex int             `gorm:"not null"`
	Content    string          `gorm:"type:text;not null"`
	Embedding  pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt  time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
