package dto

import (
	"time"

	"github.com/google/uuid"
)

type RegisterDocumentRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	FileSize    int64  `json:"file_size" validate:"required,gt=0"`
	FileType    string `json:"file_type" validate:"required,max=50"`
	ChunkCount  int    `json:"chunk_count" validate:"gte=0"`
	StoragePath string `json:"storage_path"`
}

type DocumentResponse struct {
	Id         uuid.UUID `json:"id"`
	SessionId  uuid.UUID `json:"session_id"`
	FileName   string    `json:"file_name"`
	FileSize   int64     `json:"file_size"`
	FileType   string    `json:"file_type"`
	ChunkCount int       `json:"chunk_count"`
	UploadedAt time.Time `json:"uploaded_at"`
	Namespace  string    `json:"namespace"`
}
