package mapper

import (
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:          d.Id,
		SessionId:   d.SessionId,
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		FileType:    d.FileType,
		StoragePath: d.StoragePath,
		ChunkCount:  d.ChunkCount,
		UploadedAt:  d.UploadedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:          d.Id,
		SessionId:   d.SessionId,
		FileName:    d.FileName,
		FileSize:    d.FileSize,
		FileType:    d.FileType,
		StoragePath: d.StoragePath,
		ChunkCount:  d.ChunkCount,
		UploadedAt:  d.UploadedAt,
	}
}

func (m *DocumentMapper) ChunkToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}
	return &entity.DocumentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Namespace:  c.Namespace,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  c.Embedding.Slice(),
		CreatedAt:  c.CreatedAt,
	}
}

func (m *DocumentMapper) ChunkToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}
	return &model.DocumentChunk{
		Id:         c.Id,
		DocumentId: c.DocumentId,
		Namespace:  c.Namespace,
		ChunkIndex: c.ChunkIndex,
		Content:    c.Content,
		Embedding:  pgvector.NewVector(c.Embedding),
		CreatedAt:  c.CreatedAt,
	}
}
