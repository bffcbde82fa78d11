package mapper

import (
	"encoding/json"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/model"

	"gorm.io/datatypes"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(s.Metadata) > 0 {
		// Malformed metadata is treated as empty rather than failing a read
		_ = json.Unmarshal(s.Metadata, &metadata)
	}
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	return &entity.Session{
		Id:             s.Id,
		UserId:         s.UserId,
		Title:          s.Title,
		Status:         entity.SessionStatus(s.Status),
		Metadata:       metadata,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ArchivedAt:     s.ArchivedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}

	var metadata datatypes.JSON
	if s.Metadata != nil {
		if raw, err := json.Marshal(s.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.Session{
		Id:             s.Id,
		UserId:         s.UserId,
		Title:          s.Title,
		Status:         string(s.Status),
		Metadata:       metadata,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		ArchivedAt:     s.ArchivedAt,
	}
}
