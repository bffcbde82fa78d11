package mapper

import (
	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) AuthTokenToEntity(t *model.AuthToken) *entity.AuthToken {
	if t == nil {
		return nil
	}
	return &entity.AuthToken{
		Token:           t.Token,
		UserId:          t.UserId,
		ActiveSessionId: t.ActiveSessionId,
		IssuedAt:        t.IssuedAt,
		ExpiresAt:       t.ExpiresAt,
	}
}

func (m *UserMapper) AuthTokenToModel(t *entity.AuthToken) *model.AuthToken {
	if t == nil {
		return nil
	}
	return &model.AuthToken{
		Token:           t.Token,
		UserId:          t.UserId,
		ActiveSessionId: t.ActiveSessionId,
		IssuedAt:        t.IssuedAt,
		ExpiresAt:       t.ExpiresAt,
	}
}
