package unitofwork

import (
	"context"

	"pdfchat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	AuthTokenRepository() contract.AuthTokenRepository
	SessionRepository() contract.SessionRepository
	DocumentRepository() contract.DocumentRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}
