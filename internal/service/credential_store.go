package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pdfchat-be/internal/entity"
	"pdfchat-be/internal/pkg/apperror"
	"pdfchat-be/internal/pkg/logger"
	"pdfchat-be/internal/repository/specification"
	"pdfchat-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ICredentialStore owns user records and the password hashes behind them.
// Plaintext passwords never leave this boundary and are never logged.
type ICredentialStore interface {
	CreateUser(ctx context.Context, email, password string) (*entity.User, error)
	Verify(ctx context.Context, email, password string) (*entity.User, error)
	RotatePassword(ctx context.Context, userId uuid.UUID, currentPassword, newPassword string) error
}

type credentialStore struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
	now        func() time.Time
}

func NewCredentialStore(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ICredentialStore {
	return &credentialStore{
		uowFactory: uowFactory,
		log:        log,
		now:        time.Now,
	}
}

// NormalizeEmail lowercases and trims so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *credentialStore) CreateUser(ctx context.Context, email, password string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	email = NormalizeEmail(email)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, apperror.Unavailable("looking up user by email", err)
	}
	if existing != nil {
		return nil, apperror.New(apperror.CodeDuplicateEmail, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &entity.User{
		Id:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// Concurrent registration of the same email loses the race at the
		// unique index instead of the existence check above
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.New(apperror.CodeDuplicateEmail, "email already registered")
		}
		return nil, apperror.Unavailable("creating user", err)
	}

	s.log.Info("credentials", "user registered", map[string]interface{}{
		"user_id": user.Id.String(),
	})

	return user, nil
}

func (s *credentialStore) Verify(ctx context.Context, email, password string) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: NormalizeEmail(email)})
	if err != nil {
		return nil, apperror.Unavailable("looking up user by email", err)
	}
	// Unknown email and wrong password report the same failure
	if user == nil {
		return nil, apperror.New(apperror.CodeInvalidCredentials, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.New(apperror.CodeInvalidCredentials, "invalid credentials")
	}

	return user, nil
}

func (s *credentialStore) RotatePassword(ctx context.Context, userId uuid.UUID, currentPassword, newPassword string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return apperror.Unavailable("looking up user", err)
	}
	if user == nil {
		return apperror.New(apperror.CodeNotFound, "user not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperror.New(apperror.CodeInvalidCredentials, "invalid credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := uow.UserRepository().UpdatePassword(ctx, userId, string(hash)); err != nil {
		return apperror.Unavailable("rotating password", err)
	}

	s.log.Info("credentials", "password rotated", map[string]interface{}{
		"user_id": userId.String(),
	})

	return nil
}
