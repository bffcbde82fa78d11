package service

import (
	"context"
	"testing"

	"pdfchat-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestCredentialStore(t *testing.T) (*credentialStore, *memFactory) {
	t.Helper()
	factory := newMemFactory()
	store := NewCredentialStore(factory, nopLogger{}).(*credentialStore)
	return store, factory
}

func TestCreateUserHashesPassword(t *testing.T) {
	store, factory := newTestCredentialStore(t)

	user, err := store.CreateUser(context.Background(), "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	stored := factory.store.users[user.Id]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.PasswordHash, "hunter2")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")))
}

func TestCreateUserNormalizesEmail(t *testing.T) {
	store, _ := newTestCredentialStore(t)

	user, err := store.CreateUser(context.Background(), "  Bob@Example.COM ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)

	// The same address in a different case is a duplicate
	_, err = store.CreateUser(context.Background(), "BOB@example.com", "another-pass")
	assert.True(t, apperror.IsCode(err, apperror.CodeDuplicateEmail))
}

func TestVerifyMatchesCaseInsensitive(t *testing.T) {
	store, _ := newTestCredentialStore(t)

	_, err := store.CreateUser(context.Background(), "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	user, err := store.Verify(context.Background(), "BOB@Example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
}

func TestRotatePassword(t *testing.T) {
	store, _ := newTestCredentialStore(t)

	user, err := store.CreateUser(context.Background(), "bob@example.com", "old-password")
	require.NoError(t, err)

	err = store.RotatePassword(context.Background(), user.Id, "wrong", "new-password")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidCredentials))

	require.NoError(t, store.RotatePassword(context.Background(), user.Id, "old-password", "new-password"))

	_, err = store.Verify(context.Background(), "bob@example.com", "old-password")
	assert.True(t, apperror.IsCode(err, apperror.CodeInvalidCredentials))
	_, err = store.Verify(context.Background(), "bob@example.com", "new-password")
	assert.NoError(t, err)
}

func TestRotatePasswordUnknownUser(t *testing.T) {
	store, _ := newTestCredentialStore(t)

	err := store.RotatePassword(context.Background(), uuid.New(), "a", "b")
	assert.True(t, apperror.IsCode(err, apperror.CodeNotFound))
}
