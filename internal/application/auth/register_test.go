package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

func newRegisterFixture() (*Register, *fakeUsers, *fakeTokenStore) {
	store := newFakeTokenStore()
	users := newFakeUsers(store)
	issuer := &fakeIssuer{store: store}
	return NewRegister(users, fakeHasher{}, issuer), users, store
}

func TestRegisterCreatesUserWithTokens(t *testing.T) {
	t.Parallel()

	register, users, store := newRegisterFixture()

	result, err := register.Execute(context.Background(), RegisterInput{
		Email:     "alice@example.com",
		Password:  "correct horse",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)

	assert.Equal(t, domain.RoleUser, result.User.Role)
	assert.Equal(t, domain.AuthTypeLogin, result.User.AuthType)
	assert.Equal(t, "hashed:correct horse", result.User.PasswordHash)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	stored, err := users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, result.User.ID, stored.ID)

	row, err := store.GetByUserID(context.Background(), result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, result.Tokens.RefreshToken, row.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	register, _, _ := newRegisterFixture()
	input := RegisterInput{Email: "bob@example.com", Password: "secret password"}

	_, err := register.Execute(context.Background(), input)
	require.NoError(t, err)

	_, err = register.Execute(context.Background(), input)
	assert.ErrorIs(t, err, domerrors.ErrUserExists)
}

func TestRegisterBlankPasswordSkipsHashing(t *testing.T) {
	t.Parallel()

	register, _, _ := newRegisterFixture()

	result, err := register.Execute(context.Background(), RegisterInput{
		Email:    "oauth@example.com",
		AuthType: domain.AuthTypeGoogle,
	})
	require.NoError(t, err)
	assert.Empty(t, result.User.PasswordHash)
	assert.Equal(t, domain.AuthTypeGoogle, result.User.AuthType)
}
