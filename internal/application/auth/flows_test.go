package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

type authFixture struct {
	users    *fakeUsers
	store    *fakeTokenStore
	issuer   *fakeIssuer
	register *Register
	login    *Login
	refresh  *Refresh
	logout   *Logout
	oauth    *OAuthCallback
	generate *GenerateTokens
}

func newAuthFixture() *authFixture {
	store := newFakeTokenStore()
	users := newFakeUsers(store)
	issuer := &fakeIssuer{store: store}
	generate := NewGenerateTokens(issuer, store)
	register := NewRegister(users, fakeHasher{}, issuer)
	return &authFixture{
		users:    users,
		store:    store,
		issuer:   issuer,
		register: register,
		login:    NewLogin(users, fakeHasher{}, generate),
		refresh:  NewRefresh(issuer, users, generate),
		logout:   NewLogout(store),
		oauth:    NewOAuthCallback(users, register, generate),
		generate: generate,
	}
}

func (f *authFixture) registerUser(t *testing.T, email, password string) *RegisterResult {
	t.Helper()
	result, err := f.register.Execute(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return result
}

func TestLoginIssuesFreshPair(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")

	result, err := f.login.Execute(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, result.User.ID)
	assert.NotEqual(t, reg.Tokens.RefreshToken, result.Tokens.RefreshToken)

	row, err := f.store.GetByUserID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Tokens.RefreshToken, row.Token)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	_, err := f.login.Execute(context.Background(), LoginInput{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, domerrors.ErrUserNotFound)
}

func TestLoginWrongPasswordLeavesTokenUntouched(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")

	_, err := f.login.Execute(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "wrong password",
	})
	assert.ErrorIs(t, err, domerrors.ErrInvalidCredentials)

	row, err := f.store.GetByUserID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.Tokens.RefreshToken, row.Token)
}

func TestLoginWithOAuthOnlyAccountFails(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	_, err := f.register.Execute(context.Background(), RegisterInput{
		Email:    "oauth@example.com",
		AuthType: domain.AuthTypeGoogle,
	})
	require.NoError(t, err)

	_, err = f.login.Execute(context.Background(), LoginInput{
		Email:    "oauth@example.com",
		Password: "",
	})
	assert.ErrorIs(t, err, domerrors.ErrInvalidCredentials)
}

func TestRefreshRotatesAndReplayFails(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")

	pair, err := f.refresh.Execute(context.Background(), RefreshInput{RefreshToken: reg.Tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Tokens.RefreshToken, pair.RefreshToken)

	// The presented value was overwritten; replaying it must fail.
	_, err = f.refresh.Execute(context.Background(), RefreshInput{RefreshToken: reg.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)

	// The rotated value is good for exactly one more exchange.
	_, err = f.refresh.Execute(context.Background(), RefreshInput{RefreshToken: pair.RefreshToken})
	assert.NoError(t, err)
}

func TestRefreshEmptyToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	_, err := f.refresh.Execute(context.Background(), RefreshInput{})
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)
}

// Two refreshes racing on the same token can both pass validation before
// either rotates. The conditional exchange lets exactly one of them commit.
func TestRefreshInterleavedRequestsSingleWinner(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")
	presented := reg.Tokens.RefreshToken
	ctx := context.Background()

	idA, err := f.issuer.ValidateRefreshToken(ctx, presented)
	require.NoError(t, err)
	idB, err := f.issuer.ValidateRefreshToken(ctx, presented)
	require.NoError(t, err)

	winner, err := f.generate.Exchange(ctx, idA, domain.RoleUser, presented)
	require.NoError(t, err)

	_, err = f.generate.Exchange(ctx, idB, domain.RoleUser, presented)
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)

	// The winner's token stays usable through the normal flow.
	next, err := f.refresh.Execute(ctx, RefreshInput{RefreshToken: winner.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, winner.RefreshToken, next.RefreshToken)
}

func TestRefreshAfterUserDeleted(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")
	delete(f.users.byID, reg.User.ID)

	_, err := f.refresh.Execute(context.Background(), RefreshInput{RefreshToken: reg.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domerrors.ErrUserNotFound)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")

	require.NoError(t, f.logout.Execute(context.Background(), reg.User.ID))

	_, err := f.refresh.Execute(context.Background(), RefreshInput{RefreshToken: reg.Tokens.RefreshToken})
	assert.ErrorIs(t, err, domerrors.ErrInvalidToken)

	// Logging out twice is fine; the row still exists.
	assert.NoError(t, f.logout.Execute(context.Background(), reg.User.ID))
}

func TestLogoutWithoutTokenRow(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	err := f.logout.Execute(context.Background(), domain.NewUserID())
	assert.ErrorIs(t, err, domerrors.ErrTokenNotFound)
}

func TestReloginAfterLogoutClearsRevocation(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")
	require.NoError(t, f.logout.Execute(context.Background(), reg.User.ID))

	result, err := f.login.Execute(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "correct horse",
	})
	require.NoError(t, err)

	_, err = f.refresh.Execute(context.Background(), RefreshInput{RefreshToken: result.Tokens.RefreshToken})
	assert.NoError(t, err)
}

func TestGenerateTokensPreservesRowIdentity(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")

	before, err := f.store.GetByUserID(context.Background(), reg.User.ID)
	require.NoError(t, err)

	_, err = f.generate.Execute(context.Background(), reg.User.ID, domain.RoleUser)
	require.NoError(t, err)

	after, err := f.store.GetByUserID(context.Background(), reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.NotEqual(t, before.Token, after.Token)
	assert.False(t, after.IsRevoked)
}

func TestOAuthCallbackExistingEmailLogsIn(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	reg := f.registerUser(t, "alice@example.com", "correct horse")

	result, err := f.oauth.Execute(context.Background(), OAuthUser{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, OAuthModeLogin, result.Mode)
	assert.Equal(t, reg.User.ID, result.User.ID)
}

func TestOAuthCallbackNewEmailRegisters(t *testing.T) {
	t.Parallel()

	f := newAuthFixture()
	result, err := f.oauth.Execute(context.Background(), OAuthUser{
		Email:     "new@example.com",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	assert.Equal(t, OAuthModeRegistration, result.Mode)
	assert.Equal(t, domain.AuthTypeGoogle, result.User.AuthType)
	assert.Empty(t, result.User.PasswordHash)
	assert.Equal(t, "New", result.User.FirstName)
}
