package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/SlavaKuntsov/software-security/internal/application/ports"
	"github.com/SlavaKuntsov/software-security/internal/domain"
	domerrors "github.com/SlavaKuntsov/software-security/internal/domain/errors"
)

type fakeUsers struct {
	byID   map[domain.UserID]*domain.User
	tokens *fakeTokenStore
}

func newFakeUsers(tokens *fakeTokenStore) *fakeUsers {
	return &fakeUsers{byID: make(map[domain.UserID]*domain.User), tokens: tokens}
}

func (f *fakeUsers) CreateWithToken(ctx context.Context, user *domain.User, token *domain.RefreshToken) error {
	cp := *user
	f.byID[user.ID] = &cp
	if f.tokens != nil {
		tcp := *token
		f.tokens.byUser[token.UserID] = &tcp
	}
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) GetIDByEmail(ctx context.Context, email string) (*domain.UserID, error) {
	u, err := f.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, err
	}
	return &u.ID, nil
}

func (f *fakeUsers) GetRoleByID(_ context.Context, id domain.UserID) (*domain.Role, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	role := u.Role
	return &role, nil
}

func (f *fakeUsers) ListByRole(_ context.Context, role domain.Role) ([]domain.UserID, error) {
	var ids []domain.UserID
	for _, u := range f.byID {
		if u.Role == role {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (f *fakeUsers) List(context.Context) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.byID {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, user *domain.User) error {
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id domain.UserID) error {
	delete(f.byID, id)
	if f.tokens != nil {
		delete(f.tokens.byUser, id)
	}
	return nil
}

// fakeTokenStore mimics the one-row-per-user upsert semantics of the
// Postgres repository.
type fakeTokenStore struct {
	byUser map[domain.UserID]*domain.RefreshToken
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{byUser: make(map[domain.UserID]*domain.RefreshToken)}
}

func (f *fakeTokenStore) GetByToken(_ context.Context, token string) (*domain.RefreshToken, error) {
	for _, t := range f.byUser {
		if t.Token == token {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeTokenStore) GetByUserID(_ context.Context, userID domain.UserID) (*domain.RefreshToken, error) {
	t, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenStore) Rotate(_ context.Context, token *domain.RefreshToken) error {
	existing, ok := f.byUser[token.UserID]
	if !ok {
		cp := *token
		f.byUser[token.UserID] = &cp
		return nil
	}
	existing.Token = token.Token
	existing.ExpiresAt = token.ExpiresAt
	existing.IsRevoked = false
	return nil
}

func (f *fakeTokenStore) Exchange(_ context.Context, next *domain.RefreshToken, presented string) error {
	existing, ok := f.byUser[next.UserID]
	if !ok || existing.IsRevoked || existing.Token != presented {
		return domerrors.ErrInvalidToken
	}
	existing.Token = next.Token
	existing.ExpiresAt = next.ExpiresAt
	return nil
}

func (f *fakeTokenStore) Revoke(_ context.Context, userID domain.UserID) error {
	t, ok := f.byUser[userID]
	if !ok {
		return domerrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Verify(password, hash string) bool {
	return hash != "" && hash == "hashed:"+password
}

// fakeIssuer issues deterministic tokens and validates refresh tokens against
// the fake store with the same rules as the real issuer.
type fakeIssuer struct {
	store *fakeTokenStore
	seq   int
}

func (f *fakeIssuer) GenerateAccessToken(id domain.UserID, role domain.Role) (string, error) {
	return fmt.Sprintf("access|%s|%s", id, role), nil
}

func (f *fakeIssuer) GenerateRefreshToken() (string, error) {
	f.seq++
	return fmt.Sprintf("refresh-%d", f.seq), nil
}

func (f *fakeIssuer) ValidateAccessToken(string) (*ports.AccessClaims, error) {
	return nil, domerrors.ErrInvalidToken
}

func (f *fakeIssuer) ValidateRefreshToken(ctx context.Context, token string) (domain.UserID, error) {
	stored, err := f.store.GetByToken(ctx, token)
	if err != nil {
		return domain.UserID{}, err
	}
	if stored == nil || stored.IsRevoked || stored.ExpiresAt.Before(time.Now().UTC()) {
		return domain.UserID{}, domerrors.ErrInvalidToken
	}
	return stored.UserID, nil
}

func (f *fakeIssuer) RefreshTokenTTL() time.Duration { return 30 * 24 * time.Hour }

var (
	_ ports.UsersRepository  = (*fakeUsers)(nil)
	_ ports.TokensRepository = (*fakeTokenStore)(nil)
	_ ports.PasswordHasher   = fakeHasher{}
	_ ports.TokenIssuer      = (*fakeIssuer)(nil)
)
