package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/id"
)

// --- Fakes ---

type fakeUserRepo struct {
	users map[id.ID]User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[id.ID]User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := r.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return &u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", username)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *User) error {
	if _, ok := r.users[user.ID]; !ok {
		return apperror.NewNotFound("user", user.ID.String())
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range r.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

var _ UserRepository = (*fakeUserRepo)(nil)

type fakeTokenRepo struct {
	tokens map[string]RefreshToken // keyed by token hash
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]RefreshToken)}
}

func (r *fakeTokenRepo) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.tokens[token.TokenHash] = *token
	return nil
}

func (r *fakeTokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	t, ok := r.tokens[tokenHash]
	if !ok {
		return nil, apperror.NewNotFound("refresh token", tokenHash)
	}
	return &t, nil
}

func (r *fakeTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	for hash, t := range r.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
			r.tokens[hash] = t
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	for hash, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
			r.tokens[hash] = t
		}
	}
	return nil
}

func (r *fakeTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	n := 0
	for hash, t := range r.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(r.tokens, hash)
			n++
		}
	}
	return n, nil
}

var _ TokenRepository = (*fakeTokenRepo)(nil)

type passTxManager struct{}

func (passTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Fixture ---

type authFixture struct {
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	jwt    *JWTService
	svc    *Service
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	cfg := DefaultServiceConfig()
	cfg.MaxLoginAttempts = 3
	cfg.RefreshTokenExpiry = time.Hour
	return &authFixture{
		users:  users,
		tokens: tokens,
		jwt:    jwtSvc,
		svc:    NewService(users, tokens, passTxManager{}, jwtSvc, cfg),
	}
}

func (f *authFixture) register(t *testing.T, req RegisterRequest) *User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	return user
}

// --- Tests ---

func TestRegisterStoresHashNotPassword(t *testing.T) {
	f := newAuthFixture(t)

	user := f.register(t, RegisterRequest{
		Username:    "petrov",
		Password:    "warehouse-9",
		DisplayName: "Petrov P.",
	})

	assert.NotEqual(t, "warehouse-9", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("warehouse-9")))
	assert.Equal(t, appctx.RoleOperator, user.Role, "role defaults to operator")
	assert.True(t, user.Active)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterRequest{Username: "x", Password: "short"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Register(context.Background(), RegisterRequest{Username: "", Password: "long-enough"})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	_, err = f.svc.Register(context.Background(), RegisterRequest{
		Username: "y", Password: "long-enough", Role: "superuser",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestRegisterRejectsTakenUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	_, err := f.svc.Register(context.Background(), RegisterRequest{Username: "petrov", Password: "different-pw"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestLoginIssuesWorkingTokens(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, RegisterRequest{
		Username:    "ivanova",
		Password:    "warehouse-9",
		DisplayName: "Maria Ivanova",
		Role:        appctx.RoleAdmin,
	})

	pair, user, err := f.svc.Login(context.Background(), Credentials{
		Username:  "ivanova",
		Password:  "warehouse-9",
		UserAgent: "go-test",
		IPAddress: "127.0.0.1",
	})
	require.NoError(t, err)
	require.NotNil(t, pair)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotNil(t, user.LastLoginAt)

	uc, err := f.jwt.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, "ivanova", uc.Username)
	assert.Equal(t, "Maria Ivanova", uc.Name)
	assert.Equal(t, appctx.RoleAdmin, uc.Role)

	// the raw refresh token is never stored, only its hash
	_, rawStored := f.tokens.tokens[pair.RefreshToken]
	assert.False(t, rawStored)
	stored, ok := f.tokens.tokens[hashToken(pair.RefreshToken)]
	require.True(t, ok)
	assert.Equal(t, "go-test", stored.UserAgent)
	assert.Equal(t, "127.0.0.1", stored.IPAddress)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	_, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "nope-nope"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	stored, err := f.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedLogins)
}

func TestLockoutAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	for i := 0; i < 3; i++ {
		_, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "nope-nope"})
		require.Error(t, err)
	}

	// correct password no longer helps while the lock holds
	_, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestLoginDisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	_, err := f.svc.SetActive(context.Background(), u.ID, false)
	require.NoError(t, err)

	_, _, err = f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	pair, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.NoError(t, err)

	next, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// the spent token cannot be exchanged a second time
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	// the rotated token works
	_, err = f.svc.Refresh(context.Background(), next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Refresh(context.Background(), "made-up-token")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogoutRevokesEverySession(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	first, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.NoError(t, err)
	second, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background(), u.ID))

	_, err = f.svc.Refresh(context.Background(), first.RefreshToken)
	assert.Error(t, err)
	_, err = f.svc.Refresh(context.Background(), second.RefreshToken)
	assert.Error(t, err)
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	pair, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.NoError(t, err)

	err = f.svc.ChangePassword(context.Background(), u.ID, "wrong-current", "brand-new-pw")
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, f.svc.ChangePassword(context.Background(), u.ID, "warehouse-9", "brand-new-pw"))

	// old sessions are gone, old password no longer works
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.Error(t, err)
	_, _, err = f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	assert.Error(t, err)
	_, _, err = f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "brand-new-pw"})
	assert.NoError(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, RegisterRequest{Username: "petrov", Password: "warehouse-9"})

	pair, _, err := f.svc.Login(context.Background(), Credentials{Username: "petrov", Password: "warehouse-9"})
	require.NoError(t, err)

	otherJWT := NewJWTService(DefaultJWTConfig("different-secret"))
	_, err = otherJWT.ValidateToken(pair.AccessToken)
	assert.Error(t, err)

	_, err = f.jwt.ValidateToken(pair.AccessToken + "x")
	assert.Error(t, err)
}
