package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/core/apperror"
	appctx "stockbook/internal/core/context"
	"stockbook/internal/core/id"
	"stockbook/internal/core/tx"
	"stockbook/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts   int
	LockDuration       time.Duration
	PasswordMinLength  int
	RefreshTokenExpiry time.Duration
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:   5,
		LockDuration:       15 * time.Minute,
		PasswordMinLength:  8,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

// Service provides authentication logic.
type Service struct {
	users     UserRepository
	tokens    TokenRepository
	txManager tx.Manager
	jwt       *JWTService
	config    ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	users UserRepository,
	tokens TokenRepository,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		users:     users,
		tokens:    tokens,
		txManager: txManager,
		jwt:       jwtService,
		config:    config,
	}
}

// Register creates a new user account. The role defaults to operator.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if req.Username == "" {
		return nil, apperror.NewValidation("username is required").WithDetail("field", "username")
	}
	if len(req.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	role := req.Role
	if role == "" {
		role = appctx.RoleOperator
	}
	if !ValidRole(role) {
		return nil, apperror.NewValidation("unknown role").WithDetail("field", "role").WithDetail("role", role)
	}

	exists, err := s.users.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("check username exists: %w", err)
	}
	if exists {
		return nil, apperror.NewConflict("username already taken").WithDetail("username", req.Username)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Username, string(passwordHash), role)
	user.DisplayName = req.DisplayName

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role)

	return user, nil
}

// Login authenticates the user and returns a token pair.
func (s *Service) Login(ctx context.Context, creds Credentials) (*TokenPair, *User, error) {
	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}
	if err := user.CanLogin(); err != nil {
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.users.Update(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record login attempt", "username", creds.Username, "error", uerr)
		}
		return nil, nil, apperror.NewUnauthorized("invalid credentials")
	}

	tokens, err := s.generateTokenPair(ctx, user, creds.UserAgent, creds.IPAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	user.RecordSuccessfulLogin()
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record successful login", "username", creds.Username, "error", err)
	}

	logger.Info(ctx, "user logged in",
		"user_id", user.ID,
		"username", user.Username)

	return tokens, user, nil
}

// Refresh exchanges a refresh token for a new token pair. The old refresh
// token is revoked, so each token can be used once.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	tokenHash := hashToken(refreshToken)

	token, err := s.tokens.GetRefreshToken(ctx, tokenHash)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if !token.IsValid() {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("user not found")
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeRefreshToken(ctx, token.ID, "rotated"); err != nil {
		logger.Warn(ctx, "failed to revoke rotated token", "token_id", token.ID, "error", err)
	}

	return s.generateTokenPair(ctx, user, token.UserAgent, token.IPAddress)
}

// Logout revokes all of the user's refresh tokens.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokens.RevokeAllUserTokens(ctx, userID, "logout")
}

// ChangePassword verifies the current password, stores a new hash and
// invalidates every open session.
func (s *Service) ChangePassword(ctx context.Context, userID id.ID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperror.NewNotFound("user", userID.String())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperror.NewValidation("current password is incorrect").WithDetail("field", "currentPassword")
	}
	if len(next) < s.config.PasswordMinLength {
		return apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "newPassword")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(passwordHash)
	user.UpdatedAt = time.Now()

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.RevokeAllUserTokens(ctx, userID, "password_changed"); err != nil {
		logger.Warn(ctx, "failed to revoke sessions after password change", "user_id", userID, "error", err)
	}

	logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// SetActive enables or disables an account. Disabling also revokes every
// refresh token so the account is logged out immediately.
func (s *Service) SetActive(ctx context.Context, userID id.ID, active bool) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}

	user.Active = active
	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if !active {
		if err := s.tokens.RevokeAllUserTokens(ctx, userID, "deactivated"); err != nil {
			logger.Warn(ctx, "failed to revoke tokens for deactivated user", "user_id", userID, "error", err)
		}
	}

	logger.Info(ctx, "user active flag changed", "user_id", userID, "active", active)
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(ctx context.Context, userID id.ID) (*User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return user, nil
}

// ListUsers lists users with filtering.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]User, int, error) {
	return s.users.List(ctx, filter)
}

// CleanupExpiredTokens removes stale refresh tokens, returning the count.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int, error) {
	return s.tokens.CleanupExpiredTokens(ctx)
}

// generateTokenPair creates an access token and a stored refresh token.
func (s *Service) generateTokenPair(ctx context.Context, user *User, userAgent, ip string) (*TokenPair, error) {
	accessToken, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshTokenRaw, err := generateRandomToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshToken := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(refreshTokenRaw),
		ExpiresAt: time.Now().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now(),
		UserAgent: userAgent,
		IPAddress: ip,
	}

	if err := s.tokens.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenRaw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

// hashToken creates the SHA256 hash stored in place of the raw token.
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// generateRandomToken generates a random token string.
func generateRandomToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
