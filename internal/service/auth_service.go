package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util"
)

// One message for every credential failure so callers cannot probe
// which emails are registered.
const msgBadCredentials = "email or password incorrect"

const msgBadRefreshToken = "invalid refresh token"

// AuthResult bundles the issued token pair with the public user
// projection. Register and login return the identical shape.
type AuthResult struct {
	User   domain.UserProfile
	Tokens *auth.TokenPair
}

// AuthService coordinates registration, login, refresh rotation and
// session validation.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	issuer     *auth.TokenIssuer
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		issuer:     auth.NewTokenIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTokenTTL(), cfg.RefreshTokenTTL()),
		bcryptCost: cfg.BcryptCost,
		resetTTL:   time.Duration(cfg.PasswordResetTTLMinutes) * time.Minute,
	}
}

// Register creates a new account and opens its first session. The email
// is the login identifier and must be unique after lower-casing.
func (s *AuthService) Register(ctx context.Context, email, password, fullName string, role domain.Role) (*AuthResult, error) {
	email = normalizeEmail(email)

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	if fullName == "" {
		fullName = localPart(email)
	}
	if role == "" {
		role = domain.RoleVolunteer
	}

	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index is the backstop for a concurrent registration
		// slipping past the existence check above.
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login authenticates by email and password. A missing user, disabled
// account, and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized(msgBadCredentials)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized(msgBadCredentials)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized(msgBadCredentials)
	}

	return s.openSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a brand-new pair. The
// stored token is swapped atomically: once rotated, the presented token
// is permanently unusable, even before its embedded expiry.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized(msgBadRefreshToken)
	}

	pair, err := s.issuer.IssuePair(claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return nil, err
	}

	err = s.users.RotateRefreshToken(ctx, claims.UserID, refreshToken, pair.RefreshToken, pair.RefreshExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			// Superseded, logged out, deleted, or deactivated; all collapse
			// to the same answer.
			return nil, apperrors.NewUnauthorized(msgBadRefreshToken)
		}
		return nil, err
	}
	return pair, nil
}

// Logout clears the stored refresh token. Calling it for an already
// logged-out user is not an error.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// ValidateUser loads the minimal projection for a token subject. Token
// validity alone is insufficient: the row is consulted so a deactivated
// or deleted account is rejected immediately.
func (s *AuthService) ValidateUser(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	profile := user.Profile()
	return &profile, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// RequestPasswordReset persists a reset token for the account email.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// ConfirmPasswordReset validates the reset token, updates the password
// and kills the active session.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("reset token invalid")
		}
		return err
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("reset token expired or used")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	if err := s.users.ClearRefreshToken(ctx, user.ID); err != nil {
		return err
	}
	return s.resets.MarkUsed(ctx, token.ID)
}

// TokenIssuer exposes the underlying issuer for middleware wiring.
func (s *AuthService) TokenIssuer() *auth.TokenIssuer {
	return s.issuer
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	pair, err := s.issuer.IssuePair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}
	return &AuthResult{User: user.Profile(), Tokens: pair}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
