package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"rtd-driverpass/internal/adapters/persistence/models"
	"rtd-driverpass/internal/adapters/persistence/repositories"
	"rtd-driverpass/internal/config"
	"rtd-driverpass/internal/core/domain"
	"rtd-driverpass/internal/pkg/jwt"
	"rtd-driverpass/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrUserNotFound       = domain.ErrUserNotFound
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrAccountLocked      = domain.ErrAccountLocked
	ErrUsernameTaken      = domain.ErrUsernameTaken
	ErrInvalidRole        = domain.ErrInvalidRole
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrMissingFields      = errors.New("username and password are required")
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	now              func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cfg:              cfg,
		now:              time.Now,
	}
}

// NormalizeUsername maps a handle to its canonical stored form. Uniqueness
// is case-insensitive because everything is stored uppercase.
func NormalizeUsername(username string) string {
	return strings.ToUpper(strings.TrimSpace(username))
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register registers a new driver account. Only drivers self-register;
// station and officer accounts go through Provision.
func (s *AuthService) Register(ctx context.Context, username, plainPassword string) (*models.UserResponse, error) {
	username = NormalizeUsername(username)
	if username == "" || plainPassword == "" {
		return nil, ErrMissingFields
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hashed, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: hashed,
		Role:     string(domain.RoleDriver),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Driver registered: %s", user.Username)
	return user.ToResponse(), nil
}

// Provision creates a station or officer account on behalf of an admin.
func (s *AuthService) Provision(ctx context.Context, username, plainPassword string, role domain.Role, createdBy string) (*models.UserResponse, error) {
	username = NormalizeUsername(username)
	if username == "" || plainPassword == "" {
		return nil, ErrMissingFields
	}
	if !role.Provisionable() {
		return nil, ErrInvalidRole
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUsernameTaken
	}

	hashed, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  username,
		Password:  hashed,
		Role:      string(role),
		CreatedBy: &createdBy,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ %s account provisioned: %s (by %s)", role, user.Username, createdBy)
	return user.ToResponse(), nil
}

// Login authenticates a user and issues a token pair.
//
// Lockout runs as a small state machine on the user record: five
// consecutive failures lock the account for the configured window, and the
// lock check happens before any bcrypt comparison so a locked account
// never burns hash time.
func (s *AuthService) Login(ctx context.Context, username, plainPassword string) (*AuthResponse, error) {
	username = NormalizeUsername(username)
	if username == "" || plainPassword == "" {
		return nil, ErrMissingFields
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := s.now()
	if user.IsLocked(now) {
		return nil, ErrAccountLocked
	}

	if !password.Verify(plainPassword, user.Password) {
		user.FailedLogins++
		if user.FailedLogins >= s.cfg.Lockout.MaxAttempts {
			lockedUntil := now.Add(time.Duration(s.cfg.Lockout.WindowSecs) * time.Second)
			user.LockedUntil = &lockedUntil
			user.FailedLogins = 0
			log.Printf("⚠️ Account locked until %s: %s", lockedUntil.Format(time.RFC3339), user.Username)
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		return nil, ErrInvalidCredentials
	}

	// Successful login resets the failure counter and clears any stale lock
	user.FailedLogins = 0
	user.LockedUntil = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	log.Printf("✅ User logged in: %s [%s]", user.Username, user.Role)

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// RefreshToken refreshes the access token using refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	tokenHash := password.HashToken(refreshToken)

	storedToken, err := s.refreshTokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// Token rotation: old refresh token dies with each refresh
	if err := s.refreshTokenRepo.Revoke(ctx, storedToken.ID); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.storeRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	tokenHash := password.HashToken(refreshToken)
	if err := s.refreshTokenRepo.RevokeByTokenHash(ctx, tokenHash); err != nil {
		return err
	}
	log.Printf("✅ User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.refreshTokenRepo.RevokeAllByUserID(ctx, userID)
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListProvisioned lists station and officer accounts for the admin screen
func (s *AuthService) ListProvisioned(ctx context.Context) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListByRoles(ctx, string(domain.RoleStation), string(domain.RoleOfficer))
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}
	return responses, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTokenMins,
	)
	if err != nil {
		return nil, err
	}

	tokenID := uuid.New().String()

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		tokenID,
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTokenDays,
	)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// storeRefreshToken stores a refresh token in the database
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uint, refreshToken string) error {
	token := &models.RefreshToken{
		UserID:    userID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.JWT.RefreshTokenDays),
	}

	return s.refreshTokenRepo.Create(ctx, token)
}
