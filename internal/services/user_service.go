package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pitcrewhq/pitcrew/internal/models"
	"github.com/pitcrewhq/pitcrew/pkg/crypto"
	apperrors "github.com/pitcrewhq/pitcrew/pkg/errors"
	"github.com/pitcrewhq/pitcrew/pkg/metrics"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrUserAlreadyRegistered signals a registration attempt for an email that already has credentials.
	ErrUserAlreadyRegistered = apperrors.New("USER_EXISTS", "User already registered", http.StatusBadRequest)
)

// RegisterUserInput describes the fields accepted when registering a user.
type RegisterUserInput struct {
	Email    string
	FullName string
	Password string
}

// UserService manages user rows: lazy get-or-create plus explicit registration.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs a UserService instance.
func NewUserService(db *gorm.DB) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db}, nil
}

// GetOrCreate resolves a user by email, inserting a new row on first sight.
// An existing row is returned untouched: the full name is never updated here.
func (s *UserService) GetOrCreate(ctx context.Context, email, fullName string) (*models.User, error) {
	return getOrCreateUser(ensureContext(ctx), s.db, email, fullName)
}

// getOrCreateUser is the shared lazy-creation primitive. It runs against the
// supplied handle so callers can keep it inside a wider transaction.
func getOrCreateUser(ctx context.Context, db *gorm.DB, email, fullName string) (*models.User, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}

	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}

	user = models.User{
		Email:    email,
		FullName: strings.TrimSpace(fullName),
		IsActive: true,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			// Lost a race against a concurrent insert; the row exists now.
			if findErr := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; findErr == nil {
				return &user, nil
			}
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	return &user, nil
}

// GetByEmail loads a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normaliseEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// GetByID loads a user by identifier.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user service: find user: %w", err)
	}
	return &user, nil
}

// Register attaches credentials to a new or lazily created user.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	email := normaliseEmail(input.Email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user, err := s.GetOrCreate(ctx, email, input.FullName)
	if err != nil {
		return nil, err
	}

	if user.HasCredentials() {
		return nil, ErrUserAlreadyRegistered
	}

	updates := map[string]any{"password_hash": hashed}
	if name := strings.TrimSpace(input.FullName); name != "" && user.FullName == "" {
		updates["full_name"] = name
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("user service: store credentials: %w", err)
	}

	user.Password = hashed
	if name, ok := updates["full_name"].(string); ok {
		user.FullName = name
	}
	return user, nil
}

// Authenticate verifies the supplied credentials and stamps the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx = ensureContext(ctx)

	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.HasCredentials() || !crypto.VerifyPassword(user.Password, password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, apperrors.ErrForbidden
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(user).Update("last_login_at", now).Error; err != nil {
		return nil, fmt.Errorf("user service: stamp login: %w", err)
	}
	user.LastLoginAt = &now

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	return user, nil
}
