package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"loginportal/internal/models"
	"loginportal/internal/repository"
)

var ( // Define custom errors
	ErrMissingFields      = errors.New("missing required fields")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStoreUnavailable   = errors.New("database unavailable")
)

type AuthService interface {
	Register(ctx context.Context, username, email, password, confirm string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

type authService struct {
	db     *sqlx.DB
	users  repository.UserRepository
	logger *zap.Logger
}

func NewAuthService(db *sqlx.DB, users repository.UserRepository, logger *zap.Logger) AuthService {
	return &authService{
		db:     db,
		users:  users,
		logger: logger,
	}
}

// Register validates the signup form, checks for an existing account and
// inserts the new user. The duplicate check and the insert run in one
// transaction on a dedicated connection; the unique constraints on username
// and email back the check up under concurrent registration.
func (s *authService) Register(ctx context.Context, username, email, password, confirm string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, ErrMissingFields
	}
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	conn, err := s.db.Connx(ctx)
	if err != nil {
		s.logger.Error("Failed to acquire database connection", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // No-op once committed
	}()

	exists, err := s.users.ExistsByEmailOrUsername(ctx, tx, email, username)
	if err != nil {
		s.logger.Error("Failed to check existing users", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	if err := s.users.CreateUser(ctx, tx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent registration won the race; same outcome as the check.
			return nil, ErrUserAlreadyExists
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("User registered", zap.String("username", user.Username))
	return user, nil
}

// Authenticate verifies the email/password pair. An unknown email and a
// wrong password both yield ErrInvalidCredentials so the response does not
// leak which field was wrong.
func (s *authService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	conn, err := s.db.Connx(ctx)
	if err != nil {
		s.logger.Error("Failed to acquire database connection", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer conn.Close()

	user, err := s.users.GetUserByEmail(ctx, conn, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("User logged in successfully.", zap.String("username", user.Username))
	return user, nil
}
