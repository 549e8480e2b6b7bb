package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"loginportal/internal/models"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("duplicate username or email")
)

// Querier is the subset of sqlx execution methods the repository needs.
// *sqlx.DB, *sqlx.Conn and *sqlx.Tx all satisfy it, so the same queries run
// on the pool, on a dedicated connection, or inside a transaction.
type Querier interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type UserRepository interface {
	ExistsByEmailOrUsername(ctx context.Context, q Querier, email, username string) (bool, error)
	CreateUser(ctx context.Context, q Querier, user *models.User) error
	GetUserByEmail(ctx context.Context, q Querier, email string) (*models.User, error)
}

type userRepository struct {
	log *zap.Logger
}

func NewUserRepository(log *zap.Logger) UserRepository {
	return &userRepository{log: log}
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, q Querier, email, username string) (bool, error) {
	var id int64
	query := `SELECT id FROM users WHERE email = $1 OR username = $2`
	err := q.GetContext(ctx, &id, query, email, username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return true, nil
}

func (r *userRepository) CreateUser(ctx context.Context, q Querier, user *models.User) error {
	query := `INSERT INTO users (username, email, password_hash) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := q.QueryRowxContext(ctx, query, user.Username, user.Email, user.PasswordHash).StructScan(user)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, q Querier, email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, email, password_hash, created_at FROM users WHERE email = $1`
	err := q.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

// isUniqueViolation reports whether err is the Postgres unique_violation
// error raised by the constraints on users.username and users.email.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
