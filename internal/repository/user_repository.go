package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sphere-events/sphere/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	GetByBearerToken(ctx context.Context, token string) (*models.User, error)
	UpdateSession(ctx context.Context, id uuid.UUID, bearerToken, walletAddress string) error
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

type userRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, log zerolog.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log,
	}
}

const userColumns = `id, external_id, email, name, role, rift_user_id, bearer_token, wallet_address, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.RiftUserID,
		&user.BearerToken,
		&user.WalletAddress,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user mirror record
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, external_id, email, name, role, rift_user_id, bearer_token, wallet_address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.ExternalID,
		user.Email,
		user.Name,
		user.Role,
		user.RiftUserID,
		user.BearerToken,
		user.WalletAddress,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserAlreadyExists
		}
		r.log.Error().Err(err).Str("external_id", user.ExternalID).Msg("Failed to create user")
		return err
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.Error().Err(err).Str("user_id", id.String()).Msg("Failed to get user by ID")
		return nil, err
	}

	return user, nil
}

// GetByExternalID retrieves a user by their login identifier
func (r *userRepository) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.Error().Err(err).Str("external_id", externalID).Msg("Failed to get user by external ID")
		return nil, err
	}

	return user, nil
}

// GetByBearerToken resolves a bearer credential to the user that holds it.
// Token validity is delegated to the identity provider; this is a pure lookup.
func (r *userRepository) GetByBearerToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE bearer_token = $1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.Error().Err(err).Msg("Failed to get user by bearer token")
		return nil, err
	}

	return user, nil
}

// UpdateSession overwrites the stored credential and wallet address.
// Last write wins; login refreshes both on every call.
func (r *userRepository) UpdateSession(ctx context.Context, id uuid.UUID, bearerToken, walletAddress string) error {
	query := `UPDATE users SET bearer_token = $1, wallet_address = $2 WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, bearerToken, walletAddress, id)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", id.String()).Msg("Failed to update user session")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// UpdateRole changes a user's role
func (r *userRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	query := `UPDATE users SET role = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, role, id)
	if err != nil {
		r.log.Error().Err(err).Str("user_id", id.String()).Msg("Failed to update user role")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// isUniqueViolation reports whether err is a sqlite UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
