package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cremfish/storefront/internal/models"
	"github.com/cremfish/storefront/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrDuplicateUsername is returned when the unique constraint on
// users.username fires during registration.
var ErrDuplicateUsername = errors.New("username already exists")

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (id, username, password, name, email, admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, user.ID, user.Username, user.Password, user.Name, user.Email, user.Admin).
		Scan(&user.CreatedAt, &user.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrDuplicateUsername
	}

	return err
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user := &models.User{}

	query := `
		SELECT id, username, password, name, email, admin, created_at, updated_at
		FROM users
		WHERE username = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, username).
		Scan(&user.ID, &user.Username, &user.Password, &user.Name, &user.Email, &user.Admin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	user := &models.User{}

	query := `
		SELECT id, username, name, email, admin, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&user.ID, &user.Username, &user.Name, &user.Email, &user.Admin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}
