package repository

import (
	"context"

	"github.com/travel-desk/itinerary-service/internal/domain"
)

// IdentityRepository defines persistence access for accounts.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByID(ctx context.Context, id int64) (*domain.Identity, error)
	GetByUsername(ctx context.Context, username string) (*domain.Identity, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

type identityRepository struct {
	db DBTX
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(db DBTX) IdentityRepository {
	return &identityRepository{db: db}
}

const identityColumns = `id, username, email, password_hash, first_name, last_name, is_active, created_at, updated_at`

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (username, email, password_hash, first_name, last_name, is_active)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		identity.Username,
		identity.Email,
		identity.PasswordHash,
		identity.FirstName,
		identity.LastName,
		identity.IsActive,
	).Scan(&identity.ID, &identity.CreatedAt, &identity.UpdatedAt)
	return mapWriteError(err)
}

func (r *identityRepository) GetByID(ctx context.Context, id int64) (*domain.Identity, error) {
	return r.fetchSingle(ctx, `SELECT `+identityColumns+` FROM identities WHERE id=$1`, id)
}

func (r *identityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.fetchSingle(ctx, `SELECT `+identityColumns+` FROM identities WHERE username=$1`, username)
}

func (r *identityRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *identityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Identity, error) {
	var identity domain.Identity
	if err := r.db.QueryRow(ctx, query, arg).Scan(
		&identity.ID,
		&identity.Username,
		&identity.Email,
		&identity.PasswordHash,
		&identity.FirstName,
		&identity.LastName,
		&identity.IsActive,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &identity, nil
}
