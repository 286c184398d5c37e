package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/travel-desk/itinerary-service/internal/domain"
)

// ItineraryRepository encapsulates itinerary persistence. Every read and
// write is scoped to the owning identity; a foreign row behaves as missing.
type ItineraryRepository interface {
	Create(ctx context.Context, itinerary *domain.Itinerary) error
	Update(ctx context.Context, itinerary *domain.Itinerary) error
	GetForOwner(ctx context.Context, id, ownerID int64) (*domain.Itinerary, error)
	LockForOwner(ctx context.Context, id, ownerID int64) (*domain.Itinerary, error)
	ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Itinerary, int, error)
	DeleteForOwner(ctx context.Context, id, ownerID int64) error
}

type itineraryRepository struct {
	db DBTX
}

// NewItineraryRepository instantiates repository.
func NewItineraryRepository(db DBTX) ItineraryRepository {
	return &itineraryRepository{db: db}
}

const itineraryColumns = `id, user_id, from_city, to_city, start_date, end_date, status, type, mode,
               purpose, request_date, created_at, updated_at`

func (r *itineraryRepository) Create(ctx context.Context, itinerary *domain.Itinerary) error {
	const query = `
        INSERT INTO itineraries (user_id, from_city, to_city, start_date, end_date, status, type, mode, purpose, request_date)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		itinerary.UserID,
		itinerary.FromCity,
		itinerary.ToCity,
		itinerary.StartDate,
		itinerary.EndDate,
		itinerary.Status,
		itinerary.Type,
		itinerary.Mode,
		itinerary.Purpose,
		itinerary.RequestDate,
	).Scan(&itinerary.ID, &itinerary.CreatedAt, &itinerary.UpdatedAt)
}

// Update persists mutable fields. user_id and request_date are never rewritten.
func (r *itineraryRepository) Update(ctx context.Context, itinerary *domain.Itinerary) error {
	const query = `
        UPDATE itineraries SET from_city=$1, to_city=$2, start_date=$3, end_date=$4,
            status=$5, type=$6, mode=$7, purpose=$8, updated_at=NOW()
        WHERE id=$9 AND user_id=$10
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		itinerary.FromCity,
		itinerary.ToCity,
		itinerary.StartDate,
		itinerary.EndDate,
		itinerary.Status,
		itinerary.Type,
		itinerary.Mode,
		itinerary.Purpose,
		itinerary.ID,
		itinerary.UserID,
	).Scan(&itinerary.UpdatedAt)
}

func (r *itineraryRepository) GetForOwner(ctx context.Context, id, ownerID int64) (*domain.Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id=$1 AND user_id=$2`
	return scanItinerary(r.db.QueryRow(ctx, query, id, ownerID))
}

// LockForOwner is GetForOwner with a row lock; call it inside a transaction.
func (r *itineraryRepository) LockForOwner(ctx context.Context, id, ownerID int64) (*domain.Itinerary, error) {
	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE id=$1 AND user_id=$2 FOR UPDATE`
	return scanItinerary(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *itineraryRepository) ListByOwner(ctx context.Context, ownerID int64, limit, offset int) ([]domain.Itinerary, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM itineraries WHERE user_id=$1`, ownerID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + itineraryColumns + ` FROM itineraries WHERE user_id=$1
             ORDER BY request_date DESC, created_at DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Itinerary
	for rows.Next() {
		itinerary, err := scanItinerary(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *itinerary)
	}
	return result, total, rows.Err()
}

func (r *itineraryRepository) DeleteForOwner(ctx context.Context, id, ownerID int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM itineraries WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanItinerary(row pgx.Row) (*domain.Itinerary, error) {
	var itinerary domain.Itinerary
	if err := row.Scan(
		&itinerary.ID,
		&itinerary.UserID,
		&itinerary.FromCity,
		&itinerary.ToCity,
		&itinerary.StartDate,
		&itinerary.EndDate,
		&itinerary.Status,
		&itinerary.Type,
		&itinerary.Mode,
		&itinerary.Purpose,
		&itinerary.RequestDate,
		&itinerary.CreatedAt,
		&itinerary.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &itinerary, nil
}
