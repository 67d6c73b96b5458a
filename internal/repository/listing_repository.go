package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rental-service/internal/domain"
)

type listingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository instantiates the Postgres repository.
func NewListingRepository(pool *pgxpool.Pool) ListingRepository {
	return &listingRepository{pool: pool}
}

const listingColumns = `id, title, description, location, price, images, host_id, created_at, updated_at`

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	const query = `
        INSERT INTO listings (id, title, description, location, price, images, host_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING created_at, updated_at`
	if listing.ID == "" {
		listing.ID = uuid.NewString()
	}
	if listing.Images == nil {
		listing.Images = []string{}
	}
	return translatePgError(r.pool.QueryRow(ctx, query,
		listing.ID,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.Price,
		listing.Images,
		listing.HostID,
	).Scan(&listing.CreatedAt, &listing.UpdatedAt))
}

// Update never touches host_id.
func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	const query = `
        UPDATE listings SET title=$1, description=$2, location=$3, price=$4, images=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	if listing.Images == nil {
		listing.Images = []string{}
	}
	return translatePgError(r.pool.QueryRow(ctx, query,
		listing.Title,
		listing.Description,
		listing.Location,
		listing.Price,
		listing.Images,
		listing.ID,
	).Scan(&listing.UpdatedAt))
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.pool.QueryRow(ctx, `SELECT `+listingColumns+` FROM listings WHERE id=$1`, id).Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.Location,
		&listing.Price,
		&listing.Images,
		&listing.HostID,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, translatePgError(err)
	}
	return &listing, nil
}

func (r *listingRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Listing, error) {
	ids = uniqueIDs(ids)
	result := make(map[string]*domain.Listing, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+listingColumns+` FROM listings WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	listings, err := scanListings(rows)
	if err != nil {
		return nil, err
	}
	for i := range listings {
		result[listings[i].ID] = &listings[i]
	}
	return result, nil
}

func (r *listingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.HostID != nil {
		args = append(args, *filter.HostID)
		clauses = append(clauses, fmt.Sprintf("host_id=$%d", len(args)))
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		args = append(args, "%"+escapeLike(strings.TrimSpace(*filter.Location))+"%")
		clauses = append(clauses, fmt.Sprintf("location ILIKE $%d", len(args)))
	}
	if filter.MinPrice != nil {
		args = append(args, *filter.MinPrice)
		clauses = append(clauses, fmt.Sprintf("price >= $%d", len(args)))
	}
	if filter.MaxPrice != nil {
		args = append(args, *filter.MaxPrice)
		clauses = append(clauses, fmt.Sprintf("price <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY created_at DESC`,
		listingColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanListings(rows)
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	var result []domain.Listing
	for rows.Next() {
		var listing domain.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.Title,
			&listing.Description,
			&listing.Location,
			&listing.Price,
			&listing.Images,
			&listing.HostID,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
