package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shelternet/apiserver/types"
)

const shelterColumns = `id, name, street, city, postcode, county, telephone, website, longitude, latitude, animal_ids, administrator_id, created_at, updated_at`

// ShelterRepository handles persistence for shelters.
type ShelterRepository struct {
	db *sql.DB
}

func NewShelterRepository(db *sql.DB) *ShelterRepository {
	return &ShelterRepository{db: db}
}

func (r *ShelterRepository) List(ctx context.Context, offset, limit int) ([]types.Shelter, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM shelters`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT ` + shelterColumns + `
		FROM shelters
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	shelters := make([]types.Shelter, 0, limit)
	for rows.Next() {
		shelter, err := scanShelter(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		shelters = append(shelters, shelter)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return shelters, total, nil
}

func (r *ShelterRepository) Get(ctx context.Context, id int64) (types.Shelter, error) {
	query := `
		SELECT ` + shelterColumns + `
		FROM shelters
		WHERE id = $1`
	shelter, err := scanShelter(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Shelter{}, ErrNotFound
		}
		return types.Shelter{}, err
	}
	return shelter, nil
}

func (r *ShelterRepository) Create(ctx context.Context, shelter types.Shelter) (types.Shelter, error) {
	now := time.Now()
	shelter.CreatedAt = now
	shelter.UpdatedAt = now
	if shelter.AnimalIDs == nil {
		shelter.AnimalIDs = []int64{}
	}

	var longitude, latitude *float64
	if shelter.Coordinates != nil {
		longitude = &shelter.Coordinates.Longitude
		latitude = &shelter.Coordinates.Latitude
	}

	const query = `
		INSERT INTO shelters (name, street, city, postcode, county, telephone, website, longitude, latitude, animal_ids, administrator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		shelter.Name,
		shelter.Address.Street,
		shelter.Address.City,
		shelter.Address.Postcode,
		shelter.Address.County,
		shelter.Telephone,
		shelter.Website,
		longitude,
		latitude,
		pq.Array(shelter.AnimalIDs),
		shelter.AdministratorID,
		shelter.CreatedAt,
		shelter.UpdatedAt,
	).Scan(&shelter.ID); err != nil {
		return types.Shelter{}, err
	}

	return shelter, nil
}

// scanShelter reads one shelter row through the provided scan function, so
// it serves both sql.Row and sql.Rows.
func scanShelter(scan func(dest ...any) error) (types.Shelter, error) {
	var shelter types.Shelter
	var longitude, latitude sql.NullFloat64
	var animalIDs pq.Int64Array
	err := scan(
		&shelter.ID,
		&shelter.Name,
		&shelter.Address.Street,
		&shelter.Address.City,
		&shelter.Address.Postcode,
		&shelter.Address.County,
		&shelter.Telephone,
		&shelter.Website,
		&longitude,
		&latitude,
		&animalIDs,
		&shelter.AdministratorID,
		&shelter.CreatedAt,
		&shelter.UpdatedAt,
	)
	if err != nil {
		return types.Shelter{}, err
	}
	shelter.AnimalIDs = []int64(animalIDs)
	if longitude.Valid && latitude.Valid {
		shelter.Coordinates = &types.Coordinates{
			Longitude: longitude.Float64,
			Latitude:  latitude.Float64,
		}
	}
	return shelter, nil
}
