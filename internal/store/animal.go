package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shelternet/apiserver/types"
)

const animalColumns = `id, name, type, breed, age, description, image_key, shelter_id, created_at, updated_at`

// AnimalRepository handles persistence for animals, including the paired
// writes that keep a shelter's animal_ids in step with animal.shelter_id.
type AnimalRepository struct {
	db *sql.DB
}

func NewAnimalRepository(db *sql.DB) *AnimalRepository {
	return &AnimalRepository{db: db}
}

func (r *AnimalRepository) List(ctx context.Context, offset, limit int) ([]types.Animal, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM animals`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT ` + animalColumns + `
		FROM animals
		ORDER BY id
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	animals := make([]types.Animal, 0, limit)
	for rows.Next() {
		animal, err := scanAnimal(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		animals = append(animals, animal)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return animals, total, nil
}

func (r *AnimalRepository) Get(ctx context.Context, id int64) (types.Animal, error) {
	query := `
		SELECT ` + animalColumns + `
		FROM animals
		WHERE id = $1`
	animal, err := scanAnimal(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Animal{}, ErrNotFound
		}
		return types.Animal{}, err
	}
	return animal, nil
}

// ListByShelter derives a shelter's animals from animal.shelter_id rather
// than the mirrored animal_ids array.
func (r *AnimalRepository) ListByShelter(ctx context.Context, shelterID int64) ([]types.Animal, error) {
	query := `
		SELECT ` + animalColumns + `
		FROM animals
		WHERE shelter_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, shelterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	animals := []types.Animal{}
	for rows.Next() {
		animal, err := scanAnimal(rows.Scan)
		if err != nil {
			return nil, err
		}
		animals = append(animals, animal)
	}
	return animals, rows.Err()
}

// CreateInShelter inserts the animal and appends its id to the shelter's
// animal_ids in a single transaction. array_append on the shelter row makes
// concurrent inserts against the same shelter serialize at the database, so
// no membership entry is lost, and a failure of either statement rolls back
// both.
func (r *AnimalRepository) CreateInShelter(ctx context.Context, animal types.Animal) (types.Animal, error) {
	now := time.Now()
	animal.CreatedAt = now
	animal.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Animal{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const insertQuery = `
		INSERT INTO animals (name, type, breed, age, description, image_key, shelter_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := tx.QueryRowContext(
		ctx,
		insertQuery,
		animal.Name,
		animal.Type,
		animal.Breed,
		animal.Age,
		animal.Description,
		animal.ImageKey,
		animal.ShelterID,
		animal.CreatedAt,
		animal.UpdatedAt,
	).Scan(&animal.ID); err != nil {
		return types.Animal{}, err
	}

	const appendQuery = `
		UPDATE shelters
		SET animal_ids = array_append(animal_ids, $1),
			updated_at = $2
		WHERE id = $3`
	result, err := tx.ExecContext(ctx, appendQuery, animal.ID, now, animal.ShelterID)
	if err != nil {
		return types.Animal{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Animal{}, err
	}
	if affected == 0 {
		return types.Animal{}, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return types.Animal{}, err
	}
	return animal, nil
}

// DeleteFromShelter removes the animal's id from the shelter's animal_ids
// and deletes the animal row in a single transaction. Either both writes
// commit or neither does.
func (r *AnimalRepository) DeleteFromShelter(ctx context.Context, animalID, shelterID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const removeQuery = `
		UPDATE shelters
		SET animal_ids = array_remove(animal_ids, $1),
			updated_at = $2
		WHERE id = $3`
	result, err := tx.ExecContext(ctx, removeQuery, animalID, time.Now(), shelterID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	const deleteQuery = `DELETE FROM animals WHERE id = $1 AND shelter_id = $2`
	result, err = tx.ExecContext(ctx, deleteQuery, animalID, shelterID)
	if err != nil {
		return err
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *AnimalRepository) SetImageKey(ctx context.Context, id int64, key string) error {
	const query = `
		UPDATE animals
		SET image_key = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, key, time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnimal(scan func(dest ...any) error) (types.Animal, error) {
	var animal types.Animal
	err := scan(
		&animal.ID,
		&animal.Name,
		&animal.Type,
		&animal.Breed,
		&animal.Age,
		&animal.Description,
		&animal.ImageKey,
		&animal.ShelterID,
		&animal.CreatedAt,
		&animal.UpdatedAt,
	)
	if err != nil {
		return types.Animal{}, err
	}
	return animal, nil
}
