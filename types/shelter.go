package types

import "time"

// Address is the postal address of a shelter.
type Address struct {
	Street   string `json:"street" db:"street"`
	City     string `json:"city" db:"city"`
	Postcode string `json:"postcode" db:"postcode"`
	County   string `json:"county" db:"county"`
}

// Coordinates is an optional geographic location.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Shelter represents an animal shelter in the directory.
//
// AnimalIDs mirrors the set of animals whose ShelterID points at this
// shelter. The two are kept consistent by writing both sides in a single
// database transaction.
type Shelter struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Address     Address      `json:"address"`
	Telephone   string       `json:"telephone" db:"telephone"`
	Website     string       `json:"website,omitempty" db:"website"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`

	// AnimalIDs lists the animals housed by this shelter. Order carries
	// no meaning.
	AnimalIDs []int64 `json:"animal_ids" db:"animal_ids"`

	// AdministratorID optionally references the user administering
	// this shelter.
	AdministratorID *int64 `json:"administrator_id,omitempty" db:"administrator_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
