package types

import "time"

// Animal represents an animal housed by a shelter.
type Animal struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Type        string `json:"type" db:"type"`
	Breed       string `json:"breed" db:"breed"`
	Age         string `json:"age" db:"age"`
	Description string `json:"description,omitempty" db:"description"`

	// ImageKey is the object-storage key of the animal's picture.
	ImageKey string `json:"image_key" db:"image_key"`

	// ShelterID references the shelter housing this animal.
	ShelterID int64 `json:"shelter_id" db:"shelter_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
