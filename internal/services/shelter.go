package services

import (
	"context"

	"github.com/shelternet/apiserver/internal/events"
	"github.com/shelternet/apiserver/types"
	"go.uber.org/zap"
)

const (
	minShelterNameLength = 4
	minStreetLength      = 4
	minCityLength        = 3
	minPostcodeLength    = 4
	minCountyLength      = 5
	minTelephoneLength   = 8
)

// ShelterRepository defines persistence operations for shelters.
type ShelterRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Shelter, int, error)
	Get(ctx context.Context, id int64) (types.Shelter, error)
	Create(ctx context.Context, shelter types.Shelter) (types.Shelter, error)
}

// ShelterAnimalRepository defines the paired-write operations linking
// animals to their shelter. Implementations must perform each operation
// atomically: the animal row and the shelter's membership list change
// together or not at all.
type ShelterAnimalRepository interface {
	CreateInShelter(ctx context.Context, animal types.Animal) (types.Animal, error)
	DeleteFromShelter(ctx context.Context, animalID, shelterID int64) error
	ListByShelter(ctx context.Context, shelterID int64) ([]types.Animal, error)
}

// ShelterService encapsulates shelter use-cases and coordinates the
// shelter↔animal relationship: a shelter's animal_ids must always equal
// the set of animals whose shelter_id points at it.
type ShelterService struct {
	shelters ShelterRepository
	animals  ShelterAnimalRepository
	events   *events.Publisher
	logger   *zap.Logger
}

func NewShelterService(
	shelters ShelterRepository,
	animals ShelterAnimalRepository,
	publisher *events.Publisher,
	logger *zap.Logger,
) *ShelterService {
	if publisher == nil {
		publisher = events.NewPublisher(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShelterService{
		shelters: shelters,
		animals:  animals,
		events:   publisher,
		logger:   logger,
	}
}

func (s *ShelterService) List(ctx context.Context, offset, limit int) ([]types.Shelter, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.shelters.List(ctx, offset, limit)
}

func (s *ShelterService) Get(ctx context.Context, id int64) (types.Shelter, error) {
	return s.shelters.Get(ctx, id)
}

// GetWithAnimals loads a shelter and its animals. The animals are derived
// from animal.shelter_id at read time, not from the mirrored id list.
func (s *ShelterService) GetWithAnimals(ctx context.Context, id int64) (types.Shelter, []types.Animal, error) {
	shelter, err := s.shelters.Get(ctx, id)
	if err != nil {
		return types.Shelter{}, nil, err
	}
	animals, err := s.animals.ListByShelter(ctx, id)
	if err != nil {
		return types.Shelter{}, nil, err
	}
	return shelter, animals, nil
}

// Create validates and persists a new shelter with an empty animal set.
func (s *ShelterService) Create(ctx context.Context, shelter types.Shelter) (types.Shelter, error) {
	args := map[string]any{
		"name":      shelter.Name,
		"street":    shelter.Address.Street,
		"city":      shelter.Address.City,
		"postcode":  shelter.Address.Postcode,
		"county":    shelter.Address.County,
		"telephone": shelter.Telephone,
	}
	if err := checkFields(args,
		fieldCheck{name: "name", value: shelter.Name, min: minShelterNameLength},
		fieldCheck{name: "street", value: shelter.Address.Street, min: minStreetLength},
		fieldCheck{name: "city", value: shelter.Address.City, min: minCityLength},
		fieldCheck{name: "postcode", value: shelter.Address.Postcode, min: minPostcodeLength},
		fieldCheck{name: "county", value: shelter.Address.County, min: minCountyLength},
		fieldCheck{name: "telephone", value: shelter.Telephone, min: minTelephoneLength},
	); err != nil {
		return types.Shelter{}, err
	}

	shelter.AnimalIDs = []int64{}
	return s.shelters.Create(ctx, shelter)
}

// AddAnimal registers a new animal with a shelter. The shelter must exist;
// a missing shelter fails with store.ErrNotFound before anything is
// written. The animal row and the shelter's membership entry are persisted
// atomically, so concurrent adds against the same shelter cannot lose
// entries and a failure leaves no orphan record.
func (s *ShelterService) AddAnimal(ctx context.Context, animal types.Animal) (types.Animal, error) {
	args := map[string]any{
		"name":       animal.Name,
		"type":       animal.Type,
		"breed":      animal.Breed,
		"age":        animal.Age,
		"image":      animal.ImageKey,
		"shelter_id": animal.ShelterID,
	}
	if err := checkFields(args,
		fieldCheck{name: "name", value: animal.Name, min: 2},
		fieldCheck{name: "type", value: animal.Type, min: 3},
		fieldCheck{name: "breed", value: animal.Breed, min: 1},
		fieldCheck{name: "age", value: animal.Age, min: 1},
		fieldCheck{name: "image", value: animal.ImageKey, min: 1},
	); err != nil {
		return types.Animal{}, err
	}

	if _, err := s.shelters.Get(ctx, animal.ShelterID); err != nil {
		return types.Animal{}, err
	}

	created, err := s.animals.CreateInShelter(ctx, animal)
	if err != nil {
		return types.Animal{}, err
	}

	s.events.AnimalAdded(ctx, created.ID, created.ShelterID)
	return created, nil
}

// RemoveAnimal takes an animal out of a shelter's membership list and
// deletes its record, atomically. Failures are surfaced to the caller
// rather than swallowed; a failed removal changes nothing. Returns the
// shelter as it stands after the removal.
func (s *ShelterService) RemoveAnimal(ctx context.Context, animalID, shelterID int64) (types.Shelter, error) {
	if err := s.animals.DeleteFromShelter(ctx, animalID, shelterID); err != nil {
		return types.Shelter{}, err
	}

	s.events.AnimalRemoved(ctx, animalID, shelterID)

	shelter, err := s.shelters.Get(ctx, shelterID)
	if err != nil {
		// The removal committed; only the re-read failed.
		s.logger.Warn("reload shelter after removal",
			zap.Int64("shelter_id", shelterID), zap.Error(err))
		return types.Shelter{}, err
	}
	return shelter, nil
}
