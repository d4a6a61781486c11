package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shelternet/apiserver/internal/store"
	"github.com/shelternet/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShelterRepo struct {
	mu       sync.Mutex
	shelters map[int64]types.Shelter
	nextID   int64
}

func newFakeShelterRepo() *fakeShelterRepo {
	return &fakeShelterRepo{shelters: map[int64]types.Shelter{}}
}

func (f *fakeShelterRepo) List(ctx context.Context, offset, limit int) ([]types.Shelter, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	shelters := make([]types.Shelter, 0, len(f.shelters))
	for _, shelter := range f.shelters {
		shelters = append(shelters, shelter)
	}
	return shelters, len(shelters), nil
}

func (f *fakeShelterRepo) Get(ctx context.Context, id int64) (types.Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	shelter, ok := f.shelters[id]
	if !ok {
		return types.Shelter{}, store.ErrNotFound
	}
	// Copy the slice so callers cannot alias internal state.
	shelter.AnimalIDs = append([]int64{}, shelter.AnimalIDs...)
	return shelter, nil
}

func (f *fakeShelterRepo) Create(ctx context.Context, shelter types.Shelter) (types.Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	shelter.ID = f.nextID
	f.shelters[shelter.ID] = shelter
	return shelter, nil
}

// fakeAnimalRepo mirrors the store's transactional contract: the animal row
// and the shelter membership entry change together under one lock.
type fakeAnimalRepo struct {
	mu         sync.Mutex
	animals    map[int64]types.Animal
	shelters   *fakeShelterRepo
	nextID     int64
	failCreate error
	failDelete error
}

func newFakeAnimalRepo(shelters *fakeShelterRepo) *fakeAnimalRepo {
	return &fakeAnimalRepo{animals: map[int64]types.Animal{}, shelters: shelters}
}

func (f *fakeAnimalRepo) CreateInShelter(ctx context.Context, animal types.Animal) (types.Animal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return types.Animal{}, f.failCreate
	}

	f.shelters.mu.Lock()
	defer f.shelters.mu.Unlock()
	shelter, ok := f.shelters.shelters[animal.ShelterID]
	if !ok {
		return types.Animal{}, store.ErrNotFound
	}

	f.nextID++
	animal.ID = f.nextID
	f.animals[animal.ID] = animal

	shelter.AnimalIDs = append(shelter.AnimalIDs, animal.ID)
	f.shelters.shelters[shelter.ID] = shelter
	return animal, nil
}

func (f *fakeAnimalRepo) DeleteFromShelter(ctx context.Context, animalID, shelterID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}

	f.shelters.mu.Lock()
	defer f.shelters.mu.Unlock()
	shelter, ok := f.shelters.shelters[shelterID]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := f.animals[animalID]; !ok {
		return store.ErrNotFound
	}

	kept := shelter.AnimalIDs[:0]
	for _, id := range shelter.AnimalIDs {
		if id != animalID {
			kept = append(kept, id)
		}
	}
	shelter.AnimalIDs = kept
	f.shelters.shelters[shelterID] = shelter
	delete(f.animals, animalID)
	return nil
}

func (f *fakeAnimalRepo) ListByShelter(ctx context.Context, shelterID int64) ([]types.Animal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	animals := []types.Animal{}
	for _, animal := range f.animals {
		if animal.ShelterID == shelterID {
			animals = append(animals, animal)
		}
	}
	return animals, nil
}

func (f *fakeAnimalRepo) get(id int64) (types.Animal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	animal, ok := f.animals[id]
	if !ok {
		return types.Animal{}, store.ErrNotFound
	}
	return animal, nil
}

func newShelterFixture(t *testing.T) (*ShelterService, *fakeShelterRepo, *fakeAnimalRepo, types.Shelter) {
	t.Helper()

	shelterRepo := newFakeShelterRepo()
	animalRepo := newFakeAnimalRepo(shelterRepo)
	service := NewShelterService(shelterRepo, animalRepo, nil, nil)

	shelter, err := service.Create(context.Background(), types.Shelter{
		Name: "Happy Paws",
		Address: types.Address{
			Street:   "Long Street 1",
			City:     "Warsaw",
			Postcode: "00-001",
			County:   "Mazowieckie",
		},
		Telephone: "48123456789",
	})
	require.NoError(t, err)
	return service, shelterRepo, animalRepo, shelter
}

func testAnimal(shelterID int64) types.Animal {
	return types.Animal{
		Name:      "Burek",
		Type:      "dog",
		Breed:     "mixed",
		Age:       "3 years",
		ImageKey:  "animals/burek.jpg",
		ShelterID: shelterID,
	}
}

func TestCreateShelterValidation(t *testing.T) {
	service := NewShelterService(newFakeShelterRepo(), nil, nil, nil)

	_, err := service.Create(context.Background(), types.Shelter{
		Name:      "abc",
		Telephone: "123",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "telephone")
	assert.NotNil(t, validationErr.Args)
}

func TestAddAnimal(t *testing.T) {
	service, shelterRepo, _, shelter := newShelterFixture(t)

	animal, err := service.AddAnimal(context.Background(), testAnimal(shelter.ID))
	require.NoError(t, err)

	assert.Equal(t, shelter.ID, animal.ShelterID)

	// Membership is visible immediately after the call returns.
	reloaded, err := shelterRepo.Get(context.Background(), shelter.ID)
	require.NoError(t, err)
	assert.Contains(t, reloaded.AnimalIDs, animal.ID)
}

func TestAddAnimalUnknownShelter(t *testing.T) {
	service, _, animalRepo, _ := newShelterFixture(t)

	_, err := service.AddAnimal(context.Background(), testAnimal(999))
	assert.ErrorIs(t, err, store.ErrNotFound)

	animals, err := animalRepo.ListByShelter(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, animals, "nothing persisted for a missing shelter")
}

func TestAddAnimalValidation(t *testing.T) {
	service, _, _, shelter := newShelterFixture(t)

	animal := testAnimal(shelter.ID)
	animal.Name = "B"
	animal.Type = "do"
	animal.ImageKey = ""

	_, err := service.AddAnimal(context.Background(), animal)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{"name", "type", "image"}, validationErr.Fields)
}

func TestRemoveAnimal(t *testing.T) {
	service, _, animalRepo, shelter := newShelterFixture(t)

	animal, err := service.AddAnimal(context.Background(), testAnimal(shelter.ID))
	require.NoError(t, err)

	updated, err := service.RemoveAnimal(context.Background(), animal.ID, shelter.ID)
	require.NoError(t, err)

	assert.NotContains(t, updated.AnimalIDs, animal.ID)

	_, err = animalRepo.get(animal.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// Removal failures surface to the caller; nothing is swallowed.
func TestRemoveAnimalFailureSurfaced(t *testing.T) {
	service, shelterRepo, animalRepo, shelter := newShelterFixture(t)

	animal, err := service.AddAnimal(context.Background(), testAnimal(shelter.ID))
	require.NoError(t, err)

	animalRepo.failDelete = errors.New("connection reset")
	_, err = service.RemoveAnimal(context.Background(), animal.ID, shelter.ID)
	require.Error(t, err)

	// The failed removal changed nothing.
	reloaded, err := shelterRepo.Get(context.Background(), shelter.ID)
	require.NoError(t, err)
	assert.Contains(t, reloaded.AnimalIDs, animal.ID)
}

func TestRemoveAnimalUnknownAnimal(t *testing.T) {
	service, _, _, shelter := newShelterFixture(t)

	_, err := service.RemoveAnimal(context.Background(), 999, shelter.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// N concurrent adds against one shelter must produce exactly N membership
// entries. This holds because membership is appended atomically with the
// animal insert; a read-modify-write of the id list would lose updates here.
func TestAddAnimalConcurrent(t *testing.T) {
	service, shelterRepo, _, shelter := newShelterFixture(t)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			animal := testAnimal(shelter.ID)
			animal.Name = fmt.Sprintf("Burek-%d", i)
			if _, err := service.AddAnimal(context.Background(), animal); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent add failed: %v", err)
	}

	reloaded, err := shelterRepo.Get(context.Background(), shelter.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.AnimalIDs, n, "no membership entry may be lost")

	seen := map[int64]bool{}
	for _, id := range reloaded.AnimalIDs {
		assert.False(t, seen[id], "duplicate membership entry %d", id)
		seen[id] = true
	}
}

func TestGetWithAnimals(t *testing.T) {
	service, _, _, shelter := newShelterFixture(t)

	first, err := service.AddAnimal(context.Background(), testAnimal(shelter.ID))
	require.NoError(t, err)
	second := testAnimal(shelter.ID)
	second.Name = "Mruczek"
	second.Type = "cat"
	added, err := service.AddAnimal(context.Background(), second)
	require.NoError(t, err)

	_, animals, err := service.GetWithAnimals(context.Background(), shelter.ID)
	require.NoError(t, err)

	ids := []int64{}
	for _, animal := range animals {
		ids = append(ids, animal.ID)
	}
	assert.ElementsMatch(t, []int64{first.ID, added.ID}, ids)
}
