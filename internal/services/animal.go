package services

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/shelternet/apiserver/internal/storage"
	"github.com/shelternet/apiserver/types"
)

// AnimalRepository defines persistence operations for animals outside the
// shelter relationship.
type AnimalRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Animal, int, error)
	Get(ctx context.Context, id int64) (types.Animal, error)
	SetImageKey(ctx context.Context, id int64, key string) error
}

// AnimalService encapsulates animal queries and image uploads.
type AnimalService struct {
	repo   AnimalRepository
	images *storage.ImageStore
}

func NewAnimalService(repo AnimalRepository, images *storage.ImageStore) *AnimalService {
	return &AnimalService{repo: repo, images: images}
}

func (s *AnimalService) List(ctx context.Context, offset, limit int) ([]types.Animal, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *AnimalService) Get(ctx context.Context, id int64) (types.Animal, error) {
	return s.repo.Get(ctx, id)
}

// AttachImage uploads an animal picture to object storage and records the
// resulting key on the animal.
func (s *AnimalService) AttachImage(ctx context.Context, animalID int64, filename string, r io.Reader, size int64, contentType string) (types.Animal, error) {
	if s.images == nil {
		return types.Animal{}, fmt.Errorf("image storage is not configured")
	}

	animal, err := s.repo.Get(ctx, animalID)
	if err != nil {
		return types.Animal{}, err
	}

	key := fmt.Sprintf("animals/%d/%s", animalID, path.Base(filename))
	if err := s.images.Put(ctx, key, r, size, contentType); err != nil {
		return types.Animal{}, err
	}

	if err := s.repo.SetImageKey(ctx, animalID, key); err != nil {
		return types.Animal{}, err
	}

	animal.ImageKey = key
	return animal, nil
}
