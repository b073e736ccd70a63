package service

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"go-stock-tracker/internal/cache"
	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/internal/ws"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/storage"

	"github.com/google/uuid"
)

type ImageService interface {
	Upload(productID uuid.UUID, files []UploadFile, actor Actor) ([]model.ProductImage, error)
	List(productID uuid.UUID) ([]model.ProductImage, error)
	Delete(productID, imageID uuid.UUID, actor Actor) ([]model.ProductImage, error)
	SetPrimary(productID, imageID uuid.UUID, actor Actor) ([]model.ProductImage, error)
}

// UploadFile is one file of a multipart upload.
type UploadFile struct {
	Name    string
	Content io.Reader
}

type imageService struct {
	productRepo repository.ProductRepository
	store       storage.Store
	events      EventPublisher
	cache       cache.Cache
	maxImages   int
}

func NewImageService(pRepo repository.ProductRepository, store storage.Store, events EventPublisher, c cache.Cache, maxImages int) ImageService {
	return &imageService{
		productRepo: pRepo,
		store:       store,
		events:      events,
		cache:       c,
		maxImages:   maxImages,
	}
}

func (s *imageService) load(productID uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "Failed to load product")
	}
	return product, nil
}

// Upload stores every file and appends it to the gallery. Any failure removes
// the files written by this call; images pushed past the cap are evicted
// together with their files.
func (s *imageService) Upload(productID uuid.UUID, files []UploadFile, actor Actor) ([]model.ProductImage, error) {
	if len(files) == 0 {
		return nil, apperror.Validation("No image uploaded", map[string]string{"image": "is required"})
	}
	if s.maxImages > 0 && len(files) > s.maxImages {
		return nil, apperror.Validation("Too many images", map[string]string{
			"images": fmt.Sprintf("at most %d files per upload", s.maxImages),
		})
	}

	product, err := s.load(productID)
	if err != nil {
		return nil, err
	}

	// 1. Store the files
	var stored []*storage.Object
	rollback := func() {
		for _, obj := range stored {
			if err := s.store.Delete(obj.Key); err != nil {
				log.Printf("Warning: failed to remove upload %s: %v", obj.Key, err)
			}
		}
	}
	for _, f := range files {
		obj, err := s.store.Save(f.Name, f.Content)
		if err != nil {
			rollback()
			return nil, uploadError(f.Name, err)
		}
		stored = append(stored, obj)
	}

	// 2. Attach them to the gallery
	var evicted []model.ProductImage
	now := time.Now()
	for _, obj := range stored {
		evicted = append(evicted, product.AddImage(model.ProductImage{
			ID:         uuid.New(),
			URL:        obj.URL,
			StorageKey: obj.Key,
			UploadedAt: now,
		}, s.maxImages)...)
	}
	product.UpdatedBy = actor.ID

	// 3. Persist, then drop the evicted files
	if err := s.productRepo.SaveImages(product, evicted); err != nil {
		rollback()
		return nil, apperror.Internal("Failed to save images", err)
	}
	s.removeFiles(evicted)

	s.changed(product, actor)
	return product.Images, nil
}

func (s *imageService) List(productID uuid.UUID) ([]model.ProductImage, error) {
	product, err := s.load(productID)
	if err != nil {
		return nil, err
	}
	return product.Images, nil
}

func (s *imageService) Delete(productID, imageID uuid.UUID, actor Actor) ([]model.ProductImage, error) {
	product, err := s.load(productID)
	if err != nil {
		return nil, err
	}

	removed, ok := product.RemoveImage(imageID)
	if !ok {
		return nil, apperror.NotFound("Image not found")
	}
	product.UpdatedBy = actor.ID
	if err := s.productRepo.SaveImages(product, []model.ProductImage{removed}); err != nil {
		return nil, apperror.Internal("Failed to delete image", err)
	}
	s.removeFiles([]model.ProductImage{removed})

	s.changed(product, actor)
	return product.Images, nil
}

func (s *imageService) SetPrimary(productID, imageID uuid.UUID, actor Actor) ([]model.ProductImage, error) {
	product, err := s.load(productID)
	if err != nil {
		return nil, err
	}

	if !product.SetPrimaryImage(imageID) {
		return nil, apperror.NotFound("Image not found")
	}
	product.UpdatedBy = actor.ID
	if err := s.productRepo.SaveImages(product, nil); err != nil {
		return nil, apperror.Internal("Failed to update image", err)
	}

	s.changed(product, actor)
	return product.Images, nil
}

func (s *imageService) removeFiles(images []model.ProductImage) {
	for _, img := range images {
		if err := s.store.Delete(img.StorageKey); err != nil {
			log.Printf("Warning: failed to remove image file %s: %v", img.StorageKey, err)
		}
	}
}

func (s *imageService) changed(product *model.Product, actor Actor) {
	notify(s.cache, s.events, ws.EventImagesChanged, actor, payload{
		"id":     product.ID,
		"code":   product.Code,
		"images": product.Images,
	})
}

func uploadError(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, storage.ErrEmpty):
		return apperror.Validation(fmt.Sprintf("%s: %v", name, err), map[string]string{"image": err.Error()})
	}
	return apperror.Internal("Failed to store image", err)
}
