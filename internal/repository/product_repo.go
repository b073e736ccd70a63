package repository

import (
	"go-stock-tracker/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(product *model.Product, movement *model.StockMovement) error
	FindByID(id uuid.UUID) (*model.Product, error)
	FindByCode(code string) (*model.Product, error)
	FindByBarcode(barcode string) (*model.Product, error)
	FindActive() ([]model.Product, error)
	Update(product *model.Product, movement *model.StockMovement) error
	AdjustStock(id uuid.UUID, mutate func(p *model.Product) (*model.StockMovement, error)) (*model.Product, error)
	SaveImages(product *model.Product, removed []model.ProductImage) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func orderedImages(db *gorm.DB) *gorm.DB {
	return db.Order("uploaded_at ASC")
}

func (r *productRepo) Create(product *model.Product, movement *model.StockMovement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Create(product).Error; err != nil {
			return err
		}
		if movement != nil {
			movement.ProductID = product.ID
			return tx.Create(movement).Error
		}
		return nil
	})
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.Preload("Images", orderedImages).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByCode(code string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "UPPER(code) = UPPER(?)", code).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "barcode = ?", barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindActive() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Images", orderedImages).
		Where("status = ?", model.StatusActive).
		Order("created_at DESC").
		Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product, movement *model.StockMovement) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Images").Save(product).Error; err != nil {
			return err
		}
		if movement != nil {
			return tx.Create(movement).Error
		}
		return nil
	})
}

// AdjustStock locks the row, lets mutate change it and persists the result
// together with the returned movement in one transaction. The returned
// product carries no gallery.
func (r *productRepo) AdjustStock(id uuid.UUID, mutate func(p *model.Product) (*model.StockMovement, error)) (*model.Product, error) {
	var updated model.Product
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&updated, "id = ?", id).Error; err != nil {
			return err
		}

		movement, err := mutate(&updated)
		if err != nil {
			return err
		}

		if err := tx.Omit("Images").Save(&updated).Error; err != nil {
			return err
		}
		if movement != nil {
			return tx.Create(movement).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SaveImages upserts the product's current gallery and deletes removed rows.
func (r *productRepo) SaveImages(product *model.Product, removed []model.ProductImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, img := range removed {
			if err := tx.Delete(&model.ProductImage{}, "id = ?", img.ID).Error; err != nil {
				return err
			}
		}
		for i := range product.Images {
			product.Images[i].ProductID = product.ID
			if err := tx.Save(&product.Images[i]).Error; err != nil {
				return err
			}
		}
		return tx.Model(product).Update("updated_by", product.UpdatedBy).Error
	})
}
