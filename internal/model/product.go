package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryHomeGarden  Category = "Home & Garden"
	CategorySports      Category = "Sports"
	CategoryBooks       Category = "Books"
	CategoryCosmetics   Category = "Cosmetics"
	CategoryFood        Category = "Food"
	CategoryToys        Category = "Toys"
	CategoryOther       Category = "Other"
)

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryElectronics, CategoryClothing, CategoryHomeGarden, CategorySports,
	CategoryBooks, CategoryCosmetics, CategoryFood, CategoryToys, CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Unit string

const (
	UnitPiece   Unit = "piece"
	UnitKg      Unit = "kg"
	UnitGram    Unit = "gram"
	UnitLiter   Unit = "liter"
	UnitMl      Unit = "ml"
	UnitMeter   Unit = "meter"
	UnitCm      Unit = "cm"
	UnitPackage Unit = "package"
)

var Units = []Unit{UnitPiece, UnitKg, UnitGram, UnitLiter, UnitMl, UnitMeter, UnitCm, UnitPackage}

func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

type StockStatus string

const (
	StockOut StockStatus = "out-of-stock"
	StockLow StockStatus = "low-stock"
	StockIn  StockStatus = "in-stock"
)

// Severity orders statuses for sorting: out-of-stock < low-stock < in-stock.
func (s StockStatus) Severity() int {
	switch s {
	case StockOut:
		return 0
	case StockLow:
		return 1
	case StockIn:
		return 2
	}
	return 3
}

// ComputeStockStatus applies the three-way availability rule.
func ComputeStockStatus(quantity, minStock int) StockStatus {
	if quantity == 0 {
		return StockOut
	}
	if quantity <= minStock {
		return StockLow
	}
	return StockIn
}

type ProductStatus string

const (
	StatusActive       ProductStatus = "active"
	StatusInactive     ProductStatus = "inactive" // soft-deleted
	StatusDiscontinued ProductStatus = "discontinued"
)

const DefaultMinStock = 10

type Product struct {
	BaseModel
	Code        string         `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Name        string         `gorm:"type:varchar(100);not null" json:"name"`
	Category    Category       `gorm:"type:varchar(30);index;not null" json:"category"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	Supplier    string         `gorm:"type:varchar(100);index" json:"supplier"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Barcode     *string        `gorm:"type:varchar(13);uniqueIndex" json:"barcode,omitempty"`
	Unit        Unit           `gorm:"type:varchar(10);not null;default:'piece'" json:"unit"`

	Quantity  int     `gorm:"not null;default:0" json:"quantity"`
	MinStock  int     `gorm:"not null;default:10" json:"minStock"`
	CostPrice float64 `gorm:"not null;default:0" json:"costPrice"`
	SalePrice float64 `gorm:"not null;default:0" json:"salePrice"`

	// Derived, recalculated before every save
	TotalValue  float64     `gorm:"not null;default:0" json:"totalValue"`
	StockStatus StockStatus `gorm:"type:varchar(20);index" json:"stockStatus"`

	ProfitMargin float64 `gorm:"-" json:"profitMargin"`
	ProfitAmount float64 `gorm:"-" json:"profitAmount"`

	Status ProductStatus  `gorm:"type:varchar(20);index;not null;default:'active'" json:"status"`
	Images []ProductImage `gorm:"constraint:OnDelete:CASCADE" json:"images"`
}

// ProductImage is one entry of a product's ordered gallery.
type ProductImage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID  uuid.UUID `gorm:"type:uuid;index;not null" json:"productId"`
	URL        string    `gorm:"type:varchar(500);not null" json:"url"`
	StorageKey string    `gorm:"type:varchar(500)" json:"-"`
	IsPrimary  bool      `gorm:"default:false" json:"isPrimary"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (img *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	return nil
}

// Recalculate refreshes every derived field from quantity, minStock and prices.
func (p *Product) Recalculate() {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.TotalValue = decimal.NewFromInt(int64(p.Quantity)).
		Mul(decimal.NewFromFloat(p.SalePrice)).
		InexactFloat64()
	p.StockStatus = ComputeStockStatus(p.Quantity, p.MinStock)
	p.ProfitAmount = decimal.NewFromFloat(p.SalePrice).Sub(decimal.NewFromFloat(p.CostPrice)).InexactFloat64()
	p.ProfitMargin = 0
	if p.CostPrice != 0 {
		p.ProfitMargin = decimal.NewFromFloat(p.SalePrice).
			Sub(decimal.NewFromFloat(p.CostPrice)).
			Div(decimal.NewFromFloat(p.CostPrice)).
			Mul(decimal.NewFromInt(100)).
			Round(2).
			InexactFloat64()
	}
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.Recalculate()
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	p.Recalculate()
	return nil
}

func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

// HasAnyTag reports whether the tag sets intersect (exact match).
func (p *Product) HasAnyTag(tags []string) bool {
	for _, own := range p.Tags {
		for _, want := range tags {
			if own == want {
				return true
			}
		}
	}
	return false
}

// AddImage appends an image, making it primary when the gallery was empty.
// When the gallery exceeds limit the oldest images are evicted and returned.
func (p *Product) AddImage(img ProductImage, limit int) []ProductImage {
	img.ProductID = p.ID
	img.IsPrimary = len(p.Images) == 0
	p.Images = append(p.Images, img)

	var evicted []ProductImage
	if limit > 0 && len(p.Images) > limit {
		n := len(p.Images) - limit
		evicted = append(evicted, p.Images[:n]...)
		p.Images = append([]ProductImage(nil), p.Images[n:]...)
		p.ensurePrimary()
	}
	return evicted
}

// RemoveImage drops the image with the given id. If it was primary the
// first remaining image is promoted.
func (p *Product) RemoveImage(id uuid.UUID) (ProductImage, bool) {
	for i, img := range p.Images {
		if img.ID != id {
			continue
		}
		p.Images = append(p.Images[:i], p.Images[i+1:]...)
		p.ensurePrimary()
		return img, true
	}
	return ProductImage{}, false
}

// SetPrimaryImage marks exactly one image as primary.
func (p *Product) SetPrimaryImage(id uuid.UUID) bool {
	found := false
	for _, img := range p.Images {
		if img.ID == id {
			found = true
		}
	}
	if !found {
		return false
	}
	for i := range p.Images {
		p.Images[i].IsPrimary = p.Images[i].ID == id
	}
	return true
}

func (p *Product) PrimaryImage() *ProductImage {
	for i := range p.Images {
		if p.Images[i].IsPrimary {
			return &p.Images[i]
		}
	}
	return nil
}

func (p *Product) ensurePrimary() {
	if len(p.Images) == 0 || p.PrimaryImage() != nil {
		return
	}
	p.Images[0].IsPrimary = true
}
