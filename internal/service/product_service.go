package service

import (
	"errors"
	"fmt"
	"log"

	"go-stock-tracker/internal/cache"
	"go-stock-tracker/internal/model"
	"go-stock-tracker/internal/query"
	"go-stock-tracker/internal/repository"
	"go-stock-tracker/internal/ws"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	List(criteria query.Criteria, sort query.Sort, page query.Page) (*ProductList, error)
	Search(opts query.SearchOptions) ([]query.ScoredProduct, error)
	GetByID(id uuid.UUID) (*model.Product, error)
	Create(req *ProductInput, actor Actor) (*model.Product, error)
	Update(id uuid.UUID, patch *ProductPatch, actor Actor) (*model.Product, error)
	Delete(id uuid.UUID, actor Actor) error
	AdjustStock(id uuid.UUID, req *StockAdjustmentRequest, actor Actor) (*model.Product, error)
	Movements(id uuid.UUID, limit int) ([]model.StockMovement, error)
	Categories() ([]query.CategoryCount, error)
	Brands() ([]query.BrandCount, error)
	LowStock() ([]model.Product, error)
	OutOfStock() ([]model.Product, error)
	PriceRange() (*query.PriceRange, error)
	Statistics() (*ProductStatistics, error)
}

// ProductList is one page of a filtered, sorted listing.
type ProductList struct {
	Data       []model.Product  `json:"data"`
	Pagination query.Pagination `json:"pagination"`
	Filters    ListFilters      `json:"filters"`
	Summary    query.Summary    `json:"summary"`
}

type ListFilters struct {
	query.Criteria
	query.Sort
	// Sorted is false when sortBy names no known field and the order is left as is.
	Sorted bool `json:"sorted"`
}

type ProductStatistics struct {
	Overview             query.Overview        `json:"overview"`
	CategoryDistribution []query.CategoryCount `json:"categoryDistribution"`
	RecentProducts       []model.Product       `json:"recentProducts"`
}

const (
	recentProductCount   = 5
	DefaultMovementLimit = 50
	MaxMovementLimit     = 500
)

type productService struct {
	productRepo  repository.ProductRepository
	movementRepo repository.MovementRepository
	events       EventPublisher
	cache        cache.Cache
}

func NewProductService(pRepo repository.ProductRepository, mRepo repository.MovementRepository, events EventPublisher, c cache.Cache) ProductService {
	return &productService{
		productRepo:  pRepo,
		movementRepo: mRepo,
		events:       events,
		cache:        c,
	}
}

func (s *productService) active() ([]model.Product, error) {
	products, err := s.productRepo.FindActive()
	if err != nil {
		return nil, apperror.Internal("Failed to load products", err)
	}
	return products, nil
}

func (s *productService) List(criteria query.Criteria, sort query.Sort, page query.Page) (*ProductList, error) {
	products, err := s.active()
	if err != nil {
		return nil, err
	}

	filtered := query.Filter(products, criteria)
	sort.Apply(filtered)
	data, pagination := query.Paginate(filtered, page)

	return &ProductList{
		Data:       data,
		Pagination: pagination,
		Filters:    ListFilters{Criteria: criteria, Sort: sort, Sorted: query.Sortable(sort.Field)},
		Summary:    query.Summarize(filtered),
	}, nil
}

func (s *productService) Search(opts query.SearchOptions) ([]query.ScoredProduct, error) {
	if err := query.ValidateSearchTerm(opts.Query, true); err != nil {
		return nil, err
	}
	products, err := s.active()
	if err != nil {
		return nil, err
	}
	return query.Search(products, opts)
}

func (s *productService) GetByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "Failed to load product")
	}
	return product, nil
}

func (s *productService) Create(req *ProductInput, actor Actor) (*model.Product, error) {
	// 1. Validate the schema and the price relation
	if err := req.validate(); err != nil {
		return nil, err
	}

	// 2. Advisory uniqueness check; the unique index stays authoritative
	if err := s.checkUnique(req, uuid.Nil); err != nil {
		return nil, err
	}

	product := &model.Product{}
	req.applyTo(product)
	product.CreatedBy = actor.ID
	product.UpdatedBy = actor.ID

	// 3. Persist with the opening stock movement
	movement := model.NewStockMovement(uuid.Nil, model.MovementCreate, 0, product.Quantity, actor.ID)
	if err := s.productRepo.Create(product, movement); err != nil {
		return nil, s.persistError(err, req, uuid.Nil)
	}

	s.changed(ws.EventProductCreated, actor, product)
	return product, nil
}

func (s *productService) Update(id uuid.UUID, patch *ProductPatch, actor Actor) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFoundOr(err, "Product not found", "Failed to load product")
	}

	merged := patch.merge(inputFromProduct(existing))
	if err := merged.validate(); err != nil {
		return nil, err
	}
	if err := s.checkUnique(&merged, existing.ID); err != nil {
		return nil, err
	}

	before := existing.Quantity
	merged.applyTo(existing)
	existing.UpdatedBy = actor.ID

	movement := model.NewStockMovement(existing.ID, model.MovementUpdate, before, existing.Quantity, actor.ID)
	if err := s.productRepo.Update(existing, movement); err != nil {
		return nil, s.persistError(err, &merged, existing.ID)
	}

	s.changed(ws.EventProductUpdated, actor, existing)
	return existing, nil
}

// Delete is a soft delete: the product becomes inactive.
func (s *productService) Delete(id uuid.UUID, actor Actor) error {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return notFoundOr(err, "Product not found", "Failed to load product")
	}

	product.Status = model.StatusInactive
	product.UpdatedBy = actor.ID
	if err := s.productRepo.Update(product, nil); err != nil {
		return apperror.Internal("Failed to delete product", err)
	}

	s.changed(ws.EventProductDeleted, actor, payload{"id": product.ID, "code": product.Code})
	return nil
}

func (s *productService) AdjustStock(id uuid.UUID, req *StockAdjustmentRequest, actor Actor) (*model.Product, error) {
	if err := validator.Check(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.AdjustStock(id, func(p *model.Product) (*model.StockMovement, error) {
		before := p.Quantity
		after, err := applyStockOperation(before, *req.Quantity, model.MovementOperation(req.Operation))
		if err != nil {
			return nil, err
		}
		p.Quantity = after
		p.UpdatedBy = actor.ID
		p.Recalculate()
		return model.NewStockMovement(p.ID, model.MovementOperation(req.Operation), before, after, actor.ID), nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, notFoundOr(err, "Product not found", "Failed to update stock")
	}

	// The locked read leaves the gallery out
	if full, err := s.productRepo.FindByID(product.ID); err == nil {
		product = full
	} else {
		log.Printf("Warning: failed to reload product %s after stock update: %v", product.ID, err)
	}

	s.changed(ws.EventStockAdjusted, actor, payload{
		"id":          product.ID,
		"code":        product.Code,
		"name":        product.Name,
		"quantity":    product.Quantity,
		"stockStatus": product.StockStatus,
	})
	return product, nil
}

// applyStockOperation computes the new quantity, rejecting negative results.
func applyStockOperation(current, amount int, op model.MovementOperation) (int, error) {
	var next int
	switch op {
	case model.MovementSet:
		next = amount
	case model.MovementAdd:
		next = current + amount
	case model.MovementSubtract:
		next = current - amount
	default:
		return 0, apperror.Validation("Invalid stock operation", map[string]string{
			"operation": "must be one of: set add subtract",
		})
	}
	if next < 0 {
		return 0, apperror.Validation("Stock quantity cannot be negative", map[string]string{
			"quantity": fmt.Sprintf("would leave %d in stock", next),
		})
	}
	return next, nil
}

// Movements returns the product's stock history, newest first.
func (s *productService) Movements(id uuid.UUID, limit int) ([]model.StockMovement, error) {
	if _, err := s.productRepo.FindByID(id); err != nil {
		return nil, notFoundOr(err, "Product not found", "Failed to load product")
	}
	if limit <= 0 {
		limit = DefaultMovementLimit
	}
	movements, err := s.movementRepo.FindByProduct(id, min(limit, MaxMovementLimit))
	if err != nil {
		return nil, apperror.Internal("Failed to load stock movements", err)
	}
	if movements == nil {
		movements = []model.StockMovement{}
	}
	return movements, nil
}

func (s *productService) Categories() ([]query.CategoryCount, error) {
	products, err := s.active()
	if err != nil {
		return nil, err
	}
	return query.CategoryCounts(products), nil
}

func (s *productService) Brands() ([]query.BrandCount, error) {
	products, err := s.active()
	if err != nil {
		return nil, err
	}
	return query.Brands(products), nil
}

func (s *productService) LowStock() ([]model.Product, error) {
	return s.byStatus(model.StockLow)
}

func (s *productService) OutOfStock() ([]model.Product, error) {
	return s.byStatus(model.StockOut)
}

func (s *productService) byStatus(status model.StockStatus) ([]model.Product, error) {
	products, err := s.active()
	if err != nil {
		return nil, err
	}
	matched := query.Filter(products, query.Criteria{StockStatus: string(status)})
	query.Sort{Field: "quantity", Order: query.OrderAsc}.Apply(matched)
	return matched, nil
}

func (s *productService) PriceRange() (*query.PriceRange, error) {
	products, err := s.active()
	if err != nil {
		return nil, err
	}
	r := query.ComputePriceRange(products)
	return &r, nil
}

func (s *productService) Statistics() (*ProductStatistics, error) {
	products, err := s.active()
	if err != nil {
		return nil, err
	}
	return &ProductStatistics{
		Overview:             query.ComputeOverview(products),
		CategoryDistribution: query.CategoryDistribution(products),
		RecentProducts:       query.Recent(products, recentProductCount),
	}, nil
}

// checkUnique rejects a code or barcode already used by another product.
func (s *productService) checkUnique(in *ProductInput, self uuid.UUID) error {
	existing, err := s.productRepo.FindByCode(in.Code)
	if err == nil && existing.ID != self {
		return duplicateError("code")
	}
	if err != nil && !isNotFound(err) {
		return apperror.Internal("Failed to check product code", err)
	}

	if in.Barcode == nil {
		return nil
	}
	existing, err = s.productRepo.FindByBarcode(*in.Barcode)
	if err == nil && existing.ID != self {
		return duplicateError("barcode")
	}
	if err != nil && !isNotFound(err) {
		return apperror.Internal("Failed to check barcode", err)
	}
	return nil
}

// persistError maps a unique index violation that slipped past the
// advisory check to a validation error. self is the product being saved.
func (s *productService) persistError(err error, in *ProductInput, self uuid.UUID) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Internal("Failed to save product", err)
	}
	if in.Barcode != nil {
		if owner, findErr := s.productRepo.FindByBarcode(*in.Barcode); findErr == nil && owner.ID != self {
			return duplicateError("barcode")
		}
	}
	return duplicateError("code")
}

func duplicateError(field string) error {
	return apperror.Validation(fmt.Sprintf("This %s is already in use", field), map[string]string{
		field: "already in use",
	})
}

func (s *productService) changed(eventType string, actor Actor, data any) {
	notify(s.cache, s.events, eventType, actor, data)
}

type payload map[string]any
