package handler

import (
	"strconv"
	"strings"

	"go-stock-tracker/internal/query"
	"go-stock-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	service service.ProductService
}

func NewProductHandler(s service.ProductService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GetProducts lists active products with filters, sorting and pagination.
// GET /api/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	params := queryParams(c)
	criteria, err := query.ParseCriteria(params)
	if err != nil {
		return respondError(c, err)
	}
	sort := query.ParseSort(params.Get("sortBy"), params.Get("sortOrder"))
	page := query.ParsePage(params.Get("page"), params.Get("limit"))

	list, err := h.service.List(criteria, sort, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"data":       list.Data,
		"pagination": list.Pagination,
		"filters":    list.Filters,
		"summary":    list.Summary,
	})
}

// SearchProducts scores products against q.
// GET /api/products/search?q=&fields=&fuzzy=
func (h *ProductHandler) SearchProducts(c *fiber.Ctx) error {
	fuzzy, _ := strconv.ParseBool(c.Query("fuzzy"))
	opts := query.SearchOptions{
		Query:  strings.TrimSpace(c.Query("q")),
		Fields: query.ParseSearchFields(c.Query("fields")),
		Fuzzy:  fuzzy,
	}

	results, err := h.service.Search(opts)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    results,
		"count":   len(results),
		"query":   opts.Query,
	})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	product, err := h.service.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, product)
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductInput
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := h.service.Create(&req, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusCreated, "Product created", product)
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	var patch service.ProductPatch
	if err := decodeStrict(c, &patch); err != nil {
		return respondError(c, err)
	}
	product, err := h.service.Update(id, &patch, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Product updated", product)
}

// DeleteProduct marks the product inactive; nothing is removed.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	if err := h.service.Delete(id, actor(c)); err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Product deleted", nil)
}

// AdjustStock applies a set/add/subtract operation.
// PATCH /api/products/:id/stock
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	var req service.StockAdjustmentRequest
	if err := decodeStrict(c, &req); err != nil {
		return respondError(c, err)
	}
	product, err := h.service.AdjustStock(id, &req, actor(c))
	if err != nil {
		return respondError(c, err)
	}
	return okMessage(c, fiber.StatusOK, "Stock updated", product)
}

// GetMovements lists the product's stock history.
// GET /api/products/:id/movements?limit=
func (h *ProductHandler) GetMovements(c *fiber.Ctx) error {
	id, err := paramUUID(c, "id", "product")
	if err != nil {
		return respondError(c, err)
	}
	movements, err := h.service.Movements(id, c.QueryInt("limit", service.DefaultMovementLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": movements, "count": len(movements)})
}

func (h *ProductHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, categories)
}

func (h *ProductHandler) GetBrands(c *fiber.Ctx) error {
	brands, err := h.service.Brands()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, brands)
}

func (h *ProductHandler) GetLowStock(c *fiber.Ctx) error {
	products, err := h.service.LowStock()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": products, "count": len(products)})
}

func (h *ProductHandler) GetOutOfStock(c *fiber.Ctx) error {
	products, err := h.service.OutOfStock()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": products, "count": len(products)})
}

func (h *ProductHandler) GetPriceRange(c *fiber.Ctx) error {
	r, err := h.service.PriceRange()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, r)
}

func (h *ProductHandler) GetStatistics(c *fiber.Ctx) error {
	stats, err := h.service.Statistics()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, stats)
}
