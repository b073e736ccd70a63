package handler

import (
	"fmt"

	"go-stock-tracker/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GET /api/reports/dashboard?period=7days|30days|90days|all
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	dashboard, err := h.service.Dashboard(c.Query("period", "30days"))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, dashboard)
}

func (h *ReportHandler) GetABCAnalysis(c *fiber.Ctx) error {
	result, err := h.service.ABCAnalysis()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, result)
}

func (h *ReportHandler) GetCategoryAnalysis(c *fiber.Ctx) error {
	result, err := h.service.CategoryAnalysis()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, result)
}

func (h *ReportHandler) GetSupplierAnalysis(c *fiber.Ctx) error {
	result, err := h.service.SupplierAnalysis()
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, result)
}

// GET /api/reports/inventory-movement?startDate=&endDate=&category=&supplier=
func (h *ReportHandler) GetInventoryMovement(c *fiber.Ctx) error {
	result, err := h.service.InventoryMovement(service.MovementQuery{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Category:  c.Query("category"),
		Supplier:  c.Query("supplier"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, result)
}

// Export returns a handler streaming the report in the given format as a download.
// GET /api/reports/export/{excel,csv,pdf}?type=
func (h *ReportHandler) Export(format service.ExportFormat) fiber.Handler {
	return func(c *fiber.Ctx) error {
		file, err := h.service.Export(format, c.Query("type"))
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, file.ContentType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, file.Name))
		return c.Send(file.Data)
	}
}
