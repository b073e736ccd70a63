package service

import (
	"strings"

	"go-stock-tracker/internal/model"
	"go-stock-tracker/pkg/apperror"
	"go-stock-tracker/pkg/validator"
)

// ProductInput is the validated shape of a full product definition.
type ProductInput struct {
	Code        string   `json:"code" validate:"required,product_code"`
	Name        string   `json:"name" validate:"required,min=2,max=100"`
	Category    string   `json:"category" validate:"required,category"`
	Description string   `json:"description" validate:"max=500"`
	Supplier    string   `json:"supplier" validate:"max=100"`
	Tags        []string `json:"tags" validate:"max=50,dive,max=30"`
	Barcode     *string  `json:"barcode" validate:"omitempty,barcode"`
	Unit        string   `json:"unit" validate:"required,unit"`
	Quantity    *int     `json:"quantity" validate:"required,gte=0"`
	MinStock    *int     `json:"minStock" validate:"required,gte=0"`
	CostPrice   *float64 `json:"costPrice" validate:"required,gte=0"`
	SalePrice   *float64 `json:"salePrice" validate:"required,gte=0"`
	Status      string   `json:"status" validate:"required,oneof=active inactive discontinued"`
}

// ProductPatch carries the optional fields of an update.
type ProductPatch struct {
	Code        *string   `json:"code"`
	Name        *string   `json:"name"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Supplier    *string   `json:"supplier"`
	Tags        *[]string `json:"tags"`
	Barcode     *string   `json:"barcode"`
	Unit        *string   `json:"unit"`
	Quantity    *int      `json:"quantity"`
	MinStock    *int      `json:"minStock"`
	CostPrice   *float64  `json:"costPrice"`
	SalePrice   *float64  `json:"salePrice"`
	Status      *string   `json:"status"`
}

type StockAdjustmentRequest struct {
	Quantity  *int   `json:"quantity" validate:"required,gte=0"`
	Operation string `json:"operation" validate:"required,oneof=set add subtract"`
}

// normalize applies defaults and canonical casing before validation.
func (in *ProductInput) normalize() {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	in.Name = strings.TrimSpace(in.Name)
	in.Supplier = strings.TrimSpace(in.Supplier)
	if in.Unit == "" {
		in.Unit = string(model.UnitPiece)
	}
	if in.MinStock == nil {
		v := model.DefaultMinStock
		in.MinStock = &v
	}
	if in.Status == "" {
		in.Status = string(model.StatusActive)
	}
	if in.Barcode != nil {
		b := strings.TrimSpace(*in.Barcode)
		if b == "" {
			in.Barcode = nil
		} else {
			in.Barcode = &b
		}
	}
	in.Tags = normalizeTags(in.Tags)
}

func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// validate runs the schema and the sale >= cost rule.
func (in *ProductInput) validate() error {
	in.normalize()
	if err := validator.Check(in); err != nil {
		return err
	}
	if *in.SalePrice < *in.CostPrice {
		return apperror.Validation("Sale price cannot be lower than cost price", map[string]string{
			"salePrice": "must not be lower than costPrice",
		})
	}
	return nil
}

func (in *ProductInput) applyTo(p *model.Product) {
	p.Code = in.Code
	p.Name = in.Name
	p.Category = model.Category(in.Category)
	p.Description = in.Description
	p.Supplier = in.Supplier
	p.Tags = in.Tags
	p.Barcode = in.Barcode
	p.Unit = model.Unit(in.Unit)
	p.Quantity = *in.Quantity
	p.MinStock = *in.MinStock
	p.CostPrice = *in.CostPrice
	p.SalePrice = *in.SalePrice
	p.Status = model.ProductStatus(in.Status)
	p.Recalculate()
}

func inputFromProduct(p *model.Product) ProductInput {
	qty, minStock, cost, sale := p.Quantity, p.MinStock, p.CostPrice, p.SalePrice
	return ProductInput{
		Code:        p.Code,
		Name:        p.Name,
		Category:    string(p.Category),
		Description: p.Description,
		Supplier:    p.Supplier,
		Tags:        append([]string(nil), p.Tags...),
		Barcode:     p.Barcode,
		Unit:        string(p.Unit),
		Quantity:    &qty,
		MinStock:    &minStock,
		CostPrice:   &cost,
		SalePrice:   &sale,
		Status:      string(p.Status),
	}
}

// merge overlays the patch onto a full input.
func (patch *ProductPatch) merge(in ProductInput) ProductInput {
	if patch.Code != nil {
		in.Code = *patch.Code
	}
	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Category != nil {
		in.Category = *patch.Category
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Supplier != nil {
		in.Supplier = *patch.Supplier
	}
	if patch.Tags != nil {
		in.Tags = *patch.Tags
	}
	if patch.Barcode != nil {
		in.Barcode = patch.Barcode
	}
	if patch.Unit != nil {
		in.Unit = *patch.Unit
	}
	if patch.Quantity != nil {
		in.Quantity = patch.Quantity
	}
	if patch.MinStock != nil {
		in.MinStock = patch.MinStock
	}
	if patch.CostPrice != nil {
		in.CostPrice = patch.CostPrice
	}
	if patch.SalePrice != nil {
		in.SalePrice = patch.SalePrice
	}
	if patch.Status != nil {
		in.Status = *patch.Status
	}
	return in
}
