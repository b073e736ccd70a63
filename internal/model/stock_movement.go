package model

import "github.com/google/uuid"

type MovementOperation string

const (
	MovementCreate   MovementOperation = "create"
	MovementUpdate   MovementOperation = "update"
	MovementSet      MovementOperation = "set"
	MovementAdd      MovementOperation = "add"
	MovementSubtract MovementOperation = "subtract"
)

// StockMovement records one change of a product's quantity.
type StockMovement struct {
	BaseModel
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index" json:"productId"`
	Operation MovementOperation `gorm:"type:varchar(10);not null" json:"operation"`
	Delta     int               `gorm:"not null" json:"delta"` // After - Before
	Before    int               `gorm:"not null" json:"before"`
	After     int               `gorm:"not null" json:"after"`
}

// NewStockMovement returns nil when the quantity did not change on an update.
func NewStockMovement(productID uuid.UUID, op MovementOperation, before, after int, userID string) *StockMovement {
	if before == after && op != MovementCreate {
		return nil
	}
	m := &StockMovement{
		ProductID: productID,
		Operation: op,
		Delta:     after - before,
		Before:    before,
		After:     after,
	}
	m.CreatedBy = userID
	m.UpdatedBy = userID
	return m
}
