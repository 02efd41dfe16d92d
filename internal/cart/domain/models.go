package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CartItem is one package line in a user's cart. UnitPrice and AecoinAmount
// are denormalized from the package row at read time, not stored.
type CartItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID    snowflake.ID `gorm:"column:user_id;not null" json:"user_id"`
	PackageID snowflake.ID `gorm:"column:package_id;not null" json:"package_id"`
	Quantity  int64        `gorm:"not null" json:"quantity"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (CartItem) TableName() string { return "cart_items" }

// Line is a cart item joined with its package.
type Line struct {
	ID           snowflake.ID `json:"id"`
	PackageID    snowflake.ID `json:"package_id"`
	PackageName  string       `json:"package_name"`
	Quantity     int64        `json:"quantity"`
	UnitPrice    int64        `json:"unit_price"`
	AecoinAmount int64        `json:"aecoin_amount"`
}

type AddItemRequest struct {
	PackageID string `json:"package_id" binding:"required"`
	Quantity  int64  `json:"quantity"`
}

type UpdateQuantityRequest struct {
	Quantity int64 `json:"quantity" binding:"required"`
}
