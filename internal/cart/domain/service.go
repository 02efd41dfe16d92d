package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	List(ctx context.Context, userID snowflake.ID) ([]Line, error)
	Add(ctx context.Context, userID snowflake.ID, req AddItemRequest) (Line, error)
	UpdateQuantity(ctx context.Context, userID snowflake.ID, itemID string, quantity int64) (Line, error)
	Remove(ctx context.Context, userID snowflake.ID, itemID string) error
	Clear(ctx context.Context, userID snowflake.ID) error
}

type Repository interface {
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Line, error)
	FindLine(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID) (*Line, error)
	FindByUserAndPackage(ctx context.Context, db *gorm.DB, userID, packageID snowflake.ID) (*CartItem, error)
	Insert(ctx context.Context, db *gorm.DB, item *CartItem) error
	SetQuantity(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID, quantity int64) (bool, error)
	Delete(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID) (bool, error)
	DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrItemNotFound    = errors.New("item_not_found")
	ErrPackageNotFound = errors.New("package_not_found")
)
