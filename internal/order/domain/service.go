package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Service interface {
	// ListByUser returns the user's orders, newest first.
	ListByUser(ctx context.Context, userID snowflake.ID) ([]Order, error)
	// Get returns one order with items and codes, scoped to the owner.
	Get(ctx context.Context, userID snowflake.ID, orderID string) (Detail, error)
	// GetByPaymentID loads the order claimed for a payment, if any.
	GetByPaymentID(ctx context.Context, paymentID string) (*Order, error)
}

type Repository interface {
	// InsertIfAbsent writes the order unless one already holds its
	// payment_id. Reports false without error when the row lost the race.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, order *Order) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	FindByPaymentID(ctx context.Context, db *gorm.DB, paymentID string) (*Order, error)
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*Order, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
	InsertItem(ctx context.Context, db *gorm.DB, item *OrderItem) error
	ListItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*OrderItem, error)
	InsertCode(ctx context.Context, db *gorm.DB, code *RedemptionCode) error
	ListCodes(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]*RedemptionCode, error)
}

var (
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
	ErrDuplicateCode = errors.New("duplicate_code")
)
