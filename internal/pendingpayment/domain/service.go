package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// OpenRequest carries everything needed to record a new ledger entry.
type OpenRequest struct {
	UserID     snowflake.ID
	Provider   string
	ExternalID string
	Amount     int64
	Currency   string
	Items      []SnapshotItem
	Meta       Meta
}

type Service interface {
	// Open records a freshly minted payment intent in status created.
	Open(ctx context.Context, req OpenRequest) (PendingPayment, error)
	// FindByExternalID loads the ledger row for a provider payment ID.
	FindByExternalID(ctx context.Context, externalID string) (PendingPayment, error)
	// MarkSucceeded moves created -> succeeded. Reports false when the row
	// was already terminal, which callers treat as "someone else won".
	MarkSucceeded(ctx context.Context, externalID string) (bool, error)
	// MarkFailed moves created -> failed, same idempotency contract.
	MarkFailed(ctx context.Context, externalID string) (bool, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, payment *PendingPayment) error
	FindByExternalID(ctx context.Context, db *gorm.DB, externalID string) (*PendingPayment, error)
	// Transition updates status only when the row is still in created.
	Transition(ctx context.Context, db *gorm.DB, externalID string, to Status) (bool, error)
}

var (
	ErrNotFound        = errors.New("pending_payment_not_found")
	ErrDuplicateIntent = errors.New("duplicate_intent")
)
