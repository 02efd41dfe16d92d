package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	// StatusCreated marks an intent minted but not yet reconciled.
	StatusCreated Status = "created"
	// StatusSucceeded marks a payment confirmed and handed to fulfillment.
	StatusSucceeded Status = "succeeded"
	// StatusFailed marks a payment the provider reported as failed or that
	// failed reconciliation checks. Terminal, like succeeded.
	StatusFailed Status = "failed"
)

// PendingPayment is the ledger row for one checkout attempt. ExternalID is
// the provider's identifier for the payment and the key every later
// notification is matched against. CartSnapshot freezes the priced cart at
// intent time; fulfillment reads only the snapshot, never the live cart.
type PendingPayment struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	UserID       snowflake.ID   `gorm:"column:user_id;not null" json:"user_id"`
	Provider     string         `gorm:"not null" json:"provider"`
	ExternalID   string         `gorm:"column:external_id;not null;uniqueIndex" json:"external_id"`
	Amount       int64          `gorm:"not null" json:"amount"`
	Currency     string         `gorm:"not null" json:"currency"`
	Status       Status         `gorm:"not null;default:created" json:"status"`
	CartSnapshot datatypes.JSON `gorm:"column:cart_snapshot" json:"cart_snapshot"`
	Metadata     datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (PendingPayment) TableName() string { return "pending_payments" }

// SnapshotItem is one priced line frozen into the cart snapshot.
type SnapshotItem struct {
	PackageID    snowflake.ID `json:"package_id"`
	PackageName  string       `json:"package_name"`
	Quantity     int64        `json:"quantity"`
	UnitPrice    int64        `json:"unit_price"`
	AecoinAmount int64        `json:"aecoin_amount"`
}

// Meta carries pricing figures and provider bookkeeping alongside the
// snapshot.
type Meta struct {
	Subtotal            int64  `json:"subtotal"`
	Discount            int64  `json:"discount"`
	CouponCode          string `json:"coupon_code,omitempty"`
	ExternalReferenceNo string `json:"external_reference_no,omitempty"`
}
