package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	// StatusPaid marks an order row claimed for a settled payment but not
	// yet provisioned.
	StatusPaid Status = "paid"
	// StatusFulfilled marks codes issued and recorded.
	StatusFulfilled Status = "fulfilled"
)

// Order is the durable record of a confirmed payment. PaymentID carries a
// unique constraint; winning that insert is what makes fulfillment run at
// most once per payment.
type Order struct {
	ID              snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID          snowflake.ID `gorm:"column:user_id;not null" json:"user_id"`
	PaymentID       string       `gorm:"column:payment_id;not null;uniqueIndex" json:"payment_id"`
	PaymentProvider string       `gorm:"column:payment_provider;not null" json:"payment_provider"`
	Subtotal        int64        `gorm:"not null" json:"subtotal"`
	Discount        int64        `gorm:"not null" json:"discount"`
	TotalAmount     int64        `gorm:"column:total_amount;not null" json:"total_amount"`
	Currency        string       `gorm:"not null" json:"currency"`
	CouponCode      string       `gorm:"column:coupon_code" json:"coupon_code,omitempty"`
	Status          Status       `gorm:"not null;default:paid" json:"status"`
	CreatedAt       time.Time    `gorm:"not null" json:"created_at"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID      snowflake.ID `gorm:"column:order_id;not null" json:"order_id"`
	PackageID    snowflake.ID `gorm:"column:package_id;not null" json:"package_id"`
	PackageName  string       `gorm:"column:package_name;not null" json:"package_name"`
	Quantity     int64        `gorm:"not null" json:"quantity"`
	UnitPrice    int64        `gorm:"column:unit_price;not null" json:"unit_price"`
	AecoinAmount int64        `gorm:"column:aecoin_amount;not null" json:"aecoin_amount"`
}

func (OrderItem) TableName() string { return "order_items" }

type RedemptionCode struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID      snowflake.ID `gorm:"column:order_id;not null" json:"order_id"`
	Code         string       `gorm:"not null;uniqueIndex" json:"code"`
	AecoinAmount int64        `gorm:"column:aecoin_amount;not null" json:"aecoin_amount"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

func (RedemptionCode) TableName() string { return "redemption_codes" }

// Detail is an order joined with its items and codes for API reads.
type Detail struct {
	Order Order            `json:"order"`
	Items []OrderItem      `json:"items"`
	Codes []RedemptionCode `json:"codes"`
}
