package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Package is a purchasable AECOIN denomination. Price is in minor currency
// units (sen); AecoinAmount is the in-game currency granted per unit.
type Package struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Description  string       `json:"description,omitempty"`
	Price        int64        `gorm:"not null" json:"price"`
	AecoinAmount int64        `gorm:"column:aecoin_amount;not null" json:"aecoin_amount"`
	ImageURL     string       `gorm:"column:image_url" json:"image_url,omitempty"`
	IsActive     bool         `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

func (Package) TableName() string { return "packages" }
