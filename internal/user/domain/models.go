package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Email     string       `gorm:"not null;uniqueIndex" json:"email"`
	Name      string       `json:"name,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
}

var ErrNotFound = errors.New("not_found")
