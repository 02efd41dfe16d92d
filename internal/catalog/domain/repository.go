package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ListActive(ctx context.Context, db *gorm.DB) ([]*Package, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Package, error)
}
