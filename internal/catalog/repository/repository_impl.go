package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]*domain.Package, error) {
	var packages []*domain.Package
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, price, aecoin_amount, image_url, is_active, created_at
		 FROM packages
		 WHERE is_active = TRUE
		 ORDER BY price ASC`,
	).Scan(&packages).Error
	if err != nil {
		return nil, err
	}
	return packages, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Package, error) {
	var pkg domain.Package
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, description, price, aecoin_amount, image_url, is_active, created_at
		 FROM packages WHERE id = ?`,
		id,
	).Scan(&pkg).Error
	if err != nil {
		return nil, err
	}
	if pkg.ID == 0 {
		return nil, nil
	}
	return &pkg, nil
}
