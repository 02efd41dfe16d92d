package repository

import (
	"context"
	"strings"

	"github.com/nightmarket/aestore/internal/coupon/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT id, code, type, value, min_purchase, usage_limit, used_count,
		        expires_at, is_active, created_at
		 FROM coupons WHERE UPPER(code) = ?`,
		strings.ToUpper(code),
	).Scan(&coupon).Error
	if err != nil {
		return nil, err
	}
	if coupon.ID == 0 {
		return nil, nil
	}
	return &coupon, nil
}

func (r *repo) IncrementUse(ctx context.Context, db *gorm.DB, code string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE coupons SET used_count = used_count + 1 WHERE UPPER(code) = ?`,
		strings.ToUpper(code),
	).Error
}
