package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/cart/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const lineSelect = `
SELECT ci.id, ci.package_id, p.name AS package_name, ci.quantity,
       p.price AS unit_price, p.aecoin_amount
FROM cart_items ci
JOIN packages p ON p.id = ci.package_id`

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]*domain.Line, error) {
	var lines []*domain.Line
	err := db.WithContext(ctx).Raw(
		lineSelect+` WHERE ci.user_id = ? ORDER BY ci.created_at ASC`,
		userID,
	).Scan(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) FindLine(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID) (*domain.Line, error) {
	var line domain.Line
	err := db.WithContext(ctx).Raw(
		lineSelect+` WHERE ci.user_id = ? AND ci.id = ?`,
		userID, itemID,
	).Scan(&line).Error
	if err != nil {
		return nil, err
	}
	if line.ID == 0 {
		return nil, nil
	}
	return &line, nil
}

func (r *repo) FindByUserAndPackage(ctx context.Context, db *gorm.DB, userID, packageID snowflake.ID) (*domain.CartItem, error) {
	var item domain.CartItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, package_id, quantity, created_at
		 FROM cart_items WHERE user_id = ? AND package_id = ?`,
		userID, packageID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.CartItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO cart_items (id, user_id, package_id, quantity, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.UserID, item.PackageID, item.Quantity, item.CreatedAt,
	).Error
}

func (r *repo) SetQuantity(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID, quantity int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE cart_items SET quantity = ? WHERE user_id = ? AND id = ?`,
		quantity, userID, itemID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, userID, itemID snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM cart_items WHERE user_id = ? AND id = ?`,
		userID, itemID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) DeleteByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM cart_items WHERE user_id = ?`,
		userID,
	).Error
}
