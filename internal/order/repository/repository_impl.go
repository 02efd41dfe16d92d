package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/order/domain"
	"github.com/nightmarket/aestore/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const orderSelect = `
SELECT id, user_id, payment_id, payment_provider, subtotal, discount,
       total_amount, currency, coupon_code, status, created_at
FROM orders`

func (r *repo) InsertIfAbsent(ctx context.Context, gdb *gorm.DB, order *domain.Order) (bool, error) {
	res := gdb.WithContext(ctx).Exec(
		`INSERT INTO orders
		 (id, user_id, payment_id, payment_provider, subtotal, discount,
		  total_amount, currency, coupon_code, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (payment_id) DO NOTHING`,
		order.ID, order.UserID, order.PaymentID, order.PaymentProvider,
		order.Subtotal, order.Discount, order.TotalAmount, order.Currency,
		order.CouponCode, order.Status, order.CreatedAt,
	)
	if res.Error != nil {
		if db.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := gdb.WithContext(ctx).Raw(orderSelect+` WHERE id = ?`, id).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) FindByPaymentID(ctx context.Context, gdb *gorm.DB, paymentID string) (*domain.Order, error) {
	var order domain.Order
	err := gdb.WithContext(ctx).Raw(orderSelect+` WHERE payment_id = ?`, paymentID).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	return &order, nil
}

func (r *repo) ListByUser(ctx context.Context, gdb *gorm.DB, userID snowflake.ID) ([]*domain.Order, error) {
	var orders []*domain.Order
	err := gdb.WithContext(ctx).Raw(
		orderSelect+` WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, gdb *gorm.DB, id snowflake.ID, status domain.Status) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE orders SET status = ? WHERE id = ?`,
		status, id,
	).Error
}

func (r *repo) InsertItem(ctx context.Context, gdb *gorm.DB, item *domain.OrderItem) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO order_items
		 (id, order_id, package_id, package_name, quantity, unit_price, aecoin_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OrderID, item.PackageID, item.PackageName,
		item.Quantity, item.UnitPrice, item.AecoinAmount,
	).Error
}

func (r *repo) ListItems(ctx context.Context, gdb *gorm.DB, orderID snowflake.ID) ([]*domain.OrderItem, error) {
	var items []*domain.OrderItem
	err := gdb.WithContext(ctx).Raw(
		`SELECT id, order_id, package_id, package_name, quantity, unit_price, aecoin_amount
		 FROM order_items WHERE order_id = ? ORDER BY id ASC`,
		orderID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) InsertCode(ctx context.Context, gdb *gorm.DB, code *domain.RedemptionCode) error {
	err := gdb.WithContext(ctx).Exec(
		`INSERT INTO redemption_codes (id, order_id, code, aecoin_amount, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		code.ID, code.OrderID, code.Code, code.AecoinAmount, code.CreatedAt,
	).Error
	if err != nil && db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateCode
	}
	return err
}

func (r *repo) ListCodes(ctx context.Context, gdb *gorm.DB, orderID snowflake.ID) ([]*domain.RedemptionCode, error) {
	var codes []*domain.RedemptionCode
	err := gdb.WithContext(ctx).Raw(
		`SELECT id, order_id, code, aecoin_amount, created_at
		 FROM redemption_codes WHERE order_id = ? ORDER BY id ASC`,
		orderID,
	).Scan(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}
