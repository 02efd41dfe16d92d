package repository

import (
	"context"

	"github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"github.com/nightmarket/aestore/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, payment *domain.PendingPayment) error {
	err := gdb.WithContext(ctx).Exec(
		`INSERT INTO pending_payments
		 (id, user_id, provider, external_id, amount, currency, status,
		  cart_snapshot, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.UserID, payment.Provider, payment.ExternalID,
		payment.Amount, payment.Currency, payment.Status,
		payment.CartSnapshot, payment.Metadata,
		payment.CreatedAt, payment.UpdatedAt,
	).Error
	if err != nil && db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateIntent
	}
	return err
}

func (r *repo) FindByExternalID(ctx context.Context, gdb *gorm.DB, externalID string) (*domain.PendingPayment, error) {
	var payment domain.PendingPayment
	err := gdb.WithContext(ctx).Raw(
		`SELECT id, user_id, provider, external_id, amount, currency, status,
		        cart_snapshot, metadata, created_at, updated_at
		 FROM pending_payments WHERE external_id = ?`,
		externalID,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) Transition(ctx context.Context, gdb *gorm.DB, externalID string, to domain.Status) (bool, error) {
	res := gdb.WithContext(ctx).Exec(
		`UPDATE pending_payments
		 SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE external_id = ? AND status = ?`,
		to, externalID, domain.StatusCreated,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
