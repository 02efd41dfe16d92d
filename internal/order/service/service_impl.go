package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("order.service"),
		repo: p.Repo,
	}
}

func (s *Service) ListByUser(ctx context.Context, userID snowflake.ID) ([]domain.Order, error) {
	items, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		orders = append(orders, *item)
	}
	return orders, nil
}

func (s *Service) Get(ctx context.Context, userID snowflake.ID, orderID string) (domain.Detail, error) {
	parsed, err := snowflake.ParseString(orderID)
	if err != nil {
		return domain.Detail{}, domain.ErrInvalidID
	}

	order, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Detail{}, err
	}
	if order == nil || order.UserID != userID {
		return domain.Detail{}, domain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, order.ID)
	if err != nil {
		return domain.Detail{}, err
	}
	codes, err := s.repo.ListCodes(ctx, s.db, order.ID)
	if err != nil {
		return domain.Detail{}, err
	}

	detail := domain.Detail{Order: *order}
	for _, item := range items {
		detail.Items = append(detail.Items, *item)
	}
	for _, code := range codes {
		detail.Codes = append(detail.Codes, *code)
	}
	return detail, nil
}

func (s *Service) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	return s.repo.FindByPaymentID(ctx, s.db, paymentID)
}
