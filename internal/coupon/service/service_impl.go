package service

import (
	"context"

	"github.com/nightmarket/aestore/internal/clock"
	"github.com/nightmarket/aestore/internal/coupon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("coupon.service"),
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Lookup(ctx context.Context, code string) (domain.Coupon, error) {
	coupon, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Coupon{}, err
	}
	if coupon == nil {
		return domain.Coupon{}, domain.ErrCouponNotFound
	}
	return *coupon, nil
}

func (s *Service) RecordUse(ctx context.Context, code string) error {
	return s.repo.IncrementUse(ctx, s.db, code)
}
