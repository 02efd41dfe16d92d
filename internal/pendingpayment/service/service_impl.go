package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/clock"
	"github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Node  *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	node  *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("pendingpayment.service"),
		node:  p.Node,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Open(ctx context.Context, req domain.OpenRequest) (domain.PendingPayment, error) {
	snapshot, err := json.Marshal(req.Items)
	if err != nil {
		return domain.PendingPayment{}, err
	}
	meta, err := json.Marshal(req.Meta)
	if err != nil {
		return domain.PendingPayment{}, err
	}

	now := s.clock.Now()
	payment := domain.PendingPayment{
		ID:           s.node.Generate(),
		UserID:       req.UserID,
		Provider:     req.Provider,
		ExternalID:   req.ExternalID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		Status:       domain.StatusCreated,
		CartSnapshot: snapshot,
		Metadata:     meta,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return domain.PendingPayment{}, err
	}

	s.log.Info("pending payment opened",
		zap.String("external_id", payment.ExternalID),
		zap.String("provider", payment.Provider),
		zap.Int64("amount", payment.Amount),
	)
	return payment, nil
}

func (s *Service) FindByExternalID(ctx context.Context, externalID string) (domain.PendingPayment, error) {
	payment, err := s.repo.FindByExternalID(ctx, s.db, externalID)
	if err != nil {
		return domain.PendingPayment{}, err
	}
	if payment == nil {
		return domain.PendingPayment{}, domain.ErrNotFound
	}
	return *payment, nil
}

func (s *Service) MarkSucceeded(ctx context.Context, externalID string) (bool, error) {
	return s.transition(ctx, externalID, domain.StatusSucceeded)
}

func (s *Service) MarkFailed(ctx context.Context, externalID string) (bool, error) {
	return s.transition(ctx, externalID, domain.StatusFailed)
}

func (s *Service) transition(ctx context.Context, externalID string, to domain.Status) (bool, error) {
	moved, err := s.repo.Transition(ctx, s.db, externalID, to)
	if err != nil {
		return false, err
	}
	if moved {
		s.log.Info("pending payment transitioned",
			zap.String("external_id", externalID),
			zap.String("status", string(to)),
		)
	}
	return moved, nil
}
