package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/catalog/domain"
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
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Package, error) {
	items, err := s.repo.ListActive(ctx, s.db)
	if err != nil {
		return nil, err
	}
	packages := make([]domain.Package, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		packages = append(packages, *item)
	}
	return packages, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Package, error) {
	parsed, err := snowflake.ParseString(id)
	if err != nil {
		return domain.Package{}, domain.ErrInvalidID
	}
	pkg, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Package{}, err
	}
	if pkg == nil {
		return domain.Package{}, domain.ErrNotFound
	}
	return *pkg, nil
}
