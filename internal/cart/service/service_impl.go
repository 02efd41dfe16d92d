package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/nightmarket/aestore/internal/cart/domain"
	catalogdomain "github.com/nightmarket/aestore/internal/catalog/domain"
	"github.com/nightmarket/aestore/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxQuantity = 99

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Node        *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	node        *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("cart.service"),
		node:        p.Node,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
	}
}

func (s *Service) List(ctx context.Context, userID snowflake.ID) ([]domain.Line, error) {
	items, err := s.repo.ListByUser(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	lines := make([]domain.Line, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		lines = append(lines, *item)
	}
	return lines, nil
}

func (s *Service) Add(ctx context.Context, userID snowflake.ID, req domain.AddItemRequest) (domain.Line, error) {
	packageID, err := snowflake.ParseString(req.PackageID)
	if err != nil {
		return domain.Line{}, domain.ErrInvalidID
	}

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 || quantity > maxQuantity {
		return domain.Line{}, domain.ErrInvalidQuantity
	}

	pkg, err := s.catalogRepo.FindByID(ctx, s.db, packageID)
	if err != nil {
		return domain.Line{}, err
	}
	if pkg == nil || !pkg.IsActive {
		return domain.Line{}, domain.ErrPackageNotFound
	}

	// Adding a package already in the cart bumps its quantity instead of
	// creating a second line.
	existing, err := s.repo.FindByUserAndPackage(ctx, s.db, userID, packageID)
	if err != nil {
		return domain.Line{}, err
	}
	if existing != nil {
		merged := existing.Quantity + quantity
		if merged > maxQuantity {
			merged = maxQuantity
		}
		if _, err := s.repo.SetQuantity(ctx, s.db, userID, existing.ID, merged); err != nil {
			return domain.Line{}, err
		}
		return s.line(ctx, userID, existing.ID)
	}

	item := &domain.CartItem{
		ID:        s.node.Generate(),
		UserID:    userID,
		PackageID: packageID,
		Quantity:  quantity,
		CreatedAt: s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, s.db, item); err != nil {
		return domain.Line{}, err
	}
	return s.line(ctx, userID, item.ID)
}

func (s *Service) UpdateQuantity(ctx context.Context, userID snowflake.ID, itemID string, quantity int64) (domain.Line, error) {
	parsed, err := snowflake.ParseString(itemID)
	if err != nil {
		return domain.Line{}, domain.ErrInvalidID
	}
	if quantity < 1 || quantity > maxQuantity {
		return domain.Line{}, domain.ErrInvalidQuantity
	}
	updated, err := s.repo.SetQuantity(ctx, s.db, userID, parsed, quantity)
	if err != nil {
		return domain.Line{}, err
	}
	if !updated {
		return domain.Line{}, domain.ErrItemNotFound
	}
	return s.line(ctx, userID, parsed)
}

func (s *Service) Remove(ctx context.Context, userID snowflake.ID, itemID string) error {
	parsed, err := snowflake.ParseString(itemID)
	if err != nil {
		return domain.ErrInvalidID
	}
	deleted, err := s.repo.Delete(ctx, s.db, userID, parsed)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrItemNotFound
	}
	return nil
}

func (s *Service) Clear(ctx context.Context, userID snowflake.ID) error {
	return s.repo.DeleteByUser(ctx, s.db, userID)
}

func (s *Service) line(ctx context.Context, userID, itemID snowflake.ID) (domain.Line, error) {
	line, err := s.repo.FindLine(ctx, s.db, userID, itemID)
	if err != nil {
		return domain.Line{}, err
	}
	if line == nil {
		return domain.Line{}, domain.ErrItemNotFound
	}
	return *line, nil
}
