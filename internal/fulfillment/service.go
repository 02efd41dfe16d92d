package fulfillment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bwmarrin/snowflake"
	cartdomain "github.com/nightmarket/aestore/internal/cart/domain"
	"github.com/nightmarket/aestore/internal/clock"
	coupondomain "github.com/nightmarket/aestore/internal/coupon/domain"
	"github.com/nightmarket/aestore/internal/metrics"
	orderdomain "github.com/nightmarket/aestore/internal/order/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"github.com/nightmarket/aestore/internal/providers/email"
	"github.com/nightmarket/aestore/internal/providers/gameserver"
	"github.com/nightmarket/aestore/internal/redemption"
	userdomain "github.com/nightmarket/aestore/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// codeInsertRetries caps regeneration attempts when a freshly minted code
// collides with an existing one.
const codeInsertRetries = 5

// Service turns a confirmed payment into an order with redemption codes.
// Every caller that has established "this payment is real and matches the
// ledger" funnels through Fulfill, whichever provider path got it there.
type Service interface {
	Fulfill(ctx context.Context, payment pendingdomain.PendingPayment) (*orderdomain.Order, error)
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Node      *snowflake.Node
	Clock     clock.Clock
	Orders    orderdomain.Repository
	Coupons   coupondomain.Service
	Cart      cartdomain.Repository
	Users     userdomain.Repository
	Ledger    pendingdomain.Service
	Generator *redemption.Generator
	Email     email.Provider
	Sink      gameserver.Sink
	Metrics   *metrics.Metrics
}

type service struct {
	db        *gorm.DB
	log       *zap.Logger
	node      *snowflake.Node
	clock     clock.Clock
	orders    orderdomain.Repository
	coupons   coupondomain.Service
	cart      cartdomain.Repository
	users     userdomain.Repository
	ledger    pendingdomain.Service
	generator *redemption.Generator
	email     email.Provider
	sink      gameserver.Sink
	metrics   *metrics.Metrics
}

func New(p Params) Service {
	return &service{
		db:        p.DB,
		log:       p.Log.Named("fulfillment.service"),
		node:      p.Node,
		clock:     p.Clock,
		orders:    p.Orders,
		coupons:   p.Coupons,
		cart:      p.Cart,
		users:     p.Users,
		ledger:    p.Ledger,
		generator: p.Generator,
		email:     p.Email,
		sink:      p.Sink,
		metrics:   p.Metrics,
	}
}

// Fulfill creates the order for a confirmed payment, issues its codes, and
// fires the side effects. The unique payment_id constraint decides who
// fulfills when pushes, redirects and fallback polls race: exactly one
// caller wins the insert, everyone else gets the existing order back.
func (s *service) Fulfill(ctx context.Context, payment pendingdomain.PendingPayment) (*orderdomain.Order, error) {
	var items []pendingdomain.SnapshotItem
	if err := json.Unmarshal(payment.CartSnapshot, &items); err != nil {
		return nil, err
	}
	var meta pendingdomain.Meta
	if len(payment.Metadata) > 0 {
		if err := json.Unmarshal(payment.Metadata, &meta); err != nil {
			return nil, err
		}
	}

	order := &orderdomain.Order{
		ID:              s.node.Generate(),
		UserID:          payment.UserID,
		PaymentID:       payment.ExternalID,
		PaymentProvider: payment.Provider,
		Subtotal:        meta.Subtotal,
		Discount:        meta.Discount,
		TotalAmount:     payment.Amount,
		Currency:        payment.Currency,
		CouponCode:      meta.CouponCode,
		Status:          orderdomain.StatusPaid,
		CreatedAt:       s.clock.Now(),
	}

	won, err := s.orders.InsertIfAbsent(ctx, s.db, order)
	if err != nil {
		return nil, err
	}
	if !won {
		existing, err := s.orders.FindByPaymentID(ctx, s.db, payment.ExternalID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.log.Info("payment already fulfilled",
				zap.String("external_id", payment.ExternalID),
				zap.String("order_id", existing.ID.String()),
			)
			return existing, nil
		}
		return nil, orderdomain.ErrNotFound
	}

	codes, err := s.provision(ctx, order, items)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, s.db, order.ID, orderdomain.StatusFulfilled); err != nil {
		return nil, err
	}
	order.Status = orderdomain.StatusFulfilled
	s.metrics.OrdersFulfilled.Inc()

	// From here on the sale is final. Each remaining effect fails alone.
	if order.CouponCode != "" {
		if err := s.coupons.RecordUse(ctx, order.CouponCode); err != nil {
			s.sideEffectFailed("coupon_increment", order, err)
		}
	}
	if err := s.cart.DeleteByUser(ctx, s.db, order.UserID); err != nil {
		s.sideEffectFailed("cart_clear", order, err)
	}
	if _, err := s.ledger.MarkSucceeded(ctx, payment.ExternalID); err != nil {
		s.sideEffectFailed("ledger_mark", order, err)
	}
	s.notify(ctx, order, items, codes)

	s.log.Info("order fulfilled",
		zap.String("order_id", order.ID.String()),
		zap.String("external_id", payment.ExternalID),
		zap.Int64("total", order.TotalAmount),
		zap.Int("codes", len(codes)),
	)
	return order, nil
}

// provision writes order items and issues one code per unit purchased.
func (s *service) provision(ctx context.Context, order *orderdomain.Order, items []pendingdomain.SnapshotItem) ([]orderdomain.RedemptionCode, error) {
	var codes []orderdomain.RedemptionCode
	for _, item := range items {
		if err := s.orders.InsertItem(ctx, s.db, &orderdomain.OrderItem{
			ID:           s.node.Generate(),
			OrderID:      order.ID,
			PackageID:    item.PackageID,
			PackageName:  item.PackageName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			AecoinAmount: item.AecoinAmount,
		}); err != nil {
			return nil, err
		}

		for i := int64(0); i < item.Quantity; i++ {
			code, err := s.issueCode(ctx, order.ID, item.AecoinAmount)
			if err != nil {
				return nil, err
			}
			codes = append(codes, *code)
		}
	}
	return codes, nil
}

// issueCode mints and stores a code, regenerating on the rare collision.
func (s *service) issueCode(ctx context.Context, orderID snowflake.ID, packageAmount int64) (*orderdomain.RedemptionCode, error) {
	var lastErr error
	for attempt := 0; attempt < codeInsertRetries; attempt++ {
		value, err := s.generator.Generate(packageAmount)
		if err != nil {
			return nil, err
		}
		code := &orderdomain.RedemptionCode{
			ID:           s.node.Generate(),
			OrderID:      orderID,
			Code:         value,
			AecoinAmount: s.generator.Value(packageAmount),
			CreatedAt:    s.clock.Now(),
		}
		err = s.orders.InsertCode(ctx, s.db, code)
		if err == nil {
			s.metrics.CodesIssued.Inc()
			if pushErr := s.sink.PushCode(ctx, gameserver.Code{
				Code:         code.Code,
				AecoinAmount: code.AecoinAmount,
			}); pushErr != nil {
				s.metrics.ProvisioningFailures.WithLabelValues("gameserver_push").Inc()
				s.log.Error("game server push failed",
					zap.String("code", code.Code),
					zap.Error(pushErr),
				)
			}
			return code, nil
		}
		if !errors.Is(err, orderdomain.ErrDuplicateCode) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (s *service) sideEffectFailed(stage string, order *orderdomain.Order, err error) {
	s.metrics.ProvisioningFailures.WithLabelValues(stage).Inc()
	s.log.Error("post-fulfillment side effect failed",
		zap.String("stage", stage),
		zap.String("order_id", order.ID.String()),
		zap.Error(err),
	)
}
