package checkout

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	cartdomain "github.com/nightmarket/aestore/internal/cart/domain"
	"github.com/nightmarket/aestore/internal/clock"
	"github.com/nightmarket/aestore/internal/config"
	coupondomain "github.com/nightmarket/aestore/internal/coupon/domain"
	"github.com/nightmarket/aestore/internal/payment/adapters"
	paymentdomain "github.com/nightmarket/aestore/internal/payment/domain"
	pendingdomain "github.com/nightmarket/aestore/internal/pendingpayment/domain"
	"github.com/nightmarket/aestore/internal/pricing"
	userdomain "github.com/nightmarket/aestore/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateIntentRequest struct {
	Provider   string `json:"provider" binding:"required"`
	CouponCode string `json:"coupon_code"`
}

// CreateIntentResponse hands the client what it needs to finish paying.
// Handle is set for embedded flows (Stripe client secret), PaymentURL for
// redirect flows (ToyyibPay hosted page).
type CreateIntentResponse struct {
	Provider   string        `json:"provider"`
	ExternalID string        `json:"external_id"`
	Handle     string        `json:"handle,omitempty"`
	PaymentURL string        `json:"payment_url,omitempty"`
	Quote      pricing.Quote `json:"quote"`
}

type Service interface {
	// CreateIntent prices the cart server-side, mints a provider payment for
	// that exact amount, and opens the ledger row every later notification
	// will be reconciled against.
	CreateIntent(ctx context.Context, userID snowflake.ID, req CreateIntentRequest) (CreateIntentResponse, error)
	// PreviewQuote prices the cart with an optional coupon without touching
	// any provider.
	PreviewQuote(ctx context.Context, userID snowflake.ID, couponCode string) (pricing.Quote, error)
}

var ErrEmptyCart = pricing.ErrEmptyCart

type Params struct {
	fx.In

	Config   *config.Config
	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Cart     cartdomain.Service
	Coupons  coupondomain.Service
	Users    userdomain.Repository
	Registry *adapters.Registry
	Ledger   pendingdomain.Service
}

type service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	cart     cartdomain.Service
	coupons  coupondomain.Service
	users    userdomain.Repository
	registry *adapters.Registry
	ledger   pendingdomain.Service
}

func New(p Params) Service {
	return &service{
		cfg:      p.Config,
		db:       p.DB,
		log:      p.Log.Named("checkout.service"),
		clock:    p.Clock,
		cart:     p.Cart,
		coupons:  p.Coupons,
		users:    p.Users,
		registry: p.Registry,
		ledger:   p.Ledger,
	}
}

func (s *service) CreateIntent(ctx context.Context, userID snowflake.ID, req CreateIntentRequest) (CreateIntentResponse, error) {
	adapter, err := s.registry.Get(req.Provider)
	if err != nil {
		return CreateIntentResponse{}, err
	}

	lines, quote, err := s.price(ctx, userID, req.CouponCode)
	if err != nil {
		return CreateIntentResponse{}, err
	}

	buyer, err := s.users.FindByID(ctx, s.db, userID)
	if err != nil {
		return CreateIntentResponse{}, err
	}
	if buyer == nil {
		return CreateIntentResponse{}, userdomain.ErrNotFound
	}

	reference := uuid.NewString()
	intent, err := adapter.CreateIntent(ctx, paymentdomain.CreateIntentRequest{
		Amount:      quote.Total,
		Currency:    s.cfg.Currency,
		Reference:   reference,
		Description: fmt.Sprintf("AECOIN purchase (%d items)", len(lines)),
		BillName:    buyer.Name,
		BillEmail:   buyer.Email,
		BillPhone:   buyer.Phone,
		ReturnURL:   s.cfg.BaseURL + "/api/payments/" + req.Provider + "/return",
		CallbackURL: s.cfg.BaseURL + "/api/payments/" + req.Provider + "/callback",
	})
	if err != nil {
		return CreateIntentResponse{}, err
	}

	items := make([]pendingdomain.SnapshotItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, pendingdomain.SnapshotItem{
			PackageID:    line.PackageID,
			PackageName:  line.PackageName,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			AecoinAmount: line.AecoinAmount,
		})
	}

	_, err = s.ledger.Open(ctx, pendingdomain.OpenRequest{
		UserID:     userID,
		Provider:   req.Provider,
		ExternalID: intent.ExternalID,
		Amount:     quote.Total,
		Currency:   s.cfg.Currency,
		Items:      items,
		Meta: pendingdomain.Meta{
			Subtotal:            quote.Subtotal,
			Discount:            quote.Discount,
			CouponCode:          quote.CouponCode,
			ExternalReferenceNo: reference,
		},
	})
	if err != nil {
		return CreateIntentResponse{}, err
	}

	return CreateIntentResponse{
		Provider:   req.Provider,
		ExternalID: intent.ExternalID,
		Handle:     intent.Handle,
		PaymentURL: intent.PaymentURL,
		Quote:      quote,
	}, nil
}

func (s *service) PreviewQuote(ctx context.Context, userID snowflake.ID, couponCode string) (pricing.Quote, error) {
	_, quote, err := s.price(ctx, userID, couponCode)
	return quote, err
}

func (s *service) price(ctx context.Context, userID snowflake.ID, couponCode string) ([]cartdomain.Line, pricing.Quote, error) {
	lines, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, pricing.Quote{}, err
	}

	var coupon *coupondomain.Coupon
	if couponCode != "" {
		found, err := s.coupons.Lookup(ctx, couponCode)
		if err != nil {
			return nil, pricing.Quote{}, err
		}
		coupon = &found
	}

	quote, err := pricing.Evaluate(lines, coupon, s.clock.Now())
	if err != nil {
		return nil, pricing.Quote{}, err
	}
	return lines, quote, nil
}

var Module = fx.Module("checkout.service",
	fx.Provide(New),
)
