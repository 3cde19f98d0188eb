package service

import (
	"context"
	"fmt"
	"time"

	"minecraft-store/internal/client"
	"minecraft-store/internal/dto"
	"minecraft-store/internal/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CheckoutService interface {
	// Checkout returns the payment URL of the session basket. The session
	// keeps its basket until a completion signal arrives.
	Checkout(ctx context.Context, st *session.State) (*dto.CheckoutResult, error)
	// BuyNow puts one package in the basket and checks out, falling back
	// to a direct payment when the basket flow fails.
	BuyNow(ctx context.Context, st *session.State, req dto.CheckoutRequest, ip string) (*dto.CheckoutResult, error)
	DirectPurchase(ctx context.Context, req dto.DirectPurchaseRequest) (*dto.CheckoutResult, error)
	Complete(ctx context.Context, st *session.State, transactionID string) (*dto.CheckoutStatusResult, error)
	Cancel(st *session.State)
}

type checkoutServiceImpl struct {
	tebex   client.TebexClient
	baskets BasketService
	catalog CatalogService
	logger  *zap.Logger
	now     func() time.Time
}

func NewCheckoutService(
	tebex client.TebexClient,
	baskets BasketService,
	catalog CatalogService,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		tebex:   tebex,
		baskets: baskets,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, st *session.State) (*dto.CheckoutResult, error) {
	if st.BasketIdent == "" {
		return nil, ErrNoBasket
	}

	url, err := s.tebex.CheckoutURL(ctx, st.BasketIdent)
	if err != nil {
		return nil, fmt.Errorf("checkout basket %s: %w", st.BasketIdent, err)
	}
	if err := st.Transition(session.EventCheckout); err != nil {
		return nil, err
	}

	s.logger.Info("checkout started", zap.String("basket", st.BasketIdent))
	return &dto.CheckoutResult{Result: dto.Result{Success: true}, URL: url}, nil
}

func (s *checkoutServiceImpl) BuyNow(ctx context.Context, st *session.State, req dto.CheckoutRequest, ip string) (*dto.CheckoutResult, error) {
	if req.PackageID <= 0 {
		return nil, ErrPackageRequired
	}
	if req.Username == "" {
		return nil, ErrUsernameRequired
	}

	res, err := s.basketCheckout(ctx, st, req, ip)
	if err == nil {
		return res, nil
	}
	s.logger.Warn("basket checkout failed, trying direct payment",
		zap.Int("package", req.PackageID), zap.Error(err))

	res, err = s.DirectPurchase(ctx, dto.DirectPurchaseRequest{PackageID: req.PackageID, Username: req.Username})
	if err != nil {
		return nil, fmt.Errorf("direct payment failed: %w", err)
	}
	return res, nil
}

func (s *checkoutServiceImpl) basketCheckout(ctx context.Context, st *session.State, req dto.CheckoutRequest, ip string) (*dto.CheckoutResult, error) {
	ident, err := s.baskets.GetOrCreateBasket(ctx, st, req.Username, ip)
	if err != nil {
		return nil, err
	}
	if err := s.tebex.AddPackage(ctx, ident, req.PackageID, 1, req.Username); err != nil {
		return nil, err
	}
	if err := st.Transition(session.EventAdd); err != nil {
		return nil, err
	}
	s.baskets.Basket(ctx, st)
	return s.Checkout(ctx, st)
}

func (s *checkoutServiceImpl) DirectPurchase(ctx context.Context, req dto.DirectPurchaseRequest) (*dto.CheckoutResult, error) {
	if req.PackageID <= 0 {
		return nil, ErrPackageRequired
	}
	if req.Username == "" {
		return nil, ErrUsernameRequired
	}

	link, err := s.tebex.CreatePayment(ctx, client.CreatePaymentRequest{
		Username:  req.Username,
		PackageID: req.PackageID,
		Price:     s.resolvePrice(ctx, req),
		Note:      "Direct purchase for " + req.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("create direct payment: %w", err)
	}

	s.logger.Info("direct payment created", zap.Int("package", req.PackageID), zap.String("username", req.Username))
	return &dto.CheckoutResult{Result: dto.Result{Success: true}, URL: link.URL, DirectPayment: true}, nil
}

// resolvePrice prefers the caller's price, then the catalog, then the
// plugin API. Zero lets Tebex charge the package's own price.
func (s *checkoutServiceImpl) resolvePrice(ctx context.Context, req dto.DirectPurchaseRequest) decimal.Decimal {
	if req.Price.IsPositive() {
		return req.Price
	}
	if p, ok := s.catalog.FindPackage(ctx, req.PackageID); ok {
		return p.Price
	}
	p, err := s.tebex.GetPackage(ctx, req.PackageID)
	if err != nil {
		s.logger.Warn("package price lookup failed", zap.Int("package", req.PackageID), zap.Error(err))
		return decimal.Zero
	}
	return p.Price
}

func (s *checkoutServiceImpl) Complete(_ context.Context, st *session.State, transactionID string) (*dto.CheckoutStatusResult, error) {
	if transactionID == "" {
		return nil, ErrTransactionRequired
	}

	if err := st.Transition(session.EventComplete); err != nil {
		return nil, err
	}
	s.logger.Info("checkout completed", zap.String("basket", st.BasketIdent), zap.String("transaction", transactionID))
	st.Reset()

	return &dto.CheckoutStatusResult{
		Result: dto.Result{Success: true},
		Transaction: &dto.TransactionStatus{
			ID:        transactionID,
			Status:    "complete",
			Timestamp: s.now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func (s *checkoutServiceImpl) Cancel(st *session.State) {
	if err := st.Transition(session.EventCancel); err != nil {
		s.logger.Warn("cancel basket", zap.Error(err))
	}
	st.Reset()
}
