package service

import (
	"context"
	"fmt"
	"strings"

	"minecraft-store/internal/client"
	"minecraft-store/internal/dto"
	"minecraft-store/internal/model"
	"minecraft-store/internal/session"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const localOnlyMessage = "The store could not be reached. Your basket was updated on this device only."

// BasketService drives the visitor's provider basket. Every method works
// on the session state passed in; the caller persists it afterwards.
type BasketService interface {
	GetOrCreateBasket(ctx context.Context, st *session.State, username, ip string) (string, error)
	Basket(ctx context.Context, st *session.State) *dto.BasketResult
	AddItem(ctx context.Context, st *session.State, packageID int, username, ip string) (*dto.BasketResult, error)
	RemoveItem(ctx context.Context, st *session.State, packageID int) (*dto.BasketResult, error)
	UpdateQuantity(ctx context.Context, st *session.State, packageID, delta int) (*dto.BasketResult, error)
	SetQuantity(ctx context.Context, st *session.State, packageID, quantity int) (*dto.BasketResult, error)
	AuthLinks(ctx context.Context, st *session.State) (*dto.AuthResult, error)
	ApplyCoupon(ctx context.Context, st *session.State, code string) (*dto.BasketResult, error)
}

type basketServiceImpl struct {
	tebex   client.TebexClient
	catalog CatalogService
	baseURL string
	logger  *zap.Logger
}

func NewBasketService(tebex client.TebexClient, catalog CatalogService, baseURL string, logger *zap.Logger) BasketService {
	return &basketServiceImpl{
		tebex:   tebex,
		catalog: catalog,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (s *basketServiceImpl) GetOrCreateBasket(ctx context.Context, st *session.State, username, ip string) (string, error) {
	ident, _, err := s.getOrCreateBasket(ctx, st, username, ip)
	return ident, err
}

// getOrCreateBasket also reports how many lines added while the provider
// was unreachable could not be sent to the new basket.
func (s *basketServiceImpl) getOrCreateBasket(ctx context.Context, st *session.State, username, ip string) (string, int, error) {
	if st.BasketIdent != "" {
		return st.BasketIdent, 0, nil
	}
	if username == "" {
		return "", 0, ErrUsernameRequired
	}

	basket, err := s.tebex.CreateBasket(ctx, client.CreateBasketRequest{
		Username:    username,
		IPAddress:   ip,
		ReturnURL:   s.baseURL + "/store",
		CompleteURL: s.baseURL + "/store/complete",
		CancelURL:   s.baseURL + "/store",
	})
	if err != nil {
		return "", 0, fmt.Errorf("create basket: %w", err)
	}

	local := st.Mirror.Lines()
	st.BasketIdent = basket.Ident
	st.Username = username
	st.Mirror.Reconcile(basket)
	if err := st.Transition(session.EventAdd); err != nil {
		return "", 0, err
	}
	s.logger.Info("basket created", zap.String("basket", basket.Ident), zap.String("username", username))

	unsent := 0
	for _, l := range local {
		if err := s.tebex.AddPackage(ctx, basket.Ident, l.PackageID, l.Quantity, username); err != nil {
			s.logger.Warn("local line not sent to new basket",
				zap.String("basket", basket.Ident),
				zap.Int("package", l.PackageID),
				zap.Error(err),
			)
			unsent++
		}
		st.Mirror.Apply(model.Delta{Kind: model.DeltaAdd, PackageID: l.PackageID, Name: l.Name, Price: l.Price, Quantity: l.Quantity})
	}
	return basket.Ident, unsent, nil
}

func (s *basketServiceImpl) Basket(ctx context.Context, st *session.State) *dto.BasketResult {
	synced := s.refresh(ctx, st)
	return s.result(st, synced)
}

func (s *basketServiceImpl) AddItem(ctx context.Context, st *session.State, packageID int, username, ip string) (*dto.BasketResult, error) {
	if packageID <= 0 {
		return nil, ErrPackageRequired
	}
	if username == "" {
		username = st.Username
	}
	if username == "" && st.BasketIdent == "" {
		return nil, ErrUsernameRequired
	}

	delta := s.addDelta(ctx, packageID)

	ident, unsent, err := s.getOrCreateBasket(ctx, st, username, ip)
	if err != nil {
		st.Username = username
		return s.localOnly(st, delta, "add item", err, true), nil
	}

	if err := s.tebex.AddPackage(ctx, ident, packageID, 1, username); err != nil {
		return s.localOnly(st, delta, "add item", err, true), nil
	}
	if err := st.Transition(session.EventAdd); err != nil {
		return nil, err
	}

	st.Mirror.Apply(delta)
	if unsent > 0 {
		// A refresh would drop the lines the provider never received.
		res := s.result(st, false)
		res.LocalOnly = true
		res.OpenBasket = true
		res.Message = localOnlyMessage
		return res, nil
	}
	res := s.result(st, s.refresh(ctx, st))
	res.OpenBasket = true
	return res, nil
}

func (s *basketServiceImpl) RemoveItem(ctx context.Context, st *session.State, packageID int) (*dto.BasketResult, error) {
	if packageID <= 0 {
		return nil, ErrPackageRequired
	}

	delta := model.Delta{Kind: model.DeltaRemove, PackageID: packageID}
	if st.BasketIdent == "" {
		if _, ok := st.Mirror.Quantity(packageID); !ok {
			return nil, ErrNoBasket
		}
		return s.localOnly(st, delta, "remove item", ErrNoBasket, false), nil
	}

	if err := s.tebex.RemovePackage(ctx, st.BasketIdent, packageID); err != nil {
		return s.localOnly(st, delta, "remove item", err, false), nil
	}

	st.Mirror.Apply(delta)
	return s.result(st, s.refresh(ctx, st)), nil
}

func (s *basketServiceImpl) UpdateQuantity(ctx context.Context, st *session.State, packageID, delta int) (*dto.BasketResult, error) {
	if packageID <= 0 {
		return nil, ErrPackageRequired
	}

	current, ok := st.Mirror.Quantity(packageID)
	if !ok && st.BasketIdent != "" {
		s.refresh(ctx, st)
		current, ok = st.Mirror.Quantity(packageID)
	}
	if !ok {
		return nil, ErrItemNotFound
	}

	next := current + delta
	if next < 1 {
		return s.RemoveItem(ctx, st, packageID)
	}
	return s.SetQuantity(ctx, st, packageID, next)
}

func (s *basketServiceImpl) SetQuantity(ctx context.Context, st *session.State, packageID, quantity int) (*dto.BasketResult, error) {
	if packageID <= 0 {
		return nil, ErrPackageRequired
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, ok := st.Mirror.Quantity(packageID); !ok && st.BasketIdent == "" {
		return nil, ErrNoBasket
	}

	delta := model.Delta{Kind: model.DeltaSet, PackageID: packageID, Quantity: quantity}
	if st.BasketIdent == "" {
		return s.localOnly(st, delta, "update quantity", ErrNoBasket, false), nil
	}

	if err := s.tebex.UpdateQuantity(ctx, st.BasketIdent, packageID, quantity); err != nil {
		return s.localOnly(st, delta, "update quantity", err, false), nil
	}

	st.Mirror.Apply(delta)
	return s.result(st, s.refresh(ctx, st)), nil
}

func (s *basketServiceImpl) AuthLinks(ctx context.Context, st *session.State) (*dto.AuthResult, error) {
	if st.BasketIdent == "" {
		return nil, ErrNoBasket
	}

	links, err := s.tebex.AuthLinks(ctx, st.BasketIdent, s.baseURL+"/store")
	if err != nil {
		return nil, fmt.Errorf("basket auth: %w", err)
	}

	res := &dto.AuthResult{Result: dto.Result{Success: true}}
	if len(links) > 0 {
		res.AuthRequired = true
		res.AuthURL = links[0].URL
	}
	return res, nil
}

func (s *basketServiceImpl) ApplyCoupon(ctx context.Context, st *session.State, code string) (*dto.BasketResult, error) {
	if st.BasketIdent == "" {
		return nil, ErrNoBasket
	}
	if err := s.tebex.ApplyCoupon(ctx, st.BasketIdent, code); err != nil {
		return nil, fmt.Errorf("apply coupon: %w", err)
	}

	res := s.result(st, s.refresh(ctx, st))
	res.Message = "Coupon applied"
	return res, nil
}

// addDelta describes a package for the optimistic add. Unknown packages
// get a placeholder name and a zero price until the provider confirms.
func (s *basketServiceImpl) addDelta(ctx context.Context, packageID int) model.Delta {
	d := model.Delta{
		Kind:      model.DeltaAdd,
		PackageID: packageID,
		Quantity:  1,
		Name:      fmt.Sprintf("Package %d", packageID),
		Price:     decimal.Zero,
	}
	if p, ok := s.catalog.FindPackage(ctx, packageID); ok {
		d.Name = p.Name
		d.Price = p.Price
	}
	return d
}

// refresh pulls the provider basket into the mirror. It reports whether
// the mirror now matches the provider.
func (s *basketServiceImpl) refresh(ctx context.Context, st *session.State) bool {
	if st.BasketIdent == "" {
		return false
	}
	basket, err := s.tebex.GetBasket(ctx, st.BasketIdent)
	if err != nil {
		s.logger.Warn("basket refresh failed", zap.String("basket", st.BasketIdent), zap.Error(err))
		return false
	}
	st.Mirror.Reconcile(basket)
	return true
}

func (s *basketServiceImpl) localOnly(st *session.State, d model.Delta, op string, cause error, open bool) *dto.BasketResult {
	s.logger.Warn("provider call failed, updating local basket only",
		zap.String("op", op),
		zap.String("basket", st.BasketIdent),
		zap.Int("package", d.PackageID),
		zap.Error(cause),
	)

	st.Mirror.Apply(d)
	res := s.result(st, false)
	res.LocalOnly = true
	res.OpenBasket = open
	res.Message = localOnlyMessage
	return res
}

func (s *basketServiceImpl) result(st *session.State, synced bool) *dto.BasketResult {
	lines := st.Mirror.Lines()
	if lines == nil {
		lines = []model.BasketLine{}
	}
	return &dto.BasketResult{
		Result: dto.Result{Success: true},
		Basket: &dto.BasketView{
			Ident:    st.BasketIdent,
			Stage:    string(st.Stage),
			Lines:    lines,
			Total:    model.LinesTotal(lines),
			Synced:   synced && st.Mirror.Synced(),
			Username: st.Username,
		},
	}
}
