package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"minecraft-store/internal/client"
	"minecraft-store/internal/model"

	"github.com/shopspring/decimal"
)

var errProviderDown = &client.APIError{StatusCode: 503, Body: "service unavailable"}

// fakeTebex is an in-memory provider. Setting down makes every call fail.
type fakeTebex struct {
	mu sync.Mutex

	down     bool
	failAdds bool

	packages map[string][]model.Package
	catalog  map[int]model.Package
	baskets  map[string]*model.Basket
	payments []model.Payment
	links    []model.AuthLink

	listCalls    int
	createCalls  int
	paymentReqs  []client.CreatePaymentRequest
	removeCalls  int
	updateCalls  int
	nextBasketID int
}

func newFakeTebex() *fakeTebex {
	return &fakeTebex{
		packages: make(map[string][]model.Package),
		catalog:  make(map[int]model.Package),
		baskets:  make(map[string]*model.Basket),
	}
}

func (f *fakeTebex) withPackage(id int, name, price string) *fakeTebex {
	f.catalog[id] = model.Package{ID: id, Name: name, Price: decimal.RequireFromString(price)}
	return f
}

func (f *fakeTebex) ListPackages(_ context.Context, token string) ([]model.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.down {
		return nil, errProviderDown
	}
	return f.packages[token], nil
}

func (f *fakeTebex) CreateBasket(_ context.Context, req client.CreateBasketRequest) (*model.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.down {
		return nil, errProviderDown
	}
	f.nextBasketID++
	b := &model.Basket{Ident: fmt.Sprintf("bsk-%d", f.nextBasketID), Username: req.Username}
	f.baskets[b.Ident] = b
	return copyBasket(b), nil
}

func (f *fakeTebex) GetBasket(_ context.Context, ident string) (*model.Basket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, errProviderDown
	}
	b, ok := f.baskets[ident]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Body: "basket not found"}
	}
	return copyBasket(b), nil
}

func (f *fakeTebex) AddPackage(_ context.Context, ident string, packageID, quantity int, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down || f.failAdds {
		return errProviderDown
	}
	b, ok := f.baskets[ident]
	if !ok {
		return &client.APIError{StatusCode: 404, Body: "basket not found"}
	}
	for i := range b.Lines {
		if b.Lines[i].PackageID == packageID {
			b.Lines[i].Quantity += quantity
			return nil
		}
	}
	p, ok := f.catalog[packageID]
	if !ok {
		return &client.APIError{StatusCode: 422, Body: "unknown package"}
	}
	b.Lines = append(b.Lines, model.BasketLine{PackageID: packageID, Name: p.Name, Price: p.Price, Quantity: quantity})
	return nil
}

func (f *fakeTebex) RemovePackage(_ context.Context, ident string, packageID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if f.down {
		return errProviderDown
	}
	b, ok := f.baskets[ident]
	if !ok {
		return &client.APIError{StatusCode: 404, Body: "basket not found"}
	}
	for i := range b.Lines {
		if b.Lines[i].PackageID == packageID {
			b.Lines = append(b.Lines[:i], b.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeTebex) UpdateQuantity(_ context.Context, ident string, packageID, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.down {
		return errProviderDown
	}
	b, ok := f.baskets[ident]
	if !ok {
		return &client.APIError{StatusCode: 404, Body: "basket not found"}
	}
	for i := range b.Lines {
		if b.Lines[i].PackageID == packageID {
			b.Lines[i].Quantity = quantity
			return nil
		}
	}
	return &client.APIError{StatusCode: 404, Body: "package not in basket"}
}

func (f *fakeTebex) CheckoutURL(_ context.Context, ident string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return "", errProviderDown
	}
	if _, ok := f.baskets[ident]; !ok {
		return "", &client.APIError{StatusCode: 404, Body: "basket not found"}
	}
	return "https://pay.tebex.io/" + ident, nil
}

func (f *fakeTebex) AuthLinks(_ context.Context, _ string, _ string) ([]model.AuthLink, error) {
	if f.down {
		return nil, errProviderDown
	}
	return f.links, nil
}

func (f *fakeTebex) ApplyCoupon(_ context.Context, ident, code string) error {
	if f.down {
		return errProviderDown
	}
	if code != "SUMMER" {
		return &client.APIError{StatusCode: 422, Body: "invalid coupon"}
	}
	return nil
}

func (f *fakeTebex) CreatePayment(_ context.Context, req client.CreatePaymentRequest) (*model.PaymentLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paymentReqs = append(f.paymentReqs, req)
	if f.down {
		return nil, errProviderDown
	}
	return &model.PaymentLink{URL: fmt.Sprintf("https://pay.tebex.io/direct/%d", req.PackageID)}, nil
}

func (f *fakeTebex) ListPayments(_ context.Context, limit int) ([]model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.down {
		return nil, errProviderDown
	}
	if limit < len(f.payments) {
		return f.payments[:limit], nil
	}
	return f.payments, nil
}

func (f *fakeTebex) GetPackage(_ context.Context, packageID int) (*model.Package, error) {
	if f.down {
		return nil, errProviderDown
	}
	p, ok := f.catalog[packageID]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Body: "package not found"}
	}
	return &p, nil
}

func copyBasket(b *model.Basket) *model.Basket {
	out := *b
	out.Lines = append([]model.BasketLine(nil), b.Lines...)
	return &out
}

// stubCatalog serves a fixed package list.
type stubCatalog struct {
	packages map[int]model.Package
}

func (s *stubCatalog) Catalog(context.Context) model.Catalog { return model.Catalog{} }

func (s *stubCatalog) Storefront(context.Context, model.ServerType) (*model.Storefront, bool) {
	return nil, false
}

func (s *stubCatalog) FindPackage(_ context.Context, id int) (*model.Package, bool) {
	p, ok := s.packages[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (s *stubCatalog) Invalidate() {}

// memWebhookRepo is an in-memory WebhookEventRepository.
type memWebhookRepo struct {
	mu     sync.Mutex
	events map[string]*model.WebhookEvent
	err    error
}

func newMemWebhookRepo() *memWebhookRepo {
	return &memWebhookRepo{events: make(map[string]*model.WebhookEvent)}
}

func (r *memWebhookRepo) MarkProcessed(_ context.Context, event *model.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return false, r.err
	}
	if _, ok := r.events[event.EventID]; ok {
		return false, nil
	}
	r.events[event.EventID] = event
	return true, nil
}

func (r *memWebhookRepo) IsBasketCompleted(_ context.Context, ident string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.BasketIdent == ident && e.EventType == "payment.completed" && e.Status == "complete" {
			return true, nil
		}
	}
	return false, r.err
}

var errBoom = errors.New("boom")
