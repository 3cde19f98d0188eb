package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"minecraft-store/internal/config"
	"minecraft-store/internal/model"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const maxResponseBytes = 1 << 20

var (
	ErrMalformedResponse = errors.New("malformed tebex response")
	// ErrUnavailable marks calls that never got an answer: transport
	// failures and an open breaker.
	ErrUnavailable = errors.New("tebex unavailable")
)

// APIError is a non-2xx answer from Tebex.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tebex error %d: %s", e.StatusCode, e.Body)
}

type TebexClient interface {
	ListPackages(ctx context.Context, accountToken string) ([]model.Package, error)

	CreateBasket(ctx context.Context, req CreateBasketRequest) (*model.Basket, error)
	GetBasket(ctx context.Context, ident string) (*model.Basket, error)
	AddPackage(ctx context.Context, ident string, packageID, quantity int, username string) error
	RemovePackage(ctx context.Context, ident string, packageID int) error
	UpdateQuantity(ctx context.Context, ident string, packageID, quantity int) error
	CheckoutURL(ctx context.Context, ident string) (string, error)
	AuthLinks(ctx context.Context, ident, returnURL string) ([]model.AuthLink, error)
	ApplyCoupon(ctx context.Context, ident, code string) error

	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*model.PaymentLink, error)
	ListPayments(ctx context.Context, limit int) ([]model.Payment, error)
	GetPackage(ctx context.Context, packageID int) (*model.Package, error)
}

type CreateBasketRequest struct {
	Username    string
	IPAddress   string
	ReturnURL   string
	CompleteURL string
	CancelURL   string
}

type CreatePaymentRequest struct {
	Username  string
	PackageID int
	Price     decimal.Decimal
	Note      string
}

type tebexClientImpl struct {
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[[]byte]
	headlessURL string
	pluginURL   string
	publicToken string
	secretKey   string
}

func NewTebexClient(cfg *config.Tebex, logger *zap.Logger) TebexClient {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "tebex",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 4xx answers mean the provider is up; only transport errors and 5xx trip the breaker.
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &tebexClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		breaker:     breaker,
		headlessURL: strings.TrimRight(cfg.HeadlessURL, "/"),
		pluginURL:   strings.TrimRight(cfg.PluginURL, "/"),
		publicToken: cfg.PublicToken,
		secretKey:   cfg.SecretKey,
	}
}

func (c *tebexClientImpl) basketURL(ident string, parts ...string) string {
	u := fmt.Sprintf("%s/accounts/%s/baskets/%s", c.headlessURL, url.PathEscape(c.publicToken), url.PathEscape(ident))
	for _, p := range parts {
		u += "/" + p
	}
	return u
}

// do runs one request through the breaker and decodes the answer into out.
func (c *tebexClientImpl) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = b
	}

	raw, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("http new request: %w", err)
		}
		req.Header.Set("X-Tebex-Secret", c.secretKey)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: http client do: %w", ErrUnavailable, err)
		}
		defer resp.Body.Close()

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("read tebex response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		}
		return b, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

type tebexPackage struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       *string         `json:"image"`
	Type        string          `json:"type"`
	Category    *struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"category"`
	Price           decimal.Decimal `json:"price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Currency        string          `json:"currency"`
	Discount        decimal.Decimal `json:"discount"`
	DisableQuantity bool            `json:"disable_quantity"`
	DisableGifting  bool            `json:"disable_gifting"`
	ExpirationDate  *string         `json:"expiration_date"`
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func (p tebexPackage) toModel() model.Package {
	price := p.TotalPrice
	if price.IsZero() {
		price = p.Price
	}
	out := model.Package{
		ID:              p.ID,
		Name:            p.Name,
		Description:     strings.TrimSpace(htmlTag.ReplaceAllString(p.Description, "")),
		Price:           price,
		Type:            p.Type,
		Currency:        p.Currency,
		Discount:        p.Discount,
		DisableQuantity: p.DisableQuantity,
		DisableGifting:  p.DisableGifting,
	}
	if p.ExpirationDate != nil {
		if t, err := time.Parse(time.RFC3339, *p.ExpirationDate); err == nil {
			out.ExpirationDate = &t
		}
	}
	if p.Image != nil {
		out.Image = *p.Image
	}
	if p.Category != nil {
		out.ProviderCategoryID = p.Category.ID
	}
	return out
}

func (c *tebexClientImpl) ListPackages(ctx context.Context, accountToken string) ([]model.Package, error) {
	var res struct {
		Data []tebexPackage `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/accounts/%s/packages", c.headlessURL, url.PathEscape(accountToken))
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}

	packages := make([]model.Package, 0, len(res.Data))
	for _, p := range res.Data {
		packages = append(packages, p.toModel())
	}
	return packages, nil
}

type tebexBasket struct {
	Ident      string          `json:"ident"`
	Username   string          `json:"username"`
	Complete   bool            `json:"complete"`
	BasePrice  decimal.Decimal `json:"base_price"`
	SalesTax   decimal.Decimal `json:"sales_tax"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Currency   string          `json:"currency"`
	Packages   []struct {
		Qty     int `json:"qty"`
		Package struct {
			ID    json.Number     `json:"id"`
			Name  string          `json:"name"`
			Price decimal.Decimal `json:"price"`
		} `json:"package"`
	} `json:"packages"`
	Links model.BasketLinks `json:"links"`
}

func (b tebexBasket) toModel() (*model.Basket, error) {
	out := &model.Basket{
		Ident:      b.Ident,
		Username:   b.Username,
		Complete:   b.Complete,
		Lines:      make([]model.BasketLine, 0, len(b.Packages)),
		BasePrice:  b.BasePrice,
		SalesTax:   b.SalesTax,
		TotalPrice: b.TotalPrice,
		Currency:   b.Currency,
		Links:      b.Links,
	}
	for _, p := range b.Packages {
		id, err := strconv.Atoi(p.Package.ID.String())
		if err != nil {
			return nil, fmt.Errorf("%w: package id %q", ErrMalformedResponse, p.Package.ID)
		}
		out.Lines = append(out.Lines, model.BasketLine{
			PackageID: id,
			Name:      p.Package.Name,
			Price:     p.Package.Price,
			Quantity:  p.Qty,
		})
	}
	return out, nil
}

func (c *tebexClientImpl) CreateBasket(ctx context.Context, req CreateBasketRequest) (*model.Basket, error) {
	payload := map[string]any{
		"username":               req.Username,
		"ip_address":             req.IPAddress,
		"return_url":             req.ReturnURL,
		"complete_url":           req.CompleteURL,
		"cancel_url":             req.CancelURL,
		"complete_auto_redirect": true,
		"custom": map[string]string{
			"created_at": time.Now().UTC().Format(time.RFC3339),
		},
	}

	var res struct {
		Data tebexBasket `json:"data"`
	}
	endpoint := fmt.Sprintf("%s/accounts/%s/baskets", c.headlessURL, url.PathEscape(c.publicToken))
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &res); err != nil {
		return nil, fmt.Errorf("create basket: %w", err)
	}
	if res.Data.Ident == "" {
		return nil, fmt.Errorf("create basket: %w: missing ident", ErrMalformedResponse)
	}
	return res.Data.toModel()
}

func (c *tebexClientImpl) GetBasket(ctx context.Context, ident string) (*model.Basket, error) {
	var res struct {
		Data tebexBasket `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.basketURL(ident), nil, &res); err != nil {
		return nil, fmt.Errorf("get basket: %w", err)
	}
	if res.Data.Ident == "" {
		res.Data.Ident = ident
	}
	return res.Data.toModel()
}

func (c *tebexClientImpl) AddPackage(ctx context.Context, ident string, packageID, quantity int, username string) error {
	payload := map[string]any{
		"package_id": packageID,
		"quantity":   quantity,
		"username":   username,
	}
	if err := c.do(ctx, http.MethodPost, c.basketURL(ident, "packages"), payload, nil); err != nil {
		return fmt.Errorf("add package %d: %w", packageID, err)
	}
	return nil
}

func (c *tebexClientImpl) RemovePackage(ctx context.Context, ident string, packageID int) error {
	endpoint := c.basketURL(ident, "packages", strconv.Itoa(packageID))
	if err := c.do(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("remove package %d: %w", packageID, err)
	}
	return nil
}

func (c *tebexClientImpl) UpdateQuantity(ctx context.Context, ident string, packageID, quantity int) error {
	endpoint := c.basketURL(ident, "packages", strconv.Itoa(packageID))
	if err := c.do(ctx, http.MethodPut, endpoint, map[string]int{"quantity": quantity}, nil); err != nil {
		return fmt.Errorf("update quantity of %d: %w", packageID, err)
	}
	return nil
}

func (c *tebexClientImpl) CheckoutURL(ctx context.Context, ident string) (string, error) {
	var res struct {
		URL  string `json:"url"`
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.basketURL(ident, "checkout"), nil, &res); err != nil {
		return "", fmt.Errorf("get checkout url: %w", err)
	}

	checkoutURL := res.URL
	if checkoutURL == "" {
		checkoutURL = res.Data.URL
	}
	if checkoutURL == "" {
		return "", fmt.Errorf("get checkout url: %w: empty url", ErrMalformedResponse)
	}
	return checkoutURL, nil
}

func (c *tebexClientImpl) AuthLinks(ctx context.Context, ident, returnURL string) ([]model.AuthLink, error) {
	endpoint := c.basketURL(ident, "auth") + "?returnUrl=" + url.QueryEscape(returnURL)

	var links []model.AuthLink
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &links); err != nil {
		return nil, fmt.Errorf("get basket auth links: %w", err)
	}
	return links, nil
}

func (c *tebexClientImpl) ApplyCoupon(ctx context.Context, ident, code string) error {
	if err := c.do(ctx, http.MethodPost, c.basketURL(ident, "coupon"), map[string]string{"code": code}, nil); err != nil {
		return fmt.Errorf("apply coupon: %w", err)
	}
	return nil
}

func (c *tebexClientImpl) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*model.PaymentLink, error) {
	note := req.Note
	if note == "" {
		note = "Purchase for " + req.Username
	}
	payload := map[string]any{
		"note":     note,
		"packages": []map[string]int{{"id": req.PackageID}},
		"price":    req.Price.InexactFloat64(),
		"ign":      req.Username,
	}

	var link model.PaymentLink
	if err := c.do(ctx, http.MethodPost, c.pluginURL+"/payments", payload, &link); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &link, nil
}

func (c *tebexClientImpl) ListPayments(ctx context.Context, limit int) ([]model.Payment, error) {
	var raw json.RawMessage
	endpoint := fmt.Sprintf("%s/payments?limit=%d", c.pluginURL, limit)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	var payments []model.Payment
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &payments); err != nil {
			return nil, fmt.Errorf("list payments: %w: %v", ErrMalformedResponse, err)
		}
		return payments, nil
	}

	var page struct {
		Data []model.Payment `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("list payments: %w: %v", ErrMalformedResponse, err)
	}
	return page.Data, nil
}

func (c *tebexClientImpl) GetPackage(ctx context.Context, packageID int) (*model.Package, error) {
	var p tebexPackage
	endpoint := fmt.Sprintf("%s/packages/%d", c.pluginURL, packageID)
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &p); err != nil {
		return nil, fmt.Errorf("get package %d: %w", packageID, err)
	}
	out := p.toModel()
	return &out, nil
}
