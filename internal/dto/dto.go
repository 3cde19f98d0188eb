package dto

import (
	"minecraft-store/internal/model"

	"github.com/shopspring/decimal"
)

// Result is the envelope every JSON endpoint answers with.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

type AddItemRequest struct {
	PackageID int    `json:"packageId" form:"packageId" validate:"required,gt=0"`
	Username  string `json:"username" form:"username" validate:"omitempty,mcname"`
}

type RemoveItemRequest struct {
	PackageID int `json:"packageId" form:"packageId" param:"id" validate:"required,gt=0"`
}

type UpdateQuantityRequest struct {
	PackageID int `json:"packageId" form:"packageId" validate:"required,gt=0"`
	Delta     int `json:"delta" form:"delta" validate:"required,ne=0"`
}

type SetQuantityRequest struct {
	PackageID int `param:"id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" form:"quantity" validate:"gte=1"`
}

type CouponRequest struct {
	Code string `json:"code" form:"code" validate:"required,max=64"`
}

type CheckoutRequest struct {
	PackageID int    `json:"packageId" form:"packageId" validate:"required,gt=0"`
	Username  string `json:"username" form:"username" validate:"required,mcname"`
}

type DirectPurchaseRequest struct {
	PackageID int             `json:"packageId" validate:"required,gt=0"`
	Username  string          `json:"username" validate:"required,mcname"`
	Price     decimal.Decimal `json:"price"`
}

type LoginVerificationRequest struct {
	IGN     string `query:"ign" validate:"required"`
	IP      string `query:"ip" validate:"required"`
	Country string `query:"country" validate:"required"`
}

// BasketView is the visitor-facing basket: provider state when it could
// be confirmed, the local mirror otherwise.
type BasketView struct {
	Ident    string             `json:"ident,omitempty"`
	Stage    string             `json:"stage"`
	Lines    []model.BasketLine `json:"lines"`
	Total    decimal.Decimal    `json:"total"`
	Synced   bool               `json:"synced"`
	Username string             `json:"username,omitempty"`
}

type BasketResult struct {
	Result
	Basket *BasketView `json:"basket,omitempty"`
	// LocalOnly marks a change the provider did not confirm.
	LocalOnly  bool `json:"localOnly,omitempty"`
	OpenBasket bool `json:"openBasket,omitempty"`
}

type AuthResult struct {
	Result
	AuthRequired bool   `json:"authRequired"`
	AuthURL      string `json:"authUrl,omitempty"`
}

type CheckoutResult struct {
	Result
	URL           string `json:"url,omitempty"`
	DirectPayment bool   `json:"directPayment,omitempty"`
}

type TransactionStatus struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type CheckoutStatusResult struct {
	Result
	Transaction *TransactionStatus `json:"transaction,omitempty"`
}

type LoginVerificationResult struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

type WebhookPayload struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
	BasketIdent   string `json:"basket_ident"`
}

type WebhookResult struct {
	Result
	// ID echoes the event id for provider endpoint validation.
	ID string `json:"id,omitempty"`
	// ClearBasket tells the handler to drop the caller's basket cookie.
	ClearBasket bool `json:"-"`
	Duplicate   bool `json:"duplicate,omitempty"`
}
