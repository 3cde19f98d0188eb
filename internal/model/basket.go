package model

import "github.com/shopspring/decimal"

// Basket is the provider's view of a visitor's basket.
type Basket struct {
	Ident      string          `json:"ident"`
	Username   string          `json:"username,omitempty"`
	Complete   bool            `json:"complete"`
	Lines      []BasketLine    `json:"lines"`
	BasePrice  decimal.Decimal `json:"basePrice"`
	SalesTax   decimal.Decimal `json:"salesTax"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Currency   string          `json:"currency,omitempty"`
	Links      BasketLinks     `json:"links"`
}

type BasketLine struct {
	PackageID int             `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type BasketLinks struct {
	Payment  string `json:"payment,omitempty"`
	Checkout string `json:"checkout,omitempty"`
}

// AuthLink is a login option returned when the provider needs the
// visitor to authenticate before the basket can be paid.
type AuthLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}
