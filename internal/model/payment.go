package model

import "github.com/shopspring/decimal"

const PaymentStatusComplete = "Complete"

type Payment struct {
	ID       int64           `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Status   string          `json:"status"`
	Currency Currency        `json:"currency"`
	Player   Player          `json:"player"`
	Packages []PaymentItem   `json:"packages"`
}

type Player struct {
	Name string `json:"name"`
	UUID string `json:"uuid,omitempty"`
}

type PaymentItem struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// PaymentLink is the result of creating a payment outside the basket flow.
type PaymentLink struct {
	URL string `json:"url"`
}

// Sale is a completed payment formatted for the recent-sales ticker.
type Sale struct {
	Username  string          `json:"username"`
	Item      string          `json:"item"`
	Price     decimal.Decimal `json:"price"`
	Avatar    string          `json:"avatar"`
	Timestamp string          `json:"timestamp"`
}
