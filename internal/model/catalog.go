package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServerType string

const (
	ServerFactions ServerType = "Factions"
	ServerPrison   ServerType = "Prison"
)

// Category is a display grouping. It is assigned from the category table,
// never taken from the provider's own taxonomy.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Order    int    `json:"order"`
	IsBundle bool   `json:"isBundle,omitempty"`
}

type Package struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	Image           string          `json:"image,omitempty"`
	Category        Category        `json:"category"`
	Type            string          `json:"type,omitempty"`
	Currency        string          `json:"currency,omitempty"`
	Discount        decimal.Decimal `json:"discount"`
	DisableQuantity bool            `json:"disable_quantity"`
	DisableGifting  bool            `json:"disable_gifting"`
	ExpirationDate  *time.Time      `json:"expiration_date,omitempty"`

	// ProviderCategoryID is the category id reported by the provider. It only
	// takes part in categorization for rows that match on it.
	ProviderCategoryID int `json:"-"`
}

type Currency struct {
	Symbol  string `json:"symbol"`
	ISO4217 string `json:"iso_4217"`
}

type StoreInfo struct {
	Name     string   `json:"name"`
	Currency Currency `json:"currency"`
}

// Storefront is the categorized catalog of a single server.
type Storefront struct {
	Server     ServerType `json:"server"`
	Store      StoreInfo  `json:"store"`
	Packages   []Package  `json:"packages"`
	Categories []Category `json:"categories"`
}

// Catalog holds one storefront per configured server.
type Catalog map[ServerType]*Storefront

// FindPackage looks a package up across every storefront.
func (c Catalog) FindPackage(id int) (*Package, bool) {
	for _, sf := range c {
		for i := range sf.Packages {
			if sf.Packages[i].ID == id {
				p := sf.Packages[i]
				return &p, true
			}
		}
	}
	return nil, false
}
