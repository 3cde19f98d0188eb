package catalog

import (
	"minecraft-store/internal/model"

	"github.com/shopspring/decimal"
)

var mockPackages = map[model.ServerType][]model.Package{
	model.ServerFactions: {
		{
			ID:              6487989,
			Name:            "Warrior Rank",
			Description:     "Basic rank with essential permissions",
			Price:           decimal.RequireFromString("9.99"),
			Type:            "subscription",
			Currency:        "USD",
			DisableQuantity: true,
		},
	},
	model.ServerPrison: {
		{
			ID:              7001,
			Name:            "Inmate Rank",
			Description:     "Starter rank for the prison server",
			Price:           decimal.RequireFromString("4.99"),
			Type:            "single",
			Currency:        "USD",
			DisableQuantity: true,
		},
	},
}

// Mock returns the static storefront served when the provider is down
// and nothing has been cached yet.
func Mock(server model.ServerType) *model.Storefront {
	sf, err := Build(server, mockPackages[server])
	if err != nil {
		return &model.Storefront{
			Server:     server,
			Store:      storeInfo(server, "USD"),
			Packages:   []model.Package{},
			Categories: []model.Category{},
		}
	}
	return sf
}
