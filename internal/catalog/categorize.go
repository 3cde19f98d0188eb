package catalog

import (
	"fmt"
	"sort"

	"minecraft-store/internal/model"
)

// Build turns a provider package list into a storefront. Packages the
// table does not know are dropped; the rest are grouped by category in
// table order and sorted by ascending price inside each group, keeping
// provider order on ties.
func Build(server model.ServerType, packages []model.Package) (*model.Storefront, error) {
	table, ok := TableFor(server)
	if !ok {
		return nil, fmt.Errorf("no category table for server %q", server)
	}

	groups := make(map[int][]model.Package)
	present := make(map[int]bool)
	currency := ""
	for _, p := range packages {
		cat, ok := table.Categorize(p.ID, p.ProviderCategoryID)
		if !ok {
			continue
		}
		p.Category = cat
		groups[cat.ID] = append(groups[cat.ID], p)
		present[cat.ID] = true
		if currency == "" {
			currency = p.Currency
		}
	}

	categories := table.Categories(present)
	out := make([]model.Package, 0, len(packages))
	for _, c := range categories {
		group := groups[c.ID]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Price.LessThan(group[j].Price)
		})
		out = append(out, group...)
	}

	return &model.Storefront{
		Server:     server,
		Store:      storeInfo(server, currency),
		Packages:   out,
		Categories: categories,
	}, nil
}

func storeInfo(server model.ServerType, iso string) model.StoreInfo {
	if iso == "" {
		iso = "USD"
	}
	symbol := iso
	switch iso {
	case "USD":
		symbol = "$"
	case "EUR":
		symbol = "€"
	case "GBP":
		symbol = "£"
	}
	return model.StoreInfo{
		Name:     string(server) + " Store",
		Currency: model.Currency{Symbol: symbol, ISO4217: iso},
	}
}
