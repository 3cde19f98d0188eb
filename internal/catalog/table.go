package catalog

import "minecraft-store/internal/model"

// Row assigns every listed package id to Category, plus any unlisted
// package the provider files under one of ProviderCategoryIDs.
type Row struct {
	Category            model.Category
	PackageIDs          []int
	ProviderCategoryIDs []int
	// Required rows show up in the category list even when empty.
	Required bool
}

// Table is the ordered category table of one server type. When an id
// appears in more than one row the earliest row wins.
type Table struct {
	rows       []Row
	byPackage  map[int]int
	byProvider map[int]int
}

func NewTable(rows ...Row) *Table {
	t := &Table{
		rows:       rows,
		byPackage:  make(map[int]int),
		byProvider: make(map[int]int),
	}
	for i, row := range rows {
		for _, id := range row.PackageIDs {
			if _, ok := t.byPackage[id]; !ok {
				t.byPackage[id] = i
			}
		}
		for _, id := range row.ProviderCategoryIDs {
			if _, ok := t.byProvider[id]; !ok {
				t.byProvider[id] = i
			}
		}
	}
	return t
}

// Categorize returns the category of a listed package id. Provider
// category ids only place packages that no row lists.
func (t *Table) Categorize(packageID, providerCategoryID int) (model.Category, bool) {
	if row, ok := t.byPackage[packageID]; ok {
		return t.rows[row].Category, true
	}
	if providerCategoryID == 0 {
		return model.Category{}, false
	}
	row, ok := t.byProvider[providerCategoryID]
	if !ok {
		return model.Category{}, false
	}
	return t.rows[row].Category, true
}

// Categories lists the distinct display categories in table order.
// Optional categories are listed only when present is true for their id.
func (t *Table) Categories(present map[int]bool) []model.Category {
	seen := make(map[int]bool)
	var out []model.Category
	for _, row := range t.rows {
		c := row.Category
		if seen[c.ID] {
			continue
		}
		if !row.Required && !present[c.ID] {
			continue
		}
		seen[c.ID] = true
		c.IsBundle = false
		out = append(out, c)
	}
	return out
}

const tagsProviderCategoryID = 2782178

var (
	ranks     = model.Category{ID: 1, Name: "Ranks", Slug: "ranks", Order: 0}
	upgrades  = model.Category{ID: 2, Name: "Upgrades", Slug: "upgrades", Order: 1}
	keys      = model.Category{ID: 3, Name: "Keys", Slug: "keys", Order: 2}
	bundles   = model.Category{ID: 3, Name: "Keys", Slug: "keys", Order: 2, IsBundle: true}
	tags      = model.Category{ID: tagsProviderCategoryID, Name: "Tags", Slug: "tags", Order: 3}
	kits      = model.Category{ID: 5, Name: "Kits", Slug: "kits", Order: 4}
	summoners = model.Category{ID: 6, Name: "Summoners", Slug: "summoners", Order: 5}
	disguises = model.Category{ID: 7, Name: "Disguises", Slug: "disguises", Order: 6}
	pickaxes  = model.Category{ID: 8, Name: "Pickaxes", Slug: "pickaxes", Order: 1}
)

var factionsTable = NewTable(
	Row{Category: ranks, Required: true, PackageIDs: []int{6487989, 6487992, 6487995, 6487996, 6487999, 6488003}},
	Row{Category: upgrades, PackageIDs: []int{6488060, 6488079, 6488086, 6488089, 6488091}},
	Row{Category: keys, Required: true, PackageIDs: []int{6468051, 6468101, 6468112}},
	Row{Category: bundles, PackageIDs: []int{6468093, 6468096, 6468105, 6468110, 6468114, 6468116}},
	Row{
		Category:            tags,
		Required:            true,
		PackageIDs:          []int{6469393, 6468206, 6469374, 6469376, 6469378, 6469380, 6469381, 6469383, 6469385, 6469390, 6469392, 6469389},
		ProviderCategoryIDs: []int{tagsProviderCategoryID},
	},
	Row{Category: kits, Required: true, PackageIDs: []int{6468192, 6468194}},
	Row{Category: summoners, PackageIDs: []int{6478636, 6478643, 6470895}},
	Row{Category: disguises, PackageIDs: []int{6478418, 6478491, 6478492, 6478496, 6478502, 6478503, 6478505, 6478507}},
)

var prisonTable = NewTable(
	Row{Category: ranks, Required: true, PackageIDs: []int{7001, 7002, 7003, 7004, 7005}},
	Row{Category: pickaxes, Required: true, PackageIDs: []int{7101, 7102, 7103}},
	Row{Category: keys, Required: true, PackageIDs: []int{7201, 7202, 7203}},
)

var tables = map[model.ServerType]*Table{
	model.ServerFactions: factionsTable,
	model.ServerPrison:   prisonTable,
}

// TableFor returns the category table of a server type.
func TableFor(server model.ServerType) (*Table, bool) {
	t, ok := tables[server]
	return t, ok
}
