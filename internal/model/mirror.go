package model

import "github.com/shopspring/decimal"

type DeltaKind string

const (
	DeltaAdd    DeltaKind = "add"
	DeltaRemove DeltaKind = "remove"
	DeltaSet    DeltaKind = "set"
)

// maxPendingDeltas keeps the mirror small enough to live in a cookie.
const maxPendingDeltas = 16

// Delta is an optimistic change that the provider has not confirmed yet.
type Delta struct {
	Kind      DeltaKind       `json:"k"`
	PackageID int             `json:"id"`
	Quantity  int             `json:"q,omitempty"`
	Name      string          `json:"n,omitempty"`
	Price     decimal.Decimal `json:"p"`
}

// Mirror is the local copy of a basket: the last state the provider
// confirmed plus the deltas applied since. Lines() is what the visitor sees.
type Mirror struct {
	Confirmed []BasketLine `json:"c,omitempty"`
	Pending   []Delta      `json:"d,omitempty"`
}

// Apply records an optimistic change.
func (m *Mirror) Apply(d Delta) {
	m.Pending = append(m.Pending, d)
	if len(m.Pending) > maxPendingDeltas {
		m.Confirmed = m.Lines()
		m.Pending = nil
	}
}

// Reconcile replaces the mirror with the provider's basket and drops
// every pending delta.
func (m *Mirror) Reconcile(b *Basket) {
	m.Confirmed = append([]BasketLine(nil), b.Lines...)
	m.Pending = nil
}

// Synced reports whether the mirror matches the last confirmed state.
func (m *Mirror) Synced() bool {
	return len(m.Pending) == 0
}

// Lines returns the confirmed lines with every pending delta applied.
// Quantities never drop below 1: a line that would reach 0 is removed.
func (m *Mirror) Lines() []BasketLine {
	lines := append([]BasketLine(nil), m.Confirmed...)
	for _, d := range m.Pending {
		idx := indexOf(lines, d.PackageID)
		switch d.Kind {
		case DeltaAdd:
			qty := d.Quantity
			if qty < 1 {
				qty = 1
			}
			if idx >= 0 {
				lines[idx].Quantity += qty
				continue
			}
			lines = append(lines, BasketLine{
				PackageID: d.PackageID,
				Name:      d.Name,
				Price:     d.Price,
				Quantity:  qty,
			})
		case DeltaRemove:
			if idx >= 0 {
				lines = append(lines[:idx], lines[idx+1:]...)
			}
		case DeltaSet:
			if idx < 0 {
				continue
			}
			if d.Quantity < 1 {
				lines = append(lines[:idx], lines[idx+1:]...)
				continue
			}
			lines[idx].Quantity = d.Quantity
		}
	}
	return lines
}

// Quantity returns the visible quantity of a package.
func (m *Mirror) Quantity(packageID int) (int, bool) {
	for _, l := range m.Lines() {
		if l.PackageID == packageID {
			return l.Quantity, true
		}
	}
	return 0, false
}

// Total sums price times quantity over the visible lines.
func (m *Mirror) Total() decimal.Decimal {
	return LinesTotal(m.Lines())
}

func LinesTotal(lines []BasketLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

func indexOf(lines []BasketLine, packageID int) int {
	for i, l := range lines {
		if l.PackageID == packageID {
			return i
		}
	}
	return -1
}
