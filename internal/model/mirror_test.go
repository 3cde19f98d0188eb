package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMirrorQuantityScenario(t *testing.T) {
	m := &Mirror{}
	m.Apply(Delta{Kind: DeltaAdd, PackageID: 1, Name: "A", Price: price("9.99"), Quantity: 1})

	qty, ok := m.Quantity(1)
	require.True(t, ok)
	assert.Equal(t, 1, qty)

	m.Apply(Delta{Kind: DeltaSet, PackageID: 1, Quantity: 2})
	qty, _ = m.Quantity(1)
	assert.Equal(t, 2, qty)
	assert.Equal(t, "19.98", m.Total().StringFixed(2))

	m.Apply(Delta{Kind: DeltaRemove, PackageID: 1})
	_, ok = m.Quantity(1)
	assert.False(t, ok)
	assert.Equal(t, "0.00", m.Total().StringFixed(2))
}

func TestMirrorSetBelowOneRemoves(t *testing.T) {
	m := &Mirror{Confirmed: []BasketLine{{PackageID: 7, Name: "Key", Price: price("2.50"), Quantity: 3}}}

	m.Apply(Delta{Kind: DeltaSet, PackageID: 7, Quantity: 0})

	assert.Empty(t, m.Lines())
}

func TestMirrorAddIncrementsExisting(t *testing.T) {
	m := &Mirror{}
	m.Apply(Delta{Kind: DeltaAdd, PackageID: 3, Price: price("1.00")})
	m.Apply(Delta{Kind: DeltaAdd, PackageID: 3, Price: price("1.00")})

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestMirrorQuantityNeverBelowOne(t *testing.T) {
	ops := []Delta{
		{Kind: DeltaAdd, PackageID: 1, Price: price("1")},
		{Kind: DeltaAdd, PackageID: 2, Price: price("1")},
		{Kind: DeltaSet, PackageID: 1, Quantity: -4},
		{Kind: DeltaAdd, PackageID: 2, Price: price("1")},
		{Kind: DeltaRemove, PackageID: 2},
		{Kind: DeltaAdd, PackageID: 1, Price: price("1")},
		{Kind: DeltaSet, PackageID: 3, Quantity: 5},
	}

	m := &Mirror{}
	for _, op := range ops {
		m.Apply(op)
		for _, l := range m.Lines() {
			assert.GreaterOrEqual(t, l.Quantity, 1)
		}
	}

	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].PackageID)
}

func TestMirrorReconcileDropsPending(t *testing.T) {
	m := &Mirror{}
	m.Apply(Delta{Kind: DeltaAdd, PackageID: 1, Price: price("5")})
	assert.False(t, m.Synced())

	m.Reconcile(&Basket{Lines: []BasketLine{{PackageID: 9, Name: "Kit", Price: price("3"), Quantity: 2}}})

	assert.True(t, m.Synced())
	assert.Equal(t, []BasketLine{{PackageID: 9, Name: "Kit", Price: price("3"), Quantity: 2}}, m.Lines())
}

func TestMirrorFoldsLongDeltaLog(t *testing.T) {
	m := &Mirror{}
	for i := 0; i <= maxPendingDeltas; i++ {
		m.Apply(Delta{Kind: DeltaAdd, PackageID: 1, Price: price("1")})
	}

	assert.Empty(t, m.Pending)
	qty, ok := m.Quantity(1)
	require.True(t, ok)
	assert.Equal(t, maxPendingDeltas+1, qty)
}
