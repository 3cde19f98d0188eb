package service

import (
	"context"
	"testing"
	"time"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func payment(id int64, name, status string, items ...string) model.Payment {
	p := model.Payment{
		ID:     id,
		Amount: decimal.RequireFromString("9.99"),
		Date:   "2024-05-01T12:00:00+00:00",
		Status: status,
		Player: model.Player{Name: name},
	}
	for i, item := range items {
		p.Packages = append(p.Packages, model.PaymentItem{ID: i + 1, Name: item})
	}
	return p
}

func TestRecentSales(t *testing.T) {
	tebex := newFakeTebex()
	tebex.payments = []model.Payment{
		payment(1, "Notch", model.PaymentStatusComplete, "Warrior Rank"),
		payment(2, "jeb_", "Refund", "Vote Key"),
		payment(3, "Dinnerbone", model.PaymentStatusComplete),
		payment(4, "Grumm", model.PaymentStatusComplete, "Vote Key"),
		payment(5, "Alex", model.PaymentStatusComplete, "Kit"),
		payment(6, "Steve", model.PaymentStatusComplete, "Kit"),
	}
	svc := NewSalesService(tebex, cache.NewTTL[[]model.Sale](time.Minute, nil), zap.NewNop())

	sales, err := svc.RecentSales(context.Background())
	require.NoError(t, err)

	require.Len(t, sales, 4)
	assert.Equal(t, "Notch", sales[0].Username)
	assert.Equal(t, "Warrior Rank", sales[0].Item)
	assert.Equal(t, "https://mc-heads.net/avatar/Notch", sales[0].Avatar)
	assert.Equal(t, "Package", sales[1].Item)
	assert.Equal(t, "Alex", sales[3].Username)
}

func TestRecentSalesCachesAndServesStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tebex := newFakeTebex()
	tebex.payments = []model.Payment{payment(1, "Notch", model.PaymentStatusComplete, "Warrior Rank")}
	svc := NewSalesService(tebex, cache.NewTTL[[]model.Sale](time.Minute, clock), zap.NewNop())
	ctx := context.Background()

	_, err := svc.RecentSales(ctx)
	require.NoError(t, err)
	_, err = svc.RecentSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, tebex.listCalls)

	now = now.Add(2 * time.Minute)
	tebex.down = true
	sales, err := svc.RecentSales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, tebex.listCalls)
	require.Len(t, sales, 1)
	assert.Equal(t, "Notch", sales[0].Username)
}

func TestRecentSalesErrorWithoutCache(t *testing.T) {
	tebex := newFakeTebex()
	tebex.down = true
	svc := NewSalesService(tebex, cache.NewTTL[[]model.Sale](time.Minute, nil), zap.NewNop())

	_, err := svc.RecentSales(context.Background())
	assert.ErrorIs(t, err, errProviderDown)
}

func TestPaymentsLimit(t *testing.T) {
	tebex := newFakeTebex()
	for i := 0; i < 15; i++ {
		tebex.payments = append(tebex.payments, payment(int64(i), "Notch", model.PaymentStatusComplete))
	}
	svc := NewSalesService(tebex, cache.NewTTL[[]model.Sale](time.Minute, nil), zap.NewNop())

	payments, err := svc.Payments(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, payments, 10)

	payments, err = svc.Payments(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, payments, 3)
}
