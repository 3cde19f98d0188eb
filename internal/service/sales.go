package service

import (
	"context"
	"fmt"

	"minecraft-store/internal/cache"
	"minecraft-store/internal/client"
	"minecraft-store/internal/model"

	"go.uber.org/zap"
)

const (
	salesFetchLimit     = 10
	salesShown          = 4
	defaultPaymentLimit = 10
	maxPaymentLimit     = 100
	avatarURL           = "https://mc-heads.net/avatar/"
)

type SalesService interface {
	// RecentSales lists the latest completed payments for the ticker.
	RecentSales(ctx context.Context) ([]model.Sale, error)
	Payments(ctx context.Context, limit int) ([]model.Payment, error)
}

type salesServiceImpl struct {
	tebex  client.TebexClient
	cache  *cache.TTL[[]model.Sale]
	logger *zap.Logger
}

func NewSalesService(tebex client.TebexClient, salesCache *cache.TTL[[]model.Sale], logger *zap.Logger) SalesService {
	return &salesServiceImpl{tebex: tebex, cache: salesCache, logger: logger}
}

func (s *salesServiceImpl) RecentSales(ctx context.Context) ([]model.Sale, error) {
	if sales, ok := s.cache.Get(); ok {
		return sales, nil
	}

	payments, err := s.tebex.ListPayments(ctx, salesFetchLimit)
	if err != nil {
		if stale, ok := s.cache.Stale(); ok {
			s.logger.Warn("payments fetch failed, serving stale sales", zap.Error(err))
			return stale, nil
		}
		return nil, fmt.Errorf("list payments: %w", err)
	}

	sales := toSales(payments)
	s.cache.Set(sales)
	return sales, nil
}

func (s *salesServiceImpl) Payments(ctx context.Context, limit int) ([]model.Payment, error) {
	if limit <= 0 {
		limit = defaultPaymentLimit
	}
	if limit > maxPaymentLimit {
		limit = maxPaymentLimit
	}

	payments, err := s.tebex.ListPayments(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	if payments == nil {
		payments = []model.Payment{}
	}
	return payments, nil
}

func toSales(payments []model.Payment) []model.Sale {
	sales := make([]model.Sale, 0, salesShown)
	for _, p := range payments {
		if p.Status != model.PaymentStatusComplete {
			continue
		}
		item := "Package"
		if len(p.Packages) > 0 && p.Packages[0].Name != "" {
			item = p.Packages[0].Name
		}
		sales = append(sales, model.Sale{
			Username:  p.Player.Name,
			Item:      item,
			Price:     p.Amount,
			Avatar:    avatarURL + p.Player.Name,
			Timestamp: p.Date,
		})
		if len(sales) == salesShown {
			break
		}
	}
	return sales
}
