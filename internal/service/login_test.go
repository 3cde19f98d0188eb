package service

import (
	"context"
	"testing"
	"time"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/ratelimit"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newLoginService(t *testing.T, max int64) LoginService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := ratelimit.NewRedisLimiter(rdb, max, time.Minute, zap.NewNop())
	return NewLoginService(limiter, []string{"Griefer"}, []string{"XX"}, zap.NewNop())
}

func TestVerifyLogin(t *testing.T) {
	svc := newLoginService(t, 100)

	tests := []struct {
		name     string
		req      dto.LoginVerificationRequest
		verified bool
		message  string
		errMsg   string
	}{
		{
			name:     "allowed",
			req:      dto.LoginVerificationRequest{IGN: "Notch", IP: "1.1.1.1", Country: "SE"},
			verified: true,
			message:  "Welcome back, Notch!",
		},
		{
			name:   "banned user any case",
			req:    dto.LoginVerificationRequest{IGN: "gRiEfEr", IP: "1.1.1.2", Country: "SE"},
			errMsg: "You are banned from accessing our store.",
		},
		{
			name:   "banned country",
			req:    dto.LoginVerificationRequest{IGN: "Notch", IP: "1.1.1.3", Country: "xx"},
			errMsg: "Access to the store is not available in your country.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.Verify(context.Background(), tt.req)
			assert.Equal(t, tt.verified, res.Verified)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.errMsg, res.Error)
		})
	}
}

func TestVerifyLoginRateLimited(t *testing.T) {
	svc := newLoginService(t, 5)
	req := dto.LoginVerificationRequest{IGN: "Notch", IP: "9.9.9.9", Country: "SE"}

	for i := 0; i < 5; i++ {
		assert.True(t, svc.Verify(context.Background(), req).Verified, "attempt %d", i+1)
	}

	res := svc.Verify(context.Background(), req)
	assert.False(t, res.Verified)
	assert.Equal(t, "Too many login attempts. Please try again later.", res.Error)

	other := svc.Verify(context.Background(), dto.LoginVerificationRequest{IGN: "Notch", IP: "8.8.8.8", Country: "SE"})
	assert.True(t, other.Verified)
}
