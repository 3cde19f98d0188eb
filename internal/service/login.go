package service

import (
	"context"
	"strings"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/ratelimit"

	"go.uber.org/zap"
)

// LoginService answers the provider's login verification webhook.
type LoginService interface {
	Verify(ctx context.Context, req dto.LoginVerificationRequest) *dto.LoginVerificationResult
}

type loginServiceImpl struct {
	limiter         ratelimit.Limiter
	bannedUsers     map[string]struct{}
	bannedCountries map[string]struct{}
	logger          *zap.Logger
}

func NewLoginService(limiter ratelimit.Limiter, bannedUsers, bannedCountries []string, logger *zap.Logger) LoginService {
	return &loginServiceImpl{
		limiter:         limiter,
		bannedUsers:     lowerSet(bannedUsers),
		bannedCountries: lowerSet(bannedCountries),
		logger:          logger,
	}
}

func (s *loginServiceImpl) Verify(ctx context.Context, req dto.LoginVerificationRequest) *dto.LoginVerificationResult {
	if !s.limiter.Allow(ctx, "login:"+req.IP) {
		s.logger.Warn("login verification rate limited", zap.String("ip", req.IP))
		return &dto.LoginVerificationResult{Error: "Too many login attempts. Please try again later."}
	}

	log := s.logger.With(zap.String("ign", req.IGN), zap.String("country", req.Country), zap.String("ip", req.IP))
	log.Info("login verification attempt")

	if _, banned := s.bannedUsers[strings.ToLower(req.IGN)]; banned {
		log.Info("login rejected, user banned")
		return &dto.LoginVerificationResult{Error: "You are banned from accessing our store."}
	}
	if _, banned := s.bannedCountries[strings.ToLower(req.Country)]; banned {
		log.Info("login rejected, country banned")
		return &dto.LoginVerificationResult{Error: "Access to the store is not available in your country."}
	}

	return &dto.LoginVerificationResult{Verified: true, Message: "Welcome back, " + req.IGN + "!"}
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}
