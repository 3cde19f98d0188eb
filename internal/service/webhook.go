package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"minecraft-store/internal/dto"
	"minecraft-store/internal/model"
	"minecraft-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	signatureHeader = "X-Signature"
	eventValidation = "validation.webhook"
)

type WebhookService interface {
	HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*dto.WebhookResult, error)
}

type webhookServiceImpl struct {
	webhookEventRepo repository.WebhookEventRepository
	secret           string
	logger           *zap.Logger
}

// NewWebhookService checks signatures only when secret is set.
func NewWebhookService(webhookEventRepo repository.WebhookEventRepository, secret string, logger *zap.Logger) WebhookService {
	if strings.TrimSpace(secret) == "" {
		logger.Warn("webhook secret not configured, accepting unsigned webhooks")
	}
	return &webhookServiceImpl{
		webhookEventRepo: webhookEventRepo,
		secret:           strings.TrimSpace(secret),
		logger:           logger,
	}
}

func (s *webhookServiceImpl) HandleWebhook(ctx context.Context, headers http.Header, body []byte) (*dto.WebhookResult, error) {
	if s.secret != "" && !verifySignature(body, headers.Get(signatureHeader), s.secret) {
		return nil, ErrInvalidSignature
	}

	var payload dto.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}

	if payload.Type == eventValidation {
		return &dto.WebhookResult{Result: dto.Result{Success: true}, ID: payload.ID}, nil
	}

	log := s.logger.With(
		zap.String("type", payload.Type),
		zap.String("transaction", payload.TransactionID),
	)

	id := eventID(payload)
	if id == "" {
		// Nothing to key the event on; it is handled but not recorded.
		log.Warn("webhook without event, transaction or basket id")
	} else {
		recorded, err := s.webhookEventRepo.MarkProcessed(ctx, &model.WebhookEvent{
			EventID:       id,
			EventType:     payload.Type,
			TransactionID: payload.TransactionID,
			Status:        strings.ToLower(payload.Status),
			BasketIdent:   payload.BasketIdent,
			Payload:       string(body),
		})
		if err != nil {
			return nil, fmt.Errorf("record webhook event: %w", err)
		}
		log = log.With(zap.String("event", id))
		if !recorded {
			log.Info("duplicate webhook ignored")
			return &dto.WebhookResult{
				Result:    dto.Result{Success: true, Message: "Webhook already processed"},
				Duplicate: true,
			}, nil
		}
	}

	res := &dto.WebhookResult{Result: dto.Result{Success: true}}
	switch payload.Type {
	case repository.EventPaymentCompleted:
		if strings.EqualFold(payload.Status, repository.StatusComplete) {
			log.Info("payment completed", zap.String("basket", payload.BasketIdent))
			res.ClearBasket = true
			res.Message = "Payment completed successfully"
			return res, nil
		}
		log.Info("payment not complete yet", zap.String("status", payload.Status))
		res.Message = "Webhook received: " + payload.Type
	case repository.EventPaymentRefunded:
		log.Info("payment refunded")
		res.Message = "Refund processed"
	default:
		log.Info("webhook received")
		res.Message = "Webhook received: " + payload.Type
	}
	return res, nil
}

// eventID falls back to a name-based UUID so retries of an id-less event
// still collapse onto one row. The status is part of the name: a payment
// that moves from pending to complete is two events.
func eventID(p dto.WebhookPayload) string {
	if p.ID != "" {
		return p.ID
	}
	subject := p.TransactionID
	if subject == "" {
		subject = p.BasketIdent
	}
	if subject == "" {
		return ""
	}
	name := p.Type + ":" + subject + ":" + strings.ToLower(p.Status)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// verifySignature checks hex(HMAC-SHA256(secret, hex(sha256(body)))).
func verifySignature(body []byte, header, secret string) bool {
	sig, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(header)))
	if err != nil || len(sig) == 0 {
		return false
	}
	digest := sha256.Sum256(body)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(hex.EncodeToString(digest[:])))
	return hmac.Equal(mac.Sum(nil), sig)
}
