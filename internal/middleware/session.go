package middleware

import (
	"minecraft-store/internal/repository"
	"minecraft-store/internal/session"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Session loads the visitor's basket state before the handler runs. A
// basket that a webhook already reported as paid is dropped here, so the
// visitor starts over on the next request.
func Session(store *session.Store, webhookEventRepo repository.WebhookEventRepository, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			st := store.Load(c)

			if st.BasketIdent != "" {
				done, err := webhookEventRepo.IsBasketCompleted(c.Request().Context(), st.BasketIdent)
				if err != nil {
					logger.Warn("completed basket lookup failed", zap.String("basket", st.BasketIdent), zap.Error(err))
				}
				if done {
					logger.Info("basket paid, clearing session", zap.String("basket", st.BasketIdent))
					store.Clear(c)
					st.Reset()
				}
			}

			session.WithState(c, st)
			return next(c)
		}
	}
}
