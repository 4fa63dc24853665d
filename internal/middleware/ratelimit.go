package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit limits each client IP to the formatted rate, e.g. "300-M".
func RateLimit(formatted string, log *slog.Logger) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", formatted, err)
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(ctx *gin.Context) {
			utils.RespondError(ctx, log, apperrors.New(http.StatusTooManyRequests, apperrors.CodeRateLimited, "Too many requests, slow down"))
		}),
		mgin.WithErrorHandler(func(ctx *gin.Context, err error) {
			utils.RespondError(ctx, log, fmt.Errorf("rate limiter: %w", err))
		}),
	), nil
}
