package utils

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

func Respond(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, Envelope{Success: true, Data: data})
}

// RespondError writes err as an envelope and aborts the chain. Errors
// without a code are logged in full and answered with a generic 500.
func RespondError(ctx *gin.Context, log *slog.Logger, err error) {
	appErr, ok := apperrors.As(err)

	if !ok || appErr.Status >= http.StatusInternalServerError {
		RequestLogger(ctx, log).Error("request failed",
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.FullPath()),
			slog.Any("error", err),
		)
		if !ok {
			appErr = apperrors.Internal(err)
		}
	}

	ctx.AbortWithStatusJSON(appErr.Status, Envelope{
		Success: false,
		Error:   &ErrorBody{Code: appErr.Code, Message: appErr.Message},
	})
}
