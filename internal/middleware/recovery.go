package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
)

// Recovery turns a handler panic into the INTERNAL_ERROR envelope and logs
// it with its stack through log instead of gin's writer.
func Recovery(log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(ctx *gin.Context, recovered any) {
		utils.RequestLogger(ctx, log).Error("panic recovered",
			slog.String("method", ctx.Request.Method),
			slog.String("path", ctx.Request.URL.Path),
			slog.Any("error", fmt.Errorf("panic: %v", recovered)),
			slog.String("stack", string(debug.Stack())))

		appErr := apperrors.Internal(nil)
		ctx.AbortWithStatusJSON(appErr.Status, utils.Envelope{
			Success: false,
			Error:   &utils.ErrorBody{Code: appErr.Code, Message: appErr.Message},
		})
	})
}
