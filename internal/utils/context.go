package utils

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
)

func GetCurrentUser(ctx *gin.Context) (types.Identity, error) {
	user, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return types.Identity{}, apperrors.Unauthorized("User not authenticated")
	}

	identity, ok := user.(types.Identity)

	if !ok {
		return types.Identity{}, apperrors.Internal(fmt.Errorf("invalid user type in context: %T", user))
	}

	return identity, nil
}

func GetRequestID(ctx *gin.Context) string {
	return ctx.GetString(types.ContextRequestIDKey)
}

// RequestLogger returns log tagged with the request id.
func RequestLogger(ctx *gin.Context, log *slog.Logger) *slog.Logger {
	if id := GetRequestID(ctx); id != "" {
		return log.With(slog.String("request_id", id))
	}
	return log
}

// ParamID parses a positive numeric path parameter.
func ParamID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)

	if err != nil || id == 0 {
		return 0, apperrors.Validation("", "Invalid %s %q", name, raw)
	}

	return uint(id), nil
}

// QueryInt reads an optional integer query parameter.
func QueryInt(ctx *gin.Context, name string) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperrors.Validation("", "Invalid %s %q", name, raw)
	}

	return n, nil
}
