package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/apperrors"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/auth"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/types"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/utils"
	"gorm.io/gorm"
)

const tokenName = "token"

// tokenFrom reads the bearer token from the Authorization header, then the
// token cookie, then the token query parameter used by the socket handshake.
func tokenFrom(ctx *gin.Context) (string, error) {
	if authHeader := ctx.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return "", apperrors.Unauthorized("Authorization header format must be Bearer {token}")
		}

		return parts[1], nil
	}

	if cookie, err := ctx.Cookie(tokenName); err == nil && cookie != "" {
		return cookie, nil
	}

	if q := ctx.Query(tokenName); q != "" {
		return q, nil
	}

	return "", apperrors.Unauthorized("Authorization token is required")
}

// AuthMiddleware resolves the caller into a types.Identity.
func AuthMiddleware(verifier *auth.Verifier, db *gorm.DB, log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := tokenFrom(ctx)

		if err != nil {
			utils.RespondError(ctx, log, err)
			return
		}

		userID, err := verifier.Verify(tokenString)

		if err != nil {
			utils.RespondError(ctx, log, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		var user models.User

		if err := db.WithContext(ctx.Request.Context()).Where("id = ? AND is_active = ?", userID, true).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondError(ctx, log, apperrors.Unauthorized("User not found"))
			} else {
				utils.RespondError(ctx, log, err)
			}
			return
		}

		ctx.Set(types.ContextUserKey, types.Identity{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		})
		ctx.Next()
	}
}
