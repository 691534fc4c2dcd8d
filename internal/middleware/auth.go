package middleware

import (
	"context"
	"strings"

	"file-lifecycle-manager/auth"
	"file-lifecycle-manager/internal/domain"
	"file-lifecycle-manager/internal/errors"

	"github.com/gin-gonic/gin"
)

type UserProvider interface {
	GetUserByID(ctx context.Context, id uint64) (*domain.User, error)
}

type Auth struct {
	UserService UserProvider
}

// AuthMiddleWare verifies the bearer token and sets "user_id" on the context.
func (m *Auth) AuthMiddleWare() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			ctx.Error(errors.Unauthorized("Authorization is not found!", nil))
			ctx.Abort()
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		parsedToken, err := auth.VerifyJWT(token)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		userID, tokenVersion, err := auth.GetDataFromToken(parsedToken)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid token!", err))
			ctx.Abort()
			return
		}

		user, err := m.UserService.GetUserByID(ctx.Request.Context(), userID)
		if err != nil {
			ctx.Error(errors.Unauthorized("Invalid User ID!", err))
			ctx.Abort()
			return
		}

		if !user.IsActive {
			ctx.Error(errors.Unauthorized("User is not active", nil))
			ctx.Abort()
			return
		}

		// Check token version
		if user.TokenVersion != tokenVersion {
			ctx.Error(errors.Unauthorized("Invalid token version!", nil))
			ctx.Abort()
			return
		}

		ctx.Set("user_id", userID)
		ctx.Next()
	}
}
