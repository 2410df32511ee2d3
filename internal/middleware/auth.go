package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/six-app/six-backend/internal/errordata"
	"github.com/six-app/six-backend/internal/logger"
	"github.com/six-app/six-backend/internal/requestdata"
	"github.com/six-app/six-backend/internal/services"
	"github.com/six-app/six-backend/internal/types"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token", "code": errordata.CodeUnauthorized})
			return
		}
		refreshToken := c.GetHeader("X-Refresh-Token")
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString, refreshToken)
		if err != nil {
			am.log.Debug("Token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token", "code": errordata.CodeUnauthorized})
			return
		}
		rd := requestdata.GetRequestData(ctx)
		if rd == nil || rd.UserID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token", "code": errordata.CodeUnauthorized})
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePlan gates a route behind a minimum plan. Runs after
// RequireAuth; the plan comes from the token claims.
func (am *AuthMiddleware) RequirePlan(minPlan string) gin.HandlerFunc {
	rank := map[string]int{types.PlanFree: 0, types.PlanPro: 1, types.PlanMax: 2}
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		if rd == nil || rank[rd.Plan] < rank[minPlan] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "plan does not allow this operation", "code": errordata.CodeUnauthorized})
			return
		}
		c.Next()
	}
}

// extractToken takes the bearer header first, then the query parameter
// the WebSocket route uses (browsers cannot set headers on WS dials).
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
