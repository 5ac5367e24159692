package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-ems/internal/domain"
	"go-ems/internal/shared/apperror"
	"go-ems/internal/shared/contextutil"
	"go-ems/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Claims is the token shape issued by the identity provider.
type Claims struct {
	UserID     string `json:"user_id"`
	EmployeeID string `json:"employee_id"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates an HS256 bearer token (or the access_token cookie)
// and attaches the resulting principal to the request context.
func AuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			tokenString = ""
		}
		if tokenString == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Token not found")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token expired"
			}
			response.Abort(c, http.StatusUnauthorized, apperror.CodeInvalidToken, msg)
			return
		}

		if claims.UserID == "" || claims.EmployeeID == "" {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeInvalidToken, "Token is missing identity claims")
			return
		}

		p := domain.Principal{
			UserID:     claims.UserID,
			EmployeeID: claims.EmployeeID,
			Role:       claims.Role,
		}

		c.Set("user_id", p.UserID)
		c.Set("employee_id", p.EmployeeID)
		c.Set("role", p.NormalizedRole())

		ctx := c.Request.Context()
		ctx = contextutil.WithPrincipal(ctx, p)
		ctx = contextutil.WithUserID(ctx, p.UserID)
		ctx = contextutil.WithLogger(ctx, contextutil.GetLogger(ctx, zap.L()).With(
			zap.String("user_id", p.UserID),
			zap.String("employee_id", p.EmployeeID),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
