package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"clip-and-ship/domain/dto"
	"clip-and-ship/domain/model"
	"clip-and-ship/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth requires a valid Bearer token and sets user_id from its subject.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}
		raw, ok := bearer(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		userClaims, err := getClaim(raw, secretKey)
		if err != nil {
			res.ResponseMessage = reason(err)
			logger.GetLogger().WithField("error", err).Debug("Rejected bearer token")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		ctx.Set("user_id", userClaims.Subject)
		ctx.Next()
	}
}

// OptionalAuth sets user_id when a valid Bearer token is present and lets the
// request through either way.
func OptionalAuth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if raw, ok := bearer(ctx); ok {
			if userClaims, err := getClaim(raw, secretKey); err == nil {
				ctx.Set("user_id", userClaims.Subject)
			}
		}
		ctx.Next()
	}
}

func bearer(ctx *gin.Context) (string, bool) {
	authorization := ctx.Request.Header.Get("Authorization")
	if authorization == "" {
		return "", false
	}
	auth := strings.SplitN(authorization, "Bearer ", 2)
	if len(auth) != 2 || auth[1] == "" {
		return "", false
	}
	return strings.TrimSpace(auth[1]), true
}

func reason(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
	}
	return fmt.Sprintf("Couldn't handle this token: %v", err)
}

func getClaim(raw, secretKey string) (model.UserClaims, error) {
	var userClaims model.UserClaims
	if secretKey == "" {
		return userClaims, errors.New("secret key not configured")
	}
	token, err := jwt.ParseWithClaims(raw, &userClaims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return userClaims, err
	}
	if !token.Valid || userClaims.Subject == "" {
		return userClaims, errors.New("token has no subject")
	}
	return userClaims, nil
}
