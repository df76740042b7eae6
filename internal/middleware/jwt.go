package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTAuth 创建 JWT 鉴权中间件。
// 支持 HMAC（本地密钥）与 JWKS（远程公钥）两种验证方式。
// 验证成功后从 claims 中取用户名存入 context。
func JWTAuth(jwksURL, jwtSecret string) func(http.Handler) http.Handler {
	var jwks *keyfunc.JWKS
	var err error

	if jwksURL != "" {
		// 初始化 JWKS，包含自动刷新
		jwks, err = keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval: time.Hour,
			RefreshErrorHandler: func(err error) {
				fmt.Printf("[AuthError] JWKS refresh failed: %v\n", err)
			},
		})
		if err != nil {
			fmt.Printf("[AuthWarning] JWKS init failed (%s): %v. Only HMAC tokens will verify.\n", jwksURL, err)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				writeAuthError(w, http.StatusUnauthorized, "invalid Authorization format, expected: Bearer <token>")
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
			if tokenString == "" {
				writeAuthError(w, http.StatusUnauthorized, "empty token")
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); ok {
					if jwtSecret != "" {
						return []byte(jwtSecret), nil
					}
				}
				if jwks != nil {
					return jwks.Keyfunc(token)
				}
				return nil, fmt.Errorf("no suitable verification method")
			})
			if err != nil || !token.Valid {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			username := usernameFromClaims(token.Claims)
			if username == "" {
				writeAuthError(w, http.StatusUnauthorized, "token carries no username")
				return
			}

			ctx := context.WithValue(r.Context(), UsernameContextKey{}, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// usernameFromClaims 优先取 preferred_username，回退到 sub。
func usernameFromClaims(claims jwt.Claims) string {
	mapClaims, ok := claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if name, ok := mapClaims["preferred_username"].(string); ok && name != "" {
		return name
	}
	if sub, ok := mapClaims["sub"].(string); ok {
		return sub
	}
	return ""
}
