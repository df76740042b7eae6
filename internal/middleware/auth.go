package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// UsernameContextKey 是存储在 context 中的会话用户名的键。
type UsernameContextKey struct{}

// SessionAuth 创建静态令牌鉴权中间件。
// 期望请求头格式：Authorization: Bearer <token>
// 验证成功后将令牌对应的用户名存入 context。
func SessionAuth(tokens map[string]string) func(http.Handler) http.Handler {
	tokenSet := make(map[string]string, len(tokens))
	for token, username := range tokens {
		token = strings.TrimSpace(token)
		username = strings.TrimSpace(username)
		if token != "" && username != "" {
			tokenSet[token] = username
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")

			if authHeader == "" {
				writeAuthError(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}

			// 期望格式: "Bearer <token>"
			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				writeAuthError(w, http.StatusUnauthorized, "invalid Authorization format, expected: Bearer <token>")
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "empty token")
				return
			}

			username, valid := tokenSet[token]
			if !valid {
				writeAuthError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), UsernameContextKey{}, username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUsername 从 context 中获取经过鉴权的会话用户名。
func GetUsername(ctx context.Context) string {
	if v, ok := ctx.Value(UsernameContextKey{}).(string); ok {
		return v
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="mediastash API"`)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
