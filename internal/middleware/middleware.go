package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/guirluz/rental-backend/internal/utils/auth"
	"github.com/guirluz/rental-backend/internal/utils/logger"
	"github.com/guirluz/rental-backend/internal/utils/responses"
	"go.uber.org/zap"
)

type contextKey string

const emailContextKey contextKey = "user_email"

func EmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailContextKey).(string)
	return email, ok
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		logger.Info("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func PanicMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				responses.DoBadResponseAndLog(w, http.StatusInternalServerError, "internal error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// CreateAuthMiddleware verifies the bearer token and puts the subject email
// on the request context.
func CreateAuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				responses.DoBadResponseAndLog(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			email, err := auth.ParseToken(jwtSecret, token)
			if err != nil {
				responses.DoBadResponseAndLog(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), emailContextKey, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
