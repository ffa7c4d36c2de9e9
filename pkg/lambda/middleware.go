package lambda

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront-functions/internal/middleware"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	requestIDKey contextKey = "request_id"
)

// WithUserID stores the resolved caller in ctx
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID returns the caller stored by RequireUser or Authenticate
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}

// RequestID returns the request id stored by Logging
func RequestID(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey).(string)
	return requestID
}

// RequireUser resolves the caller from the uid header or a verified token
// and answers 403 when neither is present
func RequireUser() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			userID := req.Header(middleware.HeaderUserID)
			if userID == "" {
				userID = UserID(ctx)
			}
			if userID == "" {
				return Message(http.StatusForbidden, "No User"), nil
			}
			return next(WithUserID(ctx, userID), req)
		}
	}
}

// Authenticate verifies bearer tokens with authService. Without required a
// missing or invalid token lets the request through anonymously.
func Authenticate(authService *middleware.AuthService, required bool) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			claims, err := authService.FromAuthorizationHeader(req.Header("Authorization"))
			if err != nil {
				if required {
					logrus.WithError(err).WithField("path", req.Path).Warn("Token validation failed")
					return Message(http.StatusUnauthorized, "Invalid or expired token"), nil
				}
				if !errors.Is(err, middleware.ErrMissingToken) {
					logrus.WithError(err).WithField("path", req.Path).Debug("Optional token validation failed")
				}
				return next(ctx, req)
			}

			if claims.UserID != "" {
				ctx = WithUserID(ctx, claims.UserID)
			}
			return next(ctx, req)
		}
	}
}

// Logging assigns a request id and logs one entry per invocation
func Logging(logger *logrus.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			requestID := req.Header("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			ctx = context.WithValue(ctx, requestIDKey, requestID)

			start := time.Now()
			resp, err := next(ctx, req)

			fields := logrus.Fields{
				"request_id": requestID,
				"method":     req.Method,
				"path":       req.Path,
				"latency_ms": float64(time.Since(start).Nanoseconds()) / 1000000,
			}
			if userID := req.Header(middleware.HeaderUserID); userID != "" {
				fields["user_id"] = userID
			}

			entry := logger.WithFields(fields)
			switch {
			case err != nil:
				entry.WithError(err).Error("Server error")
			case resp != nil && resp.StatusCode >= 500:
				entry.WithField("status_code", resp.StatusCode).Error("Server error")
			case resp != nil && resp.StatusCode >= 400:
				entry.WithField("status_code", resp.StatusCode).Warn("Client error")
			case resp != nil:
				entry.WithField("status_code", resp.StatusCode).Info("Request completed")
			}

			if resp != nil {
				if resp.Headers == nil {
					resp.Headers = map[string]string{}
				}
				resp.Headers["X-Request-ID"] = requestID
			}
			return resp, err
		}
	}
}

// RateLimit sheds load above requestsPerSecond for a warm function instance
func RateLimit(requestsPerSecond float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burst)

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (*Response, error) {
			if !limiter.Allow() {
				return Message(http.StatusTooManyRequests, "Too many requests"), nil
			}
			return next(ctx, req)
		}
	}
}
