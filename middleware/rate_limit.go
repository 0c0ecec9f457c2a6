package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"skeb-gate-service/domain"
	"skeb-gate-service/httperrors"
	"skeb-gate-service/request"
)

type RateLimiter interface {
	Allow(ctx context.Context, identity string) (*domain.RateLimitResult, error)
}

func RateLimit(limiter RateLimiter, trustForwardedFor bool) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			identity := clientIdentity(ctx.Request(), trustForwardedFor)

			result, err := limiter.Allow(ctx.Context(), identity)
			if err != nil {
				return errors.WithMessage(err, "rate limit: allow")
			}
			if !result.Allow {
				return httperrors.New(
					http.StatusTooManyRequests,
					"Rate limit exceeded",
					errors.Errorf("rate limit: limit has been reached for '%s'", identity),
				)
			}

			return next.Handle(ctx)
		})
	}
}

// clientIdentity trusts X-Forwarded-For only behind a trusted reverse
// proxy, otherwise the transport-level peer address is used.
func clientIdentity(r *http.Request, trustForwardedFor bool) string {
	if trustForwardedFor {
		forwarded := r.Header.Get("X-Forwarded-For")
		if forwarded != "" {
			return strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}
