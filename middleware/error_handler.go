package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"skeb-gate-service/httperrors"
	"skeb-gate-service/request"
)

type HttpError interface {
	StatusCode() int
	WriteError(w http.ResponseWriter) error
}

func ErrorHandler(logger log.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx *request.Context) error {
			err := next.Handle(ctx)
			if err == nil {
				return nil
			}

			var httpErr HttpError
			if errors.As(err, &httpErr) {
				logger.Error(ctx.Context(), err, log.Int("statusCode", httpErr.StatusCode()))
				return httpErr.WriteError(ctx.ResponseWriter())
			}

			logger.Error(ctx.Context(), err)
			return httperrors.
				New(http.StatusInternalServerError, "internal service error", err).
				WriteError(ctx.ResponseWriter())
		})
	}
}
