package middleware

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/log"
	"skeb-gate-service/request"
)

const maxRequestBodySize = 1 * 1024 * 1024

func Entrypoint(next Handler, endpoint string, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		req.Body = http.MaxBytesReader(writer, req.Body, maxRequestBodySize)
		ctx := request.NewContext(req, writer, endpoint)
		err := next.Handle(ctx)
		if err != nil {
			logger.Error(req.Context(), errors.WithMessage(err, "uncaught error"))
		}
	})
}
