package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"skeb-gate-service/httperrors"
	"skeb-gate-service/request"
)

type InvalidPath struct{}

func NewInvalidPath() InvalidPath {
	return InvalidPath{}
}

func (h InvalidPath) Handle(ctx *request.Context) error {
	return httperrors.New(
		http.StatusBadRequest,
		"Invalid API path",
		errors.Errorf("unexpected api path: %s", ctx.Request().URL.Path),
	)
}
