package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"skeb-gate-service/domain"
	"skeb-gate-service/httperrors"
	"skeb-gate-service/request"
	"skeb-gate-service/response"
)

type WorksClient interface {
	RawWorksPage(ctx context.Context, username string, role domain.Role, sort string, offset int) (json.RawMessage, error)
}

type Aggregator interface {
	Aggregate(ctx context.Context, username string, role domain.Role, offset int, limit *int) (*domain.Aggregation, error)
}

type Works struct {
	client     WorksClient
	aggregator Aggregator
}

func NewWorks(client WorksClient, aggregator Aggregator) Works {
	return Works{
		client:     client,
		aggregator: aggregator,
	}
}

func (h Works) Handle(ctx *request.Context) error {
	username, err := usernameFromPath(ctx.Request())
	if err != nil {
		return err
	}

	role := domain.Role(ctx.Param("role"))
	if !role.Valid() {
		return httperrors.New(
			http.StatusBadRequest,
			"Invalid role parameter",
			errors.Errorf("unexpected role: '%s'", role),
		)
	}

	offset, offsetGiven, err := intParam(ctx, "offset")
	if err != nil {
		return err
	}
	if offset < 0 {
		return httperrors.New(
			http.StatusBadRequest,
			"Invalid offset parameter",
			errors.Errorf("negative offset: %d", offset),
		)
	}

	// sort together with an explicit offset is the platform's own web
	// UI request shape, proxied as a single untouched page.
	sort := ctx.Param("sort")
	if sort != "" && offsetGiven {
		page, err := h.client.RawWorksPage(ctx.Context(), username, role, sort, offset)
		if err != nil {
			return err
		}
		return response.WriteRaw(ctx.ResponseWriter(), http.StatusOK, page)
	}

	var limit *int
	limitValue, limitGiven, err := intParam(ctx, "limit")
	if err != nil {
		return err
	}
	if limitGiven {
		limit = &limitValue
	}

	aggregation, err := h.aggregator.Aggregate(ctx.Context(), username, role, offset, limit)
	if err != nil {
		return err
	}

	statusCode := http.StatusOK
	if aggregation.Partial {
		statusCode = http.StatusPartialContent
	}
	return response.WriteJson(ctx.ResponseWriter(), statusCode, aggregation.Response())
}

func intParam(ctx *request.Context, name string) (int, bool, error) {
	value := ctx.Param(name)
	if value == "" {
		return 0, false, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, httperrors.New(
			http.StatusBadRequest,
			"Invalid "+name+" parameter",
			errors.WithMessagef(err, "parse %s", name),
		)
	}
	return parsed, true, nil
}
