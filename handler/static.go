package handler

import (
	"skeb-gate-service/request"
	"skeb-gate-service/response"
)

type Static struct {
	page []byte
}

func NewStatic(page []byte) Static {
	return Static{
		page: page,
	}
}

func (h Static) Handle(ctx *request.Context) error {
	return response.WriteHtml(ctx.ResponseWriter(), h.page)
}
