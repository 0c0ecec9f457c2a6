package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"skeb-gate-service/request"
	"skeb-gate-service/response"
)

type UserClient interface {
	User(ctx context.Context, username string) (json.RawMessage, error)
}

type User struct {
	client UserClient
}

func NewUser(client UserClient) User {
	return User{
		client: client,
	}
}

func (h User) Handle(ctx *request.Context) error {
	username, err := usernameFromPath(ctx.Request())
	if err != nil {
		return err
	}

	user, err := h.client.User(ctx.Context(), username)
	if err != nil {
		return err
	}

	return response.WriteRaw(ctx.ResponseWriter(), http.StatusOK, user)
}
