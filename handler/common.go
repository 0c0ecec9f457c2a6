package handler

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"skeb-gate-service/httperrors"
)

func usernameFromPath(r *http.Request) (string, error) {
	username := strings.TrimPrefix(mux.Vars(r)["username"], "@")
	if username == "" {
		return "", httperrors.New(
			http.StatusBadRequest,
			"Username is required",
			errors.New("empty username in path"),
		)
	}
	return username, nil
}
