package domain

import (
	"encoding/json"
	"fmt"
)

const (
	PageSize        = 30
	SubrequestLimit = 40
)

type Role string

const (
	RoleCreator Role = "creator"
	RoleClient  Role = "client"
)

func (r Role) Valid() bool {
	return r == RoleCreator || r == RoleClient
}

// Aggregation is the stitched result of one works request.
// Next and Remain are set only when the page plan exceeded the
// subrequest budget and the result is partial.
type Aggregation struct {
	Works   []json.RawMessage
	Total   int
	Partial bool
	Next    string
	Remain  int
}

type WorksMeta struct {
	Total    int     `json:"total"`
	Returned int     `json:"returned"`
	Next     *string `json:"next"`
	Remain   *int    `json:"remain"`
}

type WorksResponse struct {
	Data []json.RawMessage `json:"data"`
	Meta WorksMeta         `json:"meta"`
}

func (a Aggregation) Response() WorksResponse {
	works := a.Works
	if works == nil {
		works = []json.RawMessage{}
	}
	meta := WorksMeta{
		Total:    a.Total,
		Returned: len(works),
	}
	if a.Partial {
		next := a.Next
		remain := a.Remain
		meta.Next = &next
		meta.Remain = &remain
	}
	return WorksResponse{
		Data: works,
		Meta: meta,
	}
}

func ContinuationUrl(username string, role Role, offset int, limit int) string {
	return fmt.Sprintf("/api/users/%s/works?role=%s&offset=%d&limit=%d", username, role, offset, limit)
}
