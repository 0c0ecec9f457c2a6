package service

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"skeb-gate-service/domain"
)

const worksSort = "date"

type SkebClient interface {
	Profile(ctx context.Context, username string) (*domain.UserProfile, error)
	WorksPage(ctx context.Context, username string, role domain.Role, sort string, offset int) ([]json.RawMessage, error)
}

type Works struct {
	client SkebClient
}

func NewWorks(client SkebClient) Works {
	return Works{
		client: client,
	}
}

// Aggregate stitches fixed-size upstream pages into one result.
//
// When limit is nil the authoritative total is taken from the user
// profile, at the cost of one extra upstream call. The page plan is
// clamped to the subrequest budget; a clamped result is partial and
// carries a continuation the caller can issue as a follow-up request.
// Pages are fetched strictly sequentially, item order is upstream page
// order. The first page failure aborts the whole aggregation.
func (s Works) Aggregate(
	ctx context.Context,
	username string,
	role domain.Role,
	offset int,
	limit *int,
) (*domain.Aggregation, error) {
	total := 0
	if limit != nil {
		total = *limit
	} else {
		profile, err := s.client.Profile(ctx, username)
		if err != nil {
			return nil, errors.WithMessage(err, "fetch user profile")
		}
		total = profile.WorksTotal(role)
	}

	result := &domain.Aggregation{
		Total: total,
		Works: []json.RawMessage{},
	}
	if total <= 0 {
		return result, nil
	}

	totalPages := (total + domain.PageSize - 1) / domain.PageSize
	if totalPages > domain.SubrequestLimit {
		batchSize := domain.PageSize * domain.SubrequestLimit
		result.Partial = true
		result.Remain = (totalPages - domain.SubrequestLimit + domain.SubrequestLimit - 1) / domain.SubrequestLimit
		result.Next = domain.ContinuationUrl(username, role, offset+batchSize, total-batchSize)
		totalPages = domain.SubrequestLimit
	}

	for page := 0; page < totalPages; page++ {
		works, err := s.client.WorksPage(ctx, username, role, worksSort, offset+page*domain.PageSize)
		if err != nil {
			return nil, errors.WithMessagef(err, "fetch works page %d", page)
		}
		result.Works = append(result.Works, works...)
	}

	return result, nil
}
