package skeb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/lb"
	"skeb-gate-service/domain"
	"skeb-gate-service/httperrors"
)

const (
	// The upstream rejects requests without these headers. The token is
	// a fixed placeholder, no real account is involved.
	authorizationHeader = "Bearer null"
	secFetchSiteHeader  = "same-origin"
	secFetchModeHeader  = "cors"

	resourceDefault        = "Resource"
	resourceUserInWorksApi = "User in works api"
	resourceWorks          = "Works"
)

type Client struct {
	cli     *httpcli.Client
	hosts   *lb.RoundRobin
	timeout time.Duration
}

func NewClient(cli *httpcli.Client, baseUrls []string, timeout time.Duration) *Client {
	return &Client{
		cli:     cli,
		hosts:   lb.NewRoundRobin(baseUrls),
		timeout: timeout,
	}
}

// User returns the upstream user object as is.
func (c *Client) User(ctx context.Context, username string) (json.RawMessage, error) {
	body := json.RawMessage{}
	err := c.get(ctx, c.userPath(username), &body, resourceDefault)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Profile fetches the user object and extracts the works counters the
// aggregator plans pages from.
func (c *Client) Profile(ctx context.Context, username string) (*domain.UserProfile, error) {
	profile := domain.UserProfile{}
	err := c.get(ctx, c.userPath(username), &profile, resourceUserInWorksApi)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// WorksPage returns one parsed page of works.
func (c *Client) WorksPage(
	ctx context.Context,
	username string,
	role domain.Role,
	sort string,
	offset int,
) ([]json.RawMessage, error) {
	page := []json.RawMessage{}
	err := c.get(ctx, c.worksPath(username, role, sort, offset), &page, resourceWorks)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// RawWorksPage returns one page body unmodified, for the passthrough
// request shape used by the platform's own web UI.
func (c *Client) RawWorksPage(
	ctx context.Context,
	username string,
	role domain.Role,
	sort string,
	offset int,
) (json.RawMessage, error) {
	body := json.RawMessage{}
	err := c.get(ctx, c.worksPath(username, role, sort, offset), &body, resourceWorks)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, path string, responseBody any, resource string) error {
	baseUrl, err := c.hosts.Next()
	if err != nil {
		return errors.WithMessage(err, "next upstream url")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err = c.cli.Get(baseUrl+path).
		Header("Authorization", authorizationHeader).
		Header("Sec-Fetch-Site", secFetchSiteHeader).
		Header("Sec-Fetch-Mode", secFetchModeHeader).
		JsonResponseBody(responseBody).
		StatusCodeToError().
		Do(ctx)
	if err != nil {
		return classifyError(err, resource)
	}

	return nil
}

func (c *Client) userPath(username string) string {
	return fmt.Sprintf("/api/users/%s", url.PathEscape(username))
}

func (c *Client) worksPath(username string, role domain.Role, sort string, offset int) string {
	query := url.Values{}
	query.Set("role", string(role))
	query.Set("sort", sort)
	query.Set("offset", fmt.Sprintf("%d", offset))
	return fmt.Sprintf("/api/users/%s/works?%s", url.PathEscape(username), query.Encode())
}

// classifyError maps an upstream failure to a caller-facing error.
// Each status is an independent case. Transport failures and
// unparsable bodies surface as 500 with a fixed message, the
// underlying error is only logged.
func classifyError(err error, resource string) error {
	errResp := httpcli.ErrorResponse{}
	if errors.As(err, &errResp) {
		switch errResp.StatusCode {
		case http.StatusForbidden:
			return httperrors.New(http.StatusForbidden, "Access denied by Skeb", err)
		case http.StatusNotFound:
			return httperrors.New(http.StatusNotFound, fmt.Sprintf("%s not found", resource), err)
		case http.StatusTooManyRequests:
			return httperrors.New(http.StatusTooManyRequests, "Skeb API rate limit exceeded", err)
		case http.StatusInternalServerError:
			return httperrors.New(http.StatusInternalServerError, "Skeb API server error", err)
		default:
			return httperrors.New(
				errResp.StatusCode,
				fmt.Sprintf("Unexpected API error: %d", errResp.StatusCode),
				err,
			)
		}
	}

	return httperrors.New(http.StatusInternalServerError, "Skeb API is not available", err)
}
