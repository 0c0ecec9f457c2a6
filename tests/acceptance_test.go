//nolint
package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"skeb-gate-service/assembly"
	"skeb-gate-service/conf"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/txix-open/isp-kit/http/httpcli"
	"github.com/txix-open/isp-kit/test"
)

type worksMeta struct {
	Total    int     `json:"total"`
	Returned int     `json:"returned"`
	Next     *string `json:"next"`
	Remain   *int    `json:"remain"`
}

type worksResponse struct {
	Data []json.RawMessage `json:"data"`
	Meta worksMeta         `json:"meta"`
}

// skebMock imitates the upstream platform api: a user object with works
// counters and date-sorted 30-item works pages.
type skebMock struct {
	srv        *httptest.Server
	totalWorks int64
	userStatus int64
	calls      int64
}

func newSkebMock(totalWorks int) *skebMock {
	mock := &skebMock{}
	mock.totalWorks = int64(totalWorks)
	mock.userStatus = http.StatusOK
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/users/{username}", mock.handleUser)
	mux.HandleFunc("GET /api/users/{username}/works", mock.handleWorks)
	mock.srv = httptest.NewServer(mux)
	return mock
}

func (m *skebMock) handleUser(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&m.calls, 1)
	status := int(atomic.LoadInt64(&m.userStatus))
	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w,
		`{"screen_name":%q,"name":"Mock User","received_works_count":%d,"sent_public_works_count":%d}`,
		r.PathValue("username"), atomic.LoadInt64(&m.totalWorks), atomic.LoadInt64(&m.totalWorks),
	)
}

func (m *skebMock) handleWorks(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&m.calls, 1)
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	count := int(atomic.LoadInt64(&m.totalWorks)) - offset
	if count < 0 {
		count = 0
	}
	if count > 30 {
		count = 30
	}
	works := make([]json.RawMessage, 0, count)
	for i := 0; i < count; i++ {
		works = append(works, json.RawMessage(fmt.Sprintf(`{"id":%d,"path":"/@creator/works/%d"}`, offset+i, offset+i)))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(works)
}

func (m *skebMock) Calls() int {
	return int(atomic.LoadInt64(&m.calls))
}

type AcceptanceTestSuite struct {
	suite.Suite
}

func (s *AcceptanceTestSuite) serverFor(upstream *skebMock, rateLimit int) *httptest.Server {
	return newGateServer(s.T(), upstream, rateLimit, nil)
}

func newGateServer(t *testing.T, upstream *skebMock, rateLimit int, redisCli redis.UniversalClient) *httptest.Server {
	test, _ := test.New(t)

	config := conf.Local{
		BindAddress:         ":0",
		SkebUrls:            []string{upstream.srv.URL},
		RequestTimeoutInSec: 5,
		RateLimit: conf.RateLimit{
			MaxRequests:          rateLimit,
			WindowInSec:          60,
			MaxTrackedIdentities: 128,
			TrustForwardedFor:    true,
		},
		Logging: conf.Logging{RequestLogEnable: true},
	}
	handler := assembly.NewLocator(test.Logger()).Handler(config, redisCli)

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Cleanup(upstream.srv.Close)
	return srv
}

// identity gives every request series its own rate-limit window.
func identity() string {
	return uuid.New().String()
}

func (s *AcceptanceTestSuite) TestUserInfo() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	user := map[string]any{}
	resp, err := cli.Get(srv.URL + "/api/users/@alice").
		Header("X-Forwarded-For", identity()).
		JsonResponseBody(&user).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	require.EqualValues("alice", user["screen_name"])
	require.EqualValues(1, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestWorksFullAggregation() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	body := worksResponse{}
	resp, err := cli.Get(srv.URL + "/api/users/alice/works?role=creator").
		Header("X-Forwarded-For", identity()).
		JsonResponseBody(&body).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	require.EqualValues(45, body.Meta.Total)
	require.EqualValues(45, body.Meta.Returned)
	require.Len(body.Data, 45)
	require.Nil(body.Meta.Next)
	require.Nil(body.Meta.Remain)
	// one profile fetch plus two pages
	require.EqualValues(3, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestWorksPartialAggregation() {
	_, require := test.New(s.T())
	upstream := newSkebMock(2000)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	body := worksResponse{}
	resp, err := cli.Get(srv.URL + "/api/users/alice/works?role=creator").
		Header("X-Forwarded-For", identity()).
		JsonResponseBody(&body).
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusPartialContent, resp.StatusCode())
	require.EqualValues(2000, body.Meta.Total)
	require.EqualValues(1200, body.Meta.Returned)
	require.Len(body.Data, 1200)
	require.NotNil(body.Meta.Next)
	require.EqualValues("/api/users/alice/works?role=creator&offset=1200&limit=800", *body.Meta.Next)
	require.NotNil(body.Meta.Remain)
	require.EqualValues(1, *body.Meta.Remain)
	// one profile fetch plus the whole subrequest budget
	require.EqualValues(41, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestWorksContinuationCompletes() {
	_, require := test.New(s.T())
	upstream := newSkebMock(2000)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	body := worksResponse{}
	resp, err := cli.Get(srv.URL + "/api/users/alice/works?role=creator&offset=1200&limit=800").
		Header("X-Forwarded-For", identity()).
		JsonResponseBody(&body).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	require.EqualValues(800, body.Meta.Total)
	require.EqualValues(800, body.Meta.Returned)
	require.Nil(body.Meta.Next)
	// explicit limit, no profile fetch
	require.EqualValues(27, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestWorksPassthrough() {
	_, require := test.New(s.T())
	upstream := newSkebMock(90)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	page := []json.RawMessage{}
	resp, err := cli.Get(srv.URL + "/api/users/alice/works?role=creator&sort=date&offset=30").
		Header("X-Forwarded-For", identity()).
		JsonResponseBody(&page).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
	require.Len(page, 30)
	require.EqualValues(1, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestWorksInvalidRole() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	_, err := cli.Get(srv.URL + "/api/users/alice/works?role=stranger").
		Header("X-Forwarded-For", identity()).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusBadRequest, errResp.StatusCode)
	require.EqualValues(0, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestWorksInvalidNumericParams() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	cli := httpcli.New()
	for _, query := range []string{"role=creator&offset=abc", "role=creator&limit=abc", "role=creator&offset=-1"} {
		_, err := cli.Get(srv.URL + "/api/users/alice/works?" + query).
			Header("X-Forwarded-For", identity()).
			StatusCodeToError().
			Do(context.Background())
		errResp := httpcli.ErrorResponse{}
		require.ErrorAs(err, &errResp)
		require.EqualValues(http.StatusBadRequest, errResp.StatusCode)
	}
	require.EqualValues(0, upstream.Calls())
}

func (s *AcceptanceTestSuite) TestUpstreamErrorMapping() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	atomic.StoreInt64(&upstream.userStatus, http.StatusNotFound)
	srv := s.serverFor(upstream, 100)

	resp, err := http.Get(srv.URL + "/api/users/ghost")
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusNotFound, resp.StatusCode)
	require.EqualValues("application/json", resp.Header.Get("Content-Type"))
	require.EqualValues("*", resp.Header.Get("Access-Control-Allow-Origin"))

	body := map[string]string{}
	require.NoError(json.NewDecoder(resp.Body).Decode(&body))
	require.EqualValues("Resource not found", body["error"])
}

func (s *AcceptanceTestSuite) TestRateLimit() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 6)

	cli := httpcli.New()
	clientIp := identity()
	for i := 0; i < 6; i++ {
		resp, err := cli.Get(srv.URL + "/api/users/alice").
			Header("X-Forwarded-For", clientIp).
			StatusCodeToError().
			Do(context.Background())
		require.NoError(err)
		require.EqualValues(http.StatusOK, resp.StatusCode())
	}

	_, err := cli.Get(srv.URL + "/api/users/alice").
		Header("X-Forwarded-For", clientIp).
		StatusCodeToError().
		Do(context.Background())
	errResp := httpcli.ErrorResponse{}
	require.ErrorAs(err, &errResp)
	require.EqualValues(http.StatusTooManyRequests, errResp.StatusCode)

	// another identity is not affected
	resp, err := cli.Get(srv.URL + "/api/users/alice").
		Header("X-Forwarded-For", identity()).
		StatusCodeToError().
		Do(context.Background())
	require.NoError(err)
	require.EqualValues(http.StatusOK, resp.StatusCode())
}

func (s *AcceptanceTestSuite) TestMissingUsername() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	resp, err := http.Get(srv.URL + "/api/users/@")
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusBadRequest, resp.StatusCode)

	body := map[string]string{}
	require.NoError(json.NewDecoder(resp.Body).Decode(&body))
	require.EqualValues("Username is required", body["error"])
}

func (s *AcceptanceTestSuite) TestInvalidApiPath() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	resp, err := http.Get(srv.URL + "/api/something/else")
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusBadRequest, resp.StatusCode)

	body := map[string]string{}
	require.NoError(json.NewDecoder(resp.Body).Decode(&body))
	require.EqualValues("Invalid API path", body["error"])
}

func (s *AcceptanceTestSuite) TestStaticPageAndNotFound() {
	_, require := test.New(s.T())
	upstream := newSkebMock(45)
	srv := s.serverFor(upstream, 100)

	for _, path := range []string{"/", "/@alice"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(err)
		require.EqualValues(http.StatusOK, resp.StatusCode)
		require.EqualValues("text/html; charset=utf-8", resp.Header.Get("Content-Type"))
		resp.Body.Close()
	}

	resp, err := http.Get(srv.URL + "/unknown/path")
	require.NoError(err)
	defer resp.Body.Close()
	require.EqualValues(http.StatusNotFound, resp.StatusCode)
	require.EqualValues(0, upstream.Calls())
}

func TestAcceptanceTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(AcceptanceTestSuite))
}
