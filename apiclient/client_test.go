package apiclient

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restcontract/users-contract-tests/framework"
)

func newTestClient(t *testing.T, baseURL string, headers http.Header) *Client {
	c, err := NewClient(Config{BaseURL: baseURL, Headers: headers})
	require.NoError(t, err)
	return c
}

func TestGetWithQueryParams(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{"total": 12}, nil))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL+"/api", http.Header{"X-Extra": []string{"yes"}})
		var debug framework.CapturingLogger

		resp, err := c.Do(context.Background(), Request{
			Endpoint: "/users",
			Query:    url.Values{"page": []string{"2"}},
		}, &debug)
		require.NoError(t, err)

		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, server.URL+"/api/users?page=2", resp.URL)
		assert.NotEmpty(t, resp.RequestID)
		assert.Greater(t, int64(resp.Elapsed), int64(0))

		body, err := resp.JSON()
		require.NoError(t, err)
		assert.Equal(t, 12, body.GetByKey("total").IntValue())

		r := <-requestsCh
		assert.Equal(t, "GET", r.Request.Method)
		assert.Equal(t, "/api/users", r.Request.URL.Path)
		assert.Equal(t, "2", r.Request.URL.Query().Get("page"))
		assert.Equal(t, "yes", r.Request.Header.Get("X-Extra"))
		assert.Equal(t, resp.RequestID, r.Request.Header.Get(RequestIDHeader))
		assert.Empty(t, r.Body)

		assert.NotEmpty(t, debug.Output())
	})
}

func TestPostJSONBody(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(201, http.Header{"Content-Type": []string{"application/json"}},
			[]byte(`{"id":"7"}`)))
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, "", nil)
		resp, err := c.Do(context.Background(), Request{
			Method:   "POST",
			Endpoint: server.URL + "/users",
			Body:     map[string]string{"name": "neo"},
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
		assert.Equal(t, `{"id":"7"}`, string(resp.Body))

		r := <-requestsCh
		assert.Equal(t, "POST", r.Request.Method)
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"name":"neo"}`, string(r.Body))
	})
}

func TestErrorStatusIsNotATransportError(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(503), func(server *httptest.Server) {
		c := newTestClient(t, server.URL, nil)
		resp, err := c.Do(context.Background(), Request{Endpoint: "/users"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 503, resp.StatusCode)
	})
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	server.Close()

	c := newTestClient(t, server.URL, nil)
	_, err := c.Do(context.Background(), Request{Endpoint: "/users"}, nil)
	assert.Error(t, err)
}

func TestSlowResponseIsNotAborted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(200)
	})
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		c := newTestClient(t, server.URL, nil)
		resp, err := c.Do(context.Background(), Request{Endpoint: "/users"}, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, int64(resp.Elapsed), int64(50*time.Millisecond))
	})
}

func TestResolveURL(t *testing.T) {
	c := newTestClient(t, "https://example.com/api/", nil)
	assert.Equal(t, "https://example.com/api", c.BaseURL())

	u, err := c.ResolveURL("/users")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/users", u.String())

	u, err = c.ResolveURL("users?page=3")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/users?page=3", u.String())

	u, err = c.ResolveURL("http://other.example.com/x")
	require.NoError(t, err)
	assert.Equal(t, "http://other.example.com/x", u.String())

	noBase := newTestClient(t, "", nil)
	_, err = noBase.ResolveURL("/users")
	assert.Error(t, err)
}

func TestInvalidBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "reqres.in/api"})
	assert.Error(t, err)
}

func TestResponseJSON(t *testing.T) {
	_, err := (&Response{}).JSON()
	assert.Error(t, err)

	_, err = (&Response{Body: []byte("<html>")}).JSON()
	assert.Error(t, err)

	v, err := (&Response{Body: []byte(`{"data":{"id":2}}`)}).JSON()
	require.NoError(t, err)
	assert.Equal(t, 2, v.GetByKey("data").GetByKey("id").IntValue())
}

func TestResponseBodyFormatting(t *testing.T) {
	r := &Response{Body: []byte(`{"a":1}`)}
	assert.Equal(t, "{\n  \"a\": 1\n}", r.PrettyBody())
	assert.Equal(t, `{"a`, strings.TrimSuffix(r.BodyExcerpt(3), "..."))
	assert.Equal(t, `{"a":1}`, r.BodyExcerpt(100))

	notJSON := &Response{Body: []byte("plain")}
	assert.Equal(t, "plain", notJSON.PrettyBody())
}

func TestCurl(t *testing.T) {
	req, err := http.NewRequest("POST", "https://example.com/api/users?a=1&b=2", nil)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	assert.Equal(t,
		`curl -X POST -H 'Accept: application/json' -H 'Content-Type: application/json' `+
			`-d '{"name":"it'"'"'s me"}' 'https://example.com/api/users?a=1&b=2'`,
		Curl(req, []byte(`{"name":"it's me"}`)))
}

func TestAwaitService(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(404), func(server *httptest.Server) {
		c := newTestClient(t, server.URL, nil)
		var out bytes.Buffer
		require.NoError(t, c.AwaitService(context.Background(), time.Second, &out))
		assert.Contains(t, out.String(), "status 404")
	})

	server := httptest.NewServer(httphelpers.HandlerWithStatus(200))
	server.Close()
	c := newTestClient(t, server.URL, nil)
	err := c.AwaitService(context.Background(), 300*time.Millisecond, ioutil.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
