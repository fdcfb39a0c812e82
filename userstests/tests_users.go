package userstests

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restcontract/users-contract-tests/apiclient"
	"github.com/restcontract/users-contract-tests/framework"
	"github.com/restcontract/users-contract-tests/servicedef"
)

// DoFetchUsersOnPageTest reads one page of the user list and checks the total count and the
// last names at the configured positions.
func DoFetchUsersOnPageTest(t *T) {
	params := t.config.TestData.FetchUsersOnPage
	query := params.QueryParams.Values()
	t.Debug("endpoint: %s", params.Endpoint)
	t.Debug("query params: %s", query.Encode())

	x := t.Exchange(servicedef.FetchUsersOnPageName, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: params.Endpoint,
		Query:    query,
	}, params.StatusOrElse(http.StatusOK))

	total := x.Body.GetByKey("total").IntValue()
	require.Equal(t, params.ValidationData.Total, total, "total number of users")

	data := x.Body.GetByKey("data")
	for _, expected := range params.ValidationData.Users {
		require.Less(t, expected.Index, data.Count(), "page has no user at index %d", expected.Index)
		actual := data.GetByIndex(expected.Index).GetByKey("last_name")
		require.Equal(t, expected.LastName, actual.StringValue(), "last_name of user at index %d", expected.Index)
	}

	require.LessOrEqual(t, data.Count(), total, "number of users on the page must not exceed the total")

	t.RequireResponseTime(x.Response, params.MaxResponseTime())
}

// DoFetchUserByIDTest looks up a single user and checks that the API returned the one asked for.
func DoFetchUserByIDTest(t *T) {
	params := t.config.TestData.FetchUserByID
	query := params.QueryParams.Values()
	t.Debug("endpoint: %s", params.Endpoint)
	t.Debug("query params: %s", query.Encode())

	x := t.Exchange(servicedef.FetchUserByIDName, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: params.Endpoint,
		Query:    query,
	}, params.StatusOrElse(http.StatusOK))

	id := x.Body.GetByKey("data").GetByKey("id")
	require.True(t, id.IsInt(), "data.id should be an integer, was %s", id.JSONString())
	require.Equal(t, params.QueryParams.ID, id.IntValue(), "data.id")

	t.RequireResponseTime(x.Response, params.MaxResponseTime())
}

// DoCreateUserTest creates a user and checks that the API echoes the submitted fields and
// assigns an ID and creation time. Each run creates a new user, so the ID is not compared with
// anything except zero.
func DoCreateUserTest(t *T) {
	params := t.config.TestData.CreateUser
	t.Debug("endpoint: %s", params.Endpoint)
	t.Debug("request body: name=%q email=%q", params.Body.Name, params.Body.Email)

	x := t.Exchange(servicedef.CreateUserName, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: params.Endpoint,
		Body:     params.Body,
	}, params.StatusOrElse(http.StatusCreated))

	id := x.Body.GetByKey("id")
	if params.Cleanup && !id.IsNull() {
		t.Defer(func() { deleteUser(t, params.Endpoint, id) })
	}

	require.Equal(t, params.Body.Name, x.Body.GetByKey("name").StringValue(), "name")
	require.Equal(t, params.Body.Email, x.Body.GetByKey("email").StringValue(), "email")

	createdAt := x.Body.GetByKey("createdAt")
	require.False(t, createdAt.IsNull(), "createdAt is missing")
	require.NotEqual(t, ldvalue.String(""), createdAt, "createdAt is empty")

	require.Greater(t, t.RequireNumber(id, "id"), float64(0), "id")
	t.Debug("user created with ID: %s", id.JSONString())

	t.RequireResponseTime(x.Response, params.MaxResponseTime())
}

// deleteUser removes a user created by the test. It only logs the outcome, since it runs after
// the test's own assertions have finished.
func deleteUser(t *T, endpoint string, id ldvalue.Value) {
	resource := strings.TrimSuffix(endpoint, "/") + "/" + url.PathEscape(idPathSegment(id))
	resp, err := t.config.Client.Do(context.Background(), apiclient.Request{
		Method:   http.MethodDelete,
		Endpoint: resource,
	}, framework.LoggerWithPrefix(t.DebugLogger(), "cleanup: "))
	if err != nil {
		t.Debug("cleanup of user %s failed: %s", id.JSONString(), err)
		return
	}
	if resp.StatusCode >= 300 {
		t.Debug("cleanup of user %s returned HTTP %d", id.JSONString(), resp.StatusCode)
		return
	}
	t.Debug("deleted user %s", id.JSONString())
}
