package userstests

import (
	"context"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/restcontract/users-contract-tests/apiclient"
	"github.com/restcontract/users-contract-tests/framework"
	"github.com/restcontract/users-contract-tests/schema"
	"github.com/restcontract/users-contract-tests/servicedef"
)

const maxBodyExcerptLength = 500

// SuiteConfig is everything the test suite needs. All of it is read-only once the suite starts,
// so scenarios can share it when they run concurrently.
type SuiteConfig struct {
	Client   *apiclient.Client
	TestData servicedef.TestData
	Schemas  *schema.Registry
	// Parallelism is how many scenarios may run at once. Values below 2 mean sequentially.
	Parallelism int
}

// T represents a test or subtest in the users API test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner, and with some extra features such as debug logging that are convenient for
// our use case. Those features are provided by our lower-level framework package.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if it were
// a *testing.T. The request methods also have assertions built in, causing the test to immediately
// fail if the API cannot be reached or its response is malformed.
type T struct {
	context *framework.Context
	config  *SuiteConfig
}

// Exchange is the outcome of one request to the API whose status and shape have already been
// checked.
type Exchange struct {
	Response *apiclient.Response
	Body     ldvalue.Value
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

func (t *T) ID() framework.TestID {
	return t.context.ID()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(&T{context: c, config: t.config})
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Defer schedules a function to run at the end of the test, whether it passed or not.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Send sends a request and returns whatever response arrives. The test fails and immediately
// exits if no response could be obtained at all.
func (t *T) Send(req apiclient.Request) *apiclient.Response {
	resp, err := t.config.Client.Do(context.Background(), req, t.DebugLogger())
	require.NoError(t, err, "request to the API failed")
	t.Debug("response body:\n%s", resp.PrettyBody())
	return resp
}

// Exchange runs the common part of every scenario: it sends the request, requires the expected
// status code, parses the body as JSON, and requires the body to satisfy the named schema.
// Any failure aborts the test.
func (t *T) Exchange(schemaName string, req apiclient.Request, expectedStatus int) Exchange {
	validator, ok := t.config.Schemas.Get(schemaName)
	require.True(t, ok, "no response schema is defined for %q", schemaName)

	resp := t.Send(req)
	t.Debug("response time: %d ms", resp.Elapsed.Milliseconds())
	t.RequireStatus(resp, expectedStatus)

	body, err := resp.JSON()
	require.NoError(t, err, "response body: %s", resp.BodyExcerpt(maxBodyExcerptLength))

	t.RequireSchema(validator, resp)
	return Exchange{Response: resp, Body: body}
}

// RequireStatus fails and exits the test if the response had a different status code.
func (t *T) RequireStatus(resp *apiclient.Response, expected int) {
	if resp.StatusCode != expected {
		require.Fail(t, "unexpected response status",
			"expected HTTP %d, got HTTP %d from %s; body: %s",
			expected, resp.StatusCode, resp.URL, resp.BodyExcerpt(maxBodyExcerptLength))
	}
}

// RequireSchema fails and exits the test if the response body does not satisfy the schema.
// The failure message lists every violating path.
func (t *T) RequireSchema(validator *schema.Validator, resp *apiclient.Response) {
	result, err := validator.Validate(resp.Body)
	require.NoError(t, err)
	if !result.Valid {
		require.Fail(t, "response does not match schema",
			"schema %q:\n%s", validator.Name(), result)
	}
}

// RequireResponseTime fails and exits the test unless the response took strictly less time
// than the limit.
func (t *T) RequireResponseTime(resp *apiclient.Response, limit time.Duration) {
	if resp.Elapsed >= limit {
		require.Fail(t, "response was too slow",
			"response time was %d ms, limit is %d ms", resp.Elapsed.Milliseconds(), limit.Milliseconds())
	}
}

// RequireNumber returns the numeric value of a JSON number, or of a string containing a number.
// The test fails and exits for anything else.
func (t *T) RequireNumber(value ldvalue.Value, description string) float64 {
	n, ok := numberValue(value)
	if !ok {
		require.Fail(t, "expected a number", "%s was %s", description, value.JSONString())
	}
	return n
}
