// Package framework contains the low-level implementation of test harness infrastructure
// that can be reused for different kinds of API tests.
//
// The general model is:
//
// 1. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results. Assertions from testify's assert and require packages can be
// made directly against a Context.
//
// 2. Each test has its own captured debug log, which a TestLogger can choose to print
// depending on whether the test failed.
//
// 3. Tests can be selected or excluded by regex filters on their IDs, and sibling tests
// can be run concurrently.
//
// The domain-specific code that knows what is being tested is responsible for sending the
// requests, describing what the responses should look like, and providing a domain-specific
// test API on top of the test context.
package framework
