// Package userstests contains the users API scenarios themselves and their supporting API.
//
// Each scenario sends one request, checks the status code and the response's JSON Schema,
// asserts scenario-specific field values, and finally checks the response time. Infrastructure
// that is not specific to the users API, such as the test context and result collection, is in
// the lower-level framework package.
package userstests
