// Package apiclient sends requests to the API under test and captures what comes back,
// including how long it took.
//
// There is no retry logic and, unless configured otherwise, no request timeout. A slow
// response is still read in full and reported with its actual duration.
package apiclient
