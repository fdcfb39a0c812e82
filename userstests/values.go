package userstests

import (
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// numberValue accepts a JSON number or a string holding one. Some users APIs return generated
// IDs as strings.
func numberValue(v ldvalue.Value) (float64, bool) {
	switch v.Type() {
	case ldvalue.NumberType:
		return v.Float64Value(), true
	case ldvalue.StringType:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.StringValue()), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// idPathSegment renders an ID for use in a resource path.
func idPathSegment(v ldvalue.Value) string {
	if v.IsString() {
		return v.StringValue()
	}
	return v.JSONString()
}
