package servicedef

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// decodeFields reads a JSON object as a map of its properties. The typed fields are taken out of
// the map one at a time, and whatever is left over is kept as extras.
func decodeFields(data []byte) (map[string]ldvalue.Value, error) {
	var fields map[string]ldvalue.Value
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(err, "expected an object")
	}
	return fields, nil
}

func takeOptionalInt(fields map[string]ldvalue.Value, key string) (ldvalue.OptionalInt, error) {
	v, ok := fields[key]
	delete(fields, key)
	if !ok || v.IsNull() {
		return ldvalue.OptionalInt{}, nil
	}
	if !v.IsInt() {
		return ldvalue.OptionalInt{}, errors.Errorf("%s must be an integer, got %s", key, v.JSONString())
	}
	return ldvalue.NewOptionalInt(v.IntValue()), nil
}

func takeString(fields map[string]ldvalue.Value, key string) (string, error) {
	v, ok := fields[key]
	delete(fields, key)
	if !ok || v.IsNull() {
		return "", nil
	}
	if !v.IsString() {
		return "", errors.Errorf("%s must be a string, got %s", key, v.JSONString())
	}
	return v.StringValue(), nil
}

func nonEmpty(fields map[string]ldvalue.Value) map[string]ldvalue.Value {
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func copyFields(fields map[string]ldvalue.Value) map[string]ldvalue.Value {
	out := make(map[string]ldvalue.Value, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// queryValues turns extra query properties into URL parameters. Arrays become repeated
// parameters and objects are sent as JSON text.
func queryValues(fields map[string]ldvalue.Value) url.Values {
	values := url.Values{}
	for key, v := range fields {
		if v.Type() == ldvalue.ArrayType {
			for i := 0; i < v.Count(); i++ {
				values.Add(key, queryScalar(v.GetByIndex(i)))
			}
			continue
		}
		if v.IsNull() {
			continue
		}
		values.Set(key, queryScalar(v))
	}
	return values
}

func queryScalar(v ldvalue.Value) string {
	switch v.Type() {
	case ldvalue.StringType:
		return v.StringValue()
	case ldvalue.NumberType:
		if v.IsInt() {
			return strconv.Itoa(v.IntValue())
		}
		return strconv.FormatFloat(v.Float64Value(), 'f', -1, 64)
	case ldvalue.BoolType:
		return strconv.FormatBool(v.BoolValue())
	default:
		return v.JSONString()
	}
}
