package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
)

// CompressRequest holds the arguments of the compress_java tool.
type CompressRequest struct {
	Path             string `json:"path"`
	Source           string `json:"source"`
	AggregationLevel string `json:"aggregation_level"`
	KeyMapping       *bool  `json:"key_mapping"`
	MaxDepth         *int   `json:"max_depth"`
	Frame            string `json:"frame"`
}

// StatsRequest holds the arguments of the digest_stats tool.
type StatsRequest struct {
	Path    string   `json:"path"`
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
	Workers *int     `json:"workers"`
}

// bindArguments binds the arguments of a tool request to target with type
// coercion. Clients may send every parameter as a string, including
// JSON-encoded arrays, booleans and numbers.
// The returned result is non-nil when the arguments are unusable.
func bindArguments(request mcp.CallToolRequest, target interface{}) *mcp.CallToolResult {
	raw := request.Params.Arguments
	if raw == nil {
		return nil
	}
	argsMap, ok := raw.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format")
	}
	if err := coerce(argsMap, target); err != nil {
		return mcp.NewToolResultError("invalid arguments: " + err.Error())
	}
	return nil
}

func coerce(args map[string]interface{}, target interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

// jsonStringHook decodes string arguments holding JSON into the target kind.
func jsonStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch {
	case t.Kind() == reflect.Slice:
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			out := reflect.New(t)
			if err := json.Unmarshal([]byte(raw), out.Interface()); err == nil {
				return out.Elem().Interface(), nil
			}
		}

	case t.Kind() == reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}

	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}
