// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import (
	"encoding/json"
	"fmt"
)

// Argument accessors. JSON decoding leaves numbers as float64 and nested
// objects as map[string]any; these helpers normalize what the bridge
// router needs and report missing required arguments uniformly.

func missing(key string) error {
	return fmt.Errorf("%w: missing required argument %q", ErrMalformed, key)
}

func wrongType(key string, v any) error {
	return fmt.Errorf("%w: argument %q has unexpected type %T", ErrMalformed, key, v)
}

// StringArg returns a required string argument
func StringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, v)
	}
	return s, nil
}

// OptStringArg returns an optional string argument, "" when absent
func OptStringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", wrongType(key, v)
	}
	return s, nil
}

// Int64Arg returns a required integer argument
func Int64Arg(args map[string]any, key string) (int64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, missing(key)
	}
	return toInt64(key, v)
}

// OptIntArg returns an optional integer argument; ok reports presence
func OptIntArg(args map[string]any, key string) (n int, ok bool, err error) {
	v, present := args[key]
	if !present || v == nil {
		return 0, false, nil
	}
	i, err := toInt64(key, v)
	if err != nil {
		return 0, false, err
	}
	return int(i), true, nil
}

func toInt64(key string, v any) (int64, error) {
	switch n := v.(type) {
	case float64:
		return int64(n), nil
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, wrongType(key, v)
		}
		return i, nil
	default:
		return 0, wrongType(key, v)
	}
}

// MapArg returns an optional object argument, nil when absent
func MapArg(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, wrongType(key, v)
	}
	return m, nil
}

// StringSliceArg returns an optional list-of-strings argument
func StringSliceArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, wrongType(key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, wrongType(key, v)
	}
}

// BoolArg returns an optional boolean argument, false when absent
func BoolArg(args map[string]any, key string) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, wrongType(key, v)
	}
	return b, nil
}
