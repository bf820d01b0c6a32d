// Package config holds the flat key/value model shared by the config stores.
//
// Keys are dotted paths ("transport.burst"). Stores keep values flat and
// only nest them into tables when writing a file.
package config

import (
	"fmt"
	"sort"
	"strings"
)

// Values is a flat configuration map. It is not safe for concurrent use;
// stores guard it with their own lock.
type Values map[string]any

// String returns the string at key, or "" when missing or not a string.
func (v Values) String(key string) string {
	s, _ := v[key].(string)
	return s
}

// Int returns the integer at key. TOML decodes integers as int64 and
// in-process callers may store int or float64; anything else is 0.
func (v Values) Int(key string) int {
	switch n := v[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// Float returns the number at key, widening integers.
func (v Values) Float(key string) float64 {
	switch n := v[key].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}

// Bool returns the boolean at key, or false.
func (v Values) Bool(key string) bool {
	b, _ := v[key].(bool)
	return b
}

// StringSlice returns the string list at key. TOML arrays decode as []any;
// non-string items are skipped.
func (v Values) StringSlice(key string) []string {
	switch list := v[key].(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Keys returns the sorted keys starting with prefix.
func (v Values) Keys(prefix string) []string {
	var keys []string
	for k := range v {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Flatten converts nested tables to dotted keys:
// {"a": {"b": 1}} becomes {"a.b": 1}.
func Flatten(tree map[string]any) Values {
	out := make(Values)
	flattenInto(out, tree, "")
	return out
}

func flattenInto(out Values, tree map[string]any, prefix string) {
	for key, value := range tree {
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			flattenInto(out, nested, key)
			continue
		}
		out[key] = value
	}
}

// Nest is the inverse of Flatten. A key that is both a value and a table
// ("a" and "a.b") cannot be nested.
func (v Values) Nest() (map[string]any, error) {
	root := make(map[string]any)
	for _, key := range v.Keys("") {
		parts := strings.Split(key, ".")
		table := root
		for i, part := range parts[:len(parts)-1] {
			next, exists := table[part]
			if !exists {
				child := make(map[string]any)
				table[part] = child
				table = child
				continue
			}
			child, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config key %q conflicts with %q", key, strings.Join(parts[:i+1], "."))
			}
			table = child
		}
		leaf := parts[len(parts)-1]
		if _, exists := table[leaf]; exists {
			return nil, fmt.Errorf("config key %q conflicts with a table of the same name", key)
		}
		table[leaf] = v[key]
	}
	return root, nil
}
