package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_TypedGetters(t *testing.T) {
	v := Values{
		"output.indent":                 "\t",
		"batch.max_entries":             int64(250),
		"transport.burst":               4,
		"transport.requests_per_second": 2.5,
		"journal.enabled":               true,
		"schemas.paths":                 []any{"a.yaml", 3, "b.yaml"},
		"typed.paths":                   []string{"c.yaml"},
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", v.String("output.indent"), "\t"},
		{"string wrong type", v.String("batch.max_entries"), ""},
		{"int64", v.Int("batch.max_entries"), 250},
		{"int", v.Int("transport.burst"), 4},
		{"int from float", v.Int("transport.requests_per_second"), 2},
		{"int missing", v.Int("missing"), 0},
		{"float", v.Float("transport.requests_per_second"), 2.5},
		{"float from int64", v.Float("batch.max_entries"), 250.0},
		{"float wrong type", v.Float("output.indent"), 0.0},
		{"bool", v.Bool("journal.enabled"), true},
		{"bool wrong type", v.Bool("output.indent"), false},
		{"slice skips non-strings", v.StringSlice("schemas.paths"), []string{"a.yaml", "b.yaml"}},
		{"typed slice", v.StringSlice("typed.paths"), []string{"c.yaml"}},
		{"slice missing", v.StringSlice("missing"), []string(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestValues_Keys(t *testing.T) {
	v := Values{"namespaces.gd": "g", "namespaces.atom": "a", "output.indent": ""}

	assert.Equal(t, []string{"namespaces.atom", "namespaces.gd"}, v.Keys("namespaces."))
	assert.Len(t, v.Keys(""), 3)
	assert.Empty(t, v.Keys("journal."))
}

func TestFlattenNest(t *testing.T) {
	tree := map[string]any{
		"output": map[string]any{
			"indent": "  ",
		},
		"transport": map[string]any{
			"burst": int64(4),
			"retry": map[string]any{"max": int64(2)},
		},
		"top": "level",
	}

	flat := Flatten(tree)
	assert.Equal(t, Values{
		"output.indent":       "  ",
		"transport.burst":     int64(4),
		"transport.retry.max": int64(2),
		"top":                 "level",
	}, flat)

	nested, err := flat.Nest()
	require.NoError(t, err)
	assert.Equal(t, tree, nested)
}

func TestNest_Conflicts(t *testing.T) {
	tests := []struct {
		name string
		v    Values
	}{
		{name: "value then table", v: Values{"journal": "sqlite", "journal.dir": "/tmp"}},
		{name: "deep", v: Values{"a.b": 1, "a.b.c": 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.v.Nest()
			assert.ErrorContains(t, err, "conflicts")
		})
	}
}
