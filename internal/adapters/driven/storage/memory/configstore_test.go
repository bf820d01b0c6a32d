package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("output.indent", "\t"))
	require.NoError(t, store.Set("batch.max_entries", 250))
	require.NoError(t, store.Set("transport.requests_per_second", 2.5))
	require.NoError(t, store.Set("journal.enabled", true))
	require.NoError(t, store.Set("schemas.paths", []any{"a.yaml", 3, "b.yaml"}))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("output.indent"), "\t"},
		{"string wrong type", store.GetString("batch.max_entries"), ""},
		{"int", store.GetInt("batch.max_entries"), 250},
		{"int from float", store.GetInt("transport.requests_per_second"), 2},
		{"int missing", store.GetInt("missing"), 0},
		{"float", store.GetFloat("transport.requests_per_second"), 2.5},
		{"float from int", store.GetFloat("batch.max_entries"), 250.0},
		{"float wrong type", store.GetFloat("output.indent"), 0.0},
		{"bool", store.GetBool("journal.enabled"), true},
		{"bool wrong type", store.GetBool("output.indent"), false},
		{"slice skips non-strings", store.GetStringSlice("schemas.paths"), []string{"a.yaml", "b.yaml"}},
		{"slice missing", store.GetStringSlice("missing"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("journal.backend", "sqlite"))
	require.NoError(t, store.Set("journal.backend", "memory"))

	val, ok := store.Get("journal.backend")
	assert.True(t, ok)
	assert.Equal(t, "memory", val)
}

func TestConfigStore_KeysAndDelete(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("namespaces.gd", "http://schemas.google.com/g/2005"))
	require.NoError(t, store.Set("namespaces.batch", "http://schemas.google.com/gdata/batch"))
	require.NoError(t, store.Set("output.indent", ""))

	assert.Equal(t, []string{"namespaces.batch", "namespaces.gd"}, store.Keys("namespaces."))

	require.NoError(t, store.Delete("namespaces.gd"))
	assert.Equal(t, []string{"namespaces.batch"}, store.Keys("namespaces."))
	assert.Len(t, store.Keys(""), 2)
}

func TestConfigStore_SaveLoadNoop(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, "v", store.GetString("k"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.Keys("key")
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys("key"), 10)
}
