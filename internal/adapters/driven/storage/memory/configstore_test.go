package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("notion.database_id", "abc"))
	val, ok := store.Get("notion.database_id")
	assert.True(t, ok)
	assert.Equal(t, "abc", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("str", "hello")
	_ = store.Set("int", 42)
	_ = store.Set("int64", int64(7))
	_ = store.Set("float", 2.5)
	_ = store.Set("bool", true)
	_ = store.Set("slice", []any{"a", 1, "b"})

	assert.Equal(t, "hello", store.GetString("str"))
	assert.Equal(t, "", store.GetString("int"))

	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("int64"))
	assert.Equal(t, 2, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("str"))

	assert.Equal(t, 2.5, store.GetFloat("float"))
	assert.Equal(t, 42.0, store.GetFloat("int"))
	assert.Equal(t, 7.0, store.GetFloat("int64"))
	assert.Zero(t, store.GetFloat("bool"))

	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("slice"))
	assert.Nil(t, store.GetStringSlice("str"))
}

func TestConfigStore_GetStringMap(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("mapping.columns.French", "term")
	_ = store.Set("mapping.columns.English", "translation")
	_ = store.Set("mapping.columns.Count", 3)
	_ = store.Set("mapping.required", []string{"term"})

	assert.Equal(t, map[string]string{
		"French":  "term",
		"English": "translation",
	}, store.GetStringMap("mapping.columns"))
	assert.Nil(t, store.GetStringMap("course.columns"))
}

func TestConfigStore_SaveAndLoadNoOp(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("key", "value")

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "value", store.GetString("key"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("mapping.columns.c%d", i)
			_ = store.Set(key, "v")
			_ = store.GetString(key)
			_ = store.GetStringMap("mapping.columns")
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.GetStringMap("mapping.columns"), 50)
}
