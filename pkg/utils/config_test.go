package utils

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("with nil values", func(t *testing.T) {
		config := NewConfig(nil)
		require.NotNil(t, config)
		assert.Len(t, config.Keys(), 0)
	})

	t.Run("with values", func(t *testing.T) {
		values := map[string]string{
			"key1": "value1",
			"key2": "value2",
		}
		config := NewConfig(values)

		assert.Equal(t, "value1", config.Get("key1"))
		assert.Equal(t, "value2", config.Get("key2"))

		// Verify it's a copy, not a reference
		values["key1"] = "modified"
		assert.NotEqual(t, "modified", config.Get("key1"))
	})
}

func TestNewConfigFromEnv(t *testing.T) {
	// Create a temporary .env file for testing
	envContent := "TEST_KEY1=test_value1\nTEST_KEY2=test_value2\n"
	tmpFile, err := os.CreateTemp("", "test_env_*.env")
	require.NoError(t, err)
	defer os.Remove(tmpFile.Name())

	_, err = tmpFile.WriteString(envContent)
	require.NoError(t, err)
	tmpFile.Close()

	config := NewConfigFromEnv(tmpFile.Name())

	require.NotNil(t, config)
}

func TestConfigGetWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"existing": "value",
		"empty":    "",
	})

	t.Run("existing key returns value", func(t *testing.T) {
		assert.Equal(t, "value", config.GetWithDefault("existing", "default"))
	})

	t.Run("missing key returns default", func(t *testing.T) {
		assert.Equal(t, "default", config.GetWithDefault("missing", "default"))
	})

	t.Run("empty value returns default", func(t *testing.T) {
		assert.Equal(t, "default", config.GetWithDefault("empty", "default"))
	})
}

func TestConfigGetBool(t *testing.T) {
	config := NewConfig(map[string]string{
		"true_value":    "true",
		"false_value":   "false",
		"one":           "1",
		"yes":           "yes",
		"on":            "on",
		"enabled":       "enabled",
		"invalid_value": "not_a_bool",
	})

	assert.True(t, config.GetBool("true_value"))
	assert.False(t, config.GetBool("false_value"))
	assert.True(t, config.GetBool("one"))
	assert.True(t, config.GetBool("yes"))
	assert.True(t, config.GetBool("on"))
	assert.True(t, config.GetBool("enabled"))
	assert.False(t, config.GetBool("invalid_value"))
	assert.False(t, config.GetBool("missing"))
}

func TestConfigGetInt(t *testing.T) {
	config := NewConfig(map[string]string{
		"number":  "42",
		"zero":    "0",
		"invalid": "not_a_number",
	})

	t.Run("valid number", func(t *testing.T) {
		assert.Equal(t, 42, config.GetInt("number"))
	})

	t.Run("invalid number", func(t *testing.T) {
		assert.Equal(t, 0, config.GetInt("invalid"))
	})

	t.Run("missing key", func(t *testing.T) {
		assert.Equal(t, 0, config.GetInt("missing"))
	})
}

func TestConfigGetIntWithDefault(t *testing.T) {
	config := NewConfig(map[string]string{
		"number": "42",
		"zero":   "0",
	})

	t.Run("existing key returns value", func(t *testing.T) {
		assert.Equal(t, 42, config.GetIntWithDefault("number", 7))
	})

	t.Run("existing zero is kept", func(t *testing.T) {
		assert.Equal(t, 0, config.GetIntWithDefault("zero", 7))
	})

	t.Run("missing key returns default", func(t *testing.T) {
		assert.Equal(t, 7, config.GetIntWithDefault("missing", 7))
	})
}

func TestConfigSetAndHas(t *testing.T) {
	config := NewConfig(nil)

	assert.False(t, config.Has("key"))
	config.Set("key", "value")
	assert.True(t, config.Has("key"))
	assert.Equal(t, "value", config.Get("key"))
}

func TestSplitEnv(t *testing.T) {
	t.Run("simple pair", func(t *testing.T) {
		key, value := splitEnv("KEY=value")
		assert.Equal(t, "KEY", key)
		assert.Equal(t, "value", value)
	})

	t.Run("value with equals", func(t *testing.T) {
		key, value := splitEnv("KEY=a=b")
		assert.Equal(t, "KEY", key)
		assert.Equal(t, "a=b", value)
	})

	t.Run("no separator", func(t *testing.T) {
		key, value := splitEnv("garbage")
		assert.Empty(t, key)
		assert.Empty(t, value)
	})
}
