package config

import (
	"math"
)

// Config wraps a map[string]any for type-safe value extraction.
// All accessor methods return default values if the key is missing
// or the value cannot be converted to the requested type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if s, ok := v.(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts int, int64, uint64 and float64 without a fractional part, as long
// as the value fits in an int.
func (c Config) Int(key string, defaultVal int) int {
	n, ok := c.int64(key)
	if !ok || n < math.MinInt || n > math.MaxInt {
		return defaultVal
	}
	return int(n)
}

// Int64 returns the int64 value for key, or defaultVal if missing or not convertible.
func (c Config) Int64(key string, defaultVal int64) int64 {
	n, ok := c.int64(key)
	if !ok {
		return defaultVal
	}
	return n
}

func (c Config) int64(key string) (int64, bool) {
	v, ok := c.data[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case uint64:
		if val <= math.MaxInt64 {
			return int64(val), true
		}
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val < math.MaxInt64 {
			return int64(val), true
		}
	}
	return 0, false
}

// Uint64 returns the uint64 value for key, or defaultVal if missing, negative
// or not convertible.
//
// JSON numbers arrive as float64, so seeds above 2^53 lose precision when
// loaded from JSON. YAML keeps them exact.
func (c Config) Uint64(key string, defaultVal uint64) uint64 {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	switch val := v.(type) {
	case uint64:
		return val
	case int:
		if val >= 0 {
			return uint64(val)
		}
	case int64:
		if val >= 0 {
			return uint64(val)
		}
	case float64:
		if val == math.Trunc(val) && val >= 0 && val < math.MaxUint64 {
			return uint64(val)
		}
	}
	return defaultVal
}

// List returns the list value for key as a slice of Configs. Returns false
// if the key is missing, not a list, or any element is not a map.
func (c Config) List(key string) ([]Config, bool) {
	v, ok := c.data[key]
	if !ok {
		return nil, false
	}
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	result := make([]Config, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, false
		}
		result = append(result, New(m))
	}
	return result, true
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Raw returns the underlying map.
// The returned map should not be modified.
func (c Config) Raw() map[string]any {
	return c.data
}
