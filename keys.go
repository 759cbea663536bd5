package hsafgrib

import (
	"fmt"
	"math"
)

// GRIB libraries disagree on the Go types of key values: integers may come
// back as int, int64 or whole floats. These helpers coerce.

func intKey(m Message, key string) (int, error) {
	v, err := m.Get(key)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	}
	return 0, fmt.Errorf("key %q: %v (%T) is not an integer", key, v, v)
}

func floatKey(m Message, key string) (float64, error) {
	v, err := m.Get(key)
	if err != nil {
		return 0, err
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return 0, fmt.Errorf("key %q: %v (%T) is not numeric", key, v, v)
}

func stringKey(m Message, key string) (string, error) {
	v, err := m.Get(key)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("key %q: %v (%T) is not a string", key, v, v)
	}
	return s, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
