package utils

import "strings"

// GetField is a helper for retreiving nested JSON keys with dot notation
// Only object values can be descended into, a scalar mid-path means no value
func GetField(key string, data map[string]interface{}) (interface{}, bool) {
	if data == nil {
		return nil, false
	}
	bits := strings.SplitN(key, ".", 2)
	val, ok := data[bits[0]]
	if !ok {
		return nil, false
	}
	if len(bits) == 1 {
		return val, true
	}
	switch res := val.(type) {
	case map[string]interface{}:
		return GetField(bits[1], res)
	default:
		return nil, false
	}
}
