package power

import (
	"encoding/json"
	"math"
)

// ParseWakeSources converts a loosely typed wake source request, as decoded
// from JSON or a shell argument, into wake sources.
//
// Accepted shapes are nil (no wake source), a single pair like
// ["GPIO_0", 13], or a list of pairs. Validation is complete before
// anything is returned, a malformed element rejects the whole request.
func ParseWakeSources(v interface{}) ([]WakeSource, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case WakeSource:
		return []WakeSource{val}, nil
	case []WakeSource:
		return val, nil
	case [2]interface{}:
		return ParseWakeSources(val[:])
	case []interface{}:
		if len(val) == 0 {
			return nil, nil
		}
		if _, isPair := val[0].(string); isPair {
			src, ok := parsePair(val)
			if !ok {
				return nil, &ShapeError{Index: -1}
			}
			return []WakeSource{src}, nil
		}
		sources := make([]WakeSource, 0, len(val))
		for i, item := range val {
			var (
				src WakeSource
				ok  bool
			)
			switch pair := item.(type) {
			case []interface{}:
				src, ok = parsePair(pair)
			case [2]interface{}:
				src, ok = parsePair(pair[:])
			case WakeSource:
				src, ok = pair, true
			}
			if !ok {
				return nil, &ShapeError{Index: i}
			}
			sources = append(sources, src)
		}
		return sources, nil
	}
	return nil, &ShapeError{Index: -1}
}

// UnmarshalWakeSources parses wake sources from JSON.
func UnmarshalWakeSources(data []byte) ([]WakeSource, error) {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return ParseWakeSources(v)
}

func parsePair(items []interface{}) (WakeSource, bool) {
	if len(items) != 2 {
		return WakeSource{}, false
	}
	name, ok := items[0].(string)
	if !ok {
		return WakeSource{}, false
	}
	pin, ok := pinNumber(items[1])
	if !ok {
		return WakeSource{}, false
	}
	return WakeSource{Controller: name, Pin: pin}, true
}

func pinNumber(v interface{}) (uint8, bool) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int32:
		n = int64(val)
	case int64:
		n = val
	case uint8:
		return val, true
	case uint32:
		n = int64(val)
	case float64:
		if val != math.Trunc(val) || val < 0 || val > math.MaxUint8 {
			return 0, false
		}
		n = int64(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	if n < 0 || n > math.MaxUint8 {
		return 0, false
	}
	return uint8(n), true
}
