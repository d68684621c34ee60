package macro

import (
	"strconv"
	"strings"
)

// Resolve walks a nested patch document along a dotted path and returns the
// numeric value found there, or def when the path cannot be resolved.
//
// Segments are separated by dots; a segment may carry bracketed indices, so
// "osc[0].amp" and "osc.0.amp" address the same leaf. A plain digit segment
// indexes into a slice; everything else is a map key lookup. Terminal values
// that are numbers pass through, numeric strings are parsed, anything else
// yields def.
func Resolve(doc any, path string, def float64) float64 {
	if path == "" {
		return def
	}
	cur := doc
	for _, part := range strings.Split(path, ".") {
		// Peel off bracketed indices like "osc[0][1]", one at a time.
		for strings.Contains(part, "[") && strings.HasSuffix(part, "]") {
			open := strings.Index(part, "[")
			end := strings.Index(part, "]")
			if end < open {
				return def
			}
			if key := part[:open]; key != "" {
				next, ok := lookupKey(cur, key)
				if !ok {
					return def
				}
				cur = next
			}
			idx, err := strconv.Atoi(part[open+1 : end])
			if err != nil {
				return def
			}
			next, ok := lookupIndex(cur, idx)
			if !ok {
				return def
			}
			cur = next
			part = part[end+1:]
		}
		if part == "" {
			continue
		}
		if seq, ok := cur.([]any); ok && isDigits(part) {
			idx, _ := strconv.Atoi(part)
			next, ok := lookupIndex(seq, idx)
			if !ok {
				return def
			}
			cur = next
			continue
		}
		next, ok := lookupKey(cur, part)
		if !ok {
			return def
		}
		cur = next
	}
	return coerceLeaf(cur, def)
}

func lookupKey(node any, key string) (any, bool) {
	switch m := node.(type) {
	case map[string]any:
		v, ok := m[key]
		return v, ok
	case map[any]any:
		v, ok := m[key]
		return v, ok
	}
	return nil, false
}

func lookupIndex(node any, idx int) (any, bool) {
	seq, ok := node.([]any)
	if !ok || idx < 0 || idx >= len(seq) {
		return nil, false
	}
	return seq[idx], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// coerceLeaf converts a terminal document value to float64. Numbers pass
// through, strings are parsed; any other kind falls back to def.
func coerceLeaf(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return def
		}
		return f
	}
	return def
}
