package pricing

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Coerce turns a number or a numeric looking string into a float. Strings
// keep only digits, dots, commas and minus signs, commas are treated as
// thousand separators. Booleans, null and containers are never numbers.
func Coerce(n *Node) (float64, bool) {
	if n == nil {
		return 0, false
	}
	switch n.Kind {
	case KindNumber:
		return n.Number, isFinite(n.Number)
	case KindString:
		return CoerceString(n.String)
	}
	return 0, false
}

func CoerceString(s string) (float64, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return -1
	}, s)
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || !isFinite(f) {
		return 0, false
	}
	return f, true
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
