package embedded

import (
	"strconv"
	"strings"
)

// valuesAt resolves a dotted JSONPath with optional [*] segments, e.g.
// $.artisan.id or $.tags[*]. Missing segments resolve to nothing.
func valuesAt(doc any, path string) []any {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "$"), ".")
	cur := []any{doc}
	if path == "" {
		return cur
	}
	for _, seg := range strings.Split(path, ".") {
		spread := strings.HasSuffix(seg, "[*]")
		seg = strings.TrimSuffix(seg, "[*]")

		var next []any
		for _, v := range cur {
			obj, ok := v.(map[string]any)
			if !ok {
				continue
			}
			child, ok := obj[seg]
			if !ok || child == nil {
				continue
			}
			if !spread {
				next = append(next, child)
				continue
			}
			if arr, ok := child.([]any); ok {
				next = append(next, arr...)
			}
		}
		if len(next) == 0 {
			return nil
		}
		cur = next
	}
	return cur
}

func stringsAt(doc any, path string) []string {
	vals := valuesAt(doc, path)
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case float64:
			out = append(out, strconv.FormatFloat(t, 'g', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(t))
		}
	}
	return out
}

func numbersAt(doc any, path string) []float64 {
	vals := valuesAt(doc, path)
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		switch t := v.(type) {
		case float64:
			out = append(out, t)
		case string:
			if f, err := strconv.ParseFloat(t, 64); err == nil {
				out = append(out, f)
			}
		}
	}
	return out
}
