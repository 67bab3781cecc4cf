package catalog

import (
	"strconv"
	"strings"
)

// DisplayName resolves a record's preview label using the descriptor's
// ordered DisplayFields fallback, then "Item <id>".
func (d Descriptor) DisplayName(fields map[string]any) string {
	for _, f := range d.DisplayFields {
		if s, ok := fields[f].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return "Item " + formatID(fields["id"])
}

func formatID(v any) string {
	switch id := v.(type) {
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case string:
		if id != "" {
			return id
		}
	}
	return "N/A"
}
