package persistence

import (
	"fmt"
	"sort"
	"strings"

	"rta-sync/internal/extraction/domain/model"
)

// summarize renders counts as "k=v" pairs in key order
func summarize(c model.Counts) string {
	if len(c) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, c[k]))
	}
	return strings.Join(parts, " ")
}
