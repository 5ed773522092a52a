package utils

import (
	"fmt"
	"strings"
)

// BuildKey constructs a key with the given prefix
func BuildKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + key
}

// JoinKey formats parts and joins them with sep. Every part keeps its
// position, so an empty or nil part still leaves its separators in place.
func JoinKey(sep string, parts ...any) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		if p == nil {
			continue
		}
		out[i] = fmt.Sprint(p)
	}
	return strings.Join(out, sep)
}
