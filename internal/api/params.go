package api

import (
	"net/url"
	"strings"

	"github.com/spf13/cast"
)

// boolParam parses a boolean query parameter case-insensitively; an absent
// or unparseable value yields the fallback.
func boolParam(q url.Values, name string, fallback bool) bool {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return fallback
	}
	v, err := cast.ToBoolE(strings.ToLower(raw))
	if err != nil {
		return fallback
	}
	return v
}
