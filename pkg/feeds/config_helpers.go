package feeds

import (
	"strconv"
	"strings"
)

const (
	ConfigUserAgentKey   = "user_agent"
	ConfigBearerTokenKey = "bearer_token"
	ConfigSubredditKey   = "subreddit"
	ConfigIncludeBodyKey = "include_body"
	ConfigFieldKey       = "field"
)

// ConfigString returns the trimmed string value for key from source.Config or a fallback.
func ConfigString(src Source, key, fallback string) string {
	if src.Config != nil {
		if raw, ok := src.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

// ConfigBool reads a boolean flag, accepting YAML booleans and "true"/"false" strings.
func ConfigBool(src Source, key string, fallback bool) bool {
	if src.Config == nil {
		return fallback
	}
	switch v := src.Config[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// Headers builds the request headers for HTTP backed sources (skips empty values).
func Headers(src Source) map[string]string {
	headers := make(map[string]string, 3)

	if v := ConfigString(src, ConfigUserAgentKey, ""); v != "" {
		headers["User-Agent"] = v
	}
	if v := ConfigString(src, ConfigBearerTokenKey, ""); v != "" {
		headers["Authorization"] = "Bearer " + v
	}
	headers["Accept"] = "application/json"

	return headers
}
