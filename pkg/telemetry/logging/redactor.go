package logging

import (
	"regexp"
	"strings"
)

// Redactor masks credentials in log fields.
type Redactor struct {
	patterns []*redactPattern
}

type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternProviderKey = "provider_key"
	PatternOsmosisKey  = "osmosis_key"
	PatternBearerToken = "bearer_token"
)

// NewRedactor creates a Redactor with the built-in patterns.
func NewRedactor() *Redactor {
	return &Redactor{
		patterns: []*redactPattern{
			{
				// OpenAI and Anthropic keys: sk-..., sk-ant-...
				name:        PatternProviderKey,
				regex:       regexp.MustCompile(`sk-[a-zA-Z0-9_\-]{6,}`),
				replacement: "sk-***",
			},
			{
				name:        PatternOsmosisKey,
				regex:       regexp.MustCompile(`osm_[a-zA-Z0-9_\-]{4,}`),
				replacement: "osm_***",
			},
			{
				name:        PatternBearerToken,
				regex:       regexp.MustCompile(`Bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
				replacement: "Bearer ***",
			},
		},
	}
}

// RedactString masks credentials found in value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}
	for _, p := range r.patterns {
		value = p.regex.ReplaceAllString(value, p.replacement)
	}
	return value
}

// RedactArgs redacts variadic log arguments given as key, value pairs.
// Values under sensitive keys are masked entirely; other string values
// are scanned for credential patterns.
func (r *Redactor) RedactArgs(args ...any) []any {
	if len(args) == 0 {
		return args
	}

	redacted := make([]any, len(args))
	copy(redacted, args)

	for i := 1; i < len(redacted); i += 2 {
		if key, ok := redacted[i-1].(string); ok && isSensitiveKey(key) {
			if s, ok := redacted[i].(string); ok {
				redacted[i] = RedactAPIKey(s)
			} else {
				redacted[i] = "********"
			}
			continue
		}
		switch v := redacted[i].(type) {
		case string:
			redacted[i] = r.RedactString(v)
		case error:
			redacted[i] = r.RedactString(v.Error())
		}
	}

	return redacted
}

func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)
	for _, sensitive := range []string{"api_key", "apikey", "secret", "access_token", "authorization", "password"} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// RedactAPIKey redacts an API key, keeping only a 4 character prefix.
func RedactAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
