package content

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n?---[ \t]*(?:\r?\n|\z)`)

// ParseFrontmatter splits raw into its frontmatter metadata and body.
// The --- fence must open the input, after an optional byte-order mark.
// Without it the metadata is empty and the whole input is the body.
// Frontmatter is YAML; when it does not parse, each "key: value" line is
// taken literally and a value like [a, b] becomes a list.
func ParseFrontmatter(raw string) (map[string]any, string) {
	raw = strings.TrimPrefix(raw, "\uFEFF")
	m := frontmatterRe.FindStringSubmatchIndex(raw)
	if m == nil {
		return map[string]any{}, raw
	}
	block := raw[m[2]:m[3]]
	body := strings.TrimLeft(raw[m[1]:], "\r\n")

	meta := map[string]any{}
	if err := yaml.Unmarshal([]byte(block), &meta); err != nil || meta == nil {
		contentLog.Debug("frontmatter_yaml_fallback")
		meta = parseKeyValues(block)
	}
	return meta, body
}

func parseKeyValues(block string) map[string]any {
	meta := map[string]any{}
	for _, line := range strings.Split(block, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			meta[key] = splitList(value[1 : len(value)-1])
			continue
		}
		meta[key] = value
	}
	return meta
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), `"'`)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// metaString renders a scalar metadata value as a string.
func metaString(meta map[string]any, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case time.Time:
		return t.Format(time.DateOnly)
	default:
		return fmt.Sprint(t)
	}
}

// metaList accepts a YAML sequence, a bracketed list or a comma separated
// string.
func metaList(meta map[string]any, key string) []string {
	switch t := meta[key].(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		return splitList(s)
	}
	return []string{}
}
