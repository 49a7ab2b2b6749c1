package memorysync

import (
	"strings"
)

// frontmatter is the parsed leading metadata block of a memory note
type frontmatter struct {
	data map[string]string
	body string
}

// parseFrontmatter splits a "---" delimited metadata block from the body.
// The block is a flat key: value mapping; the first colon separates key from
// value and both sides are trimmed. A file without a block is all body.
func parseFrontmatter(raw string) frontmatter {
	fm := frontmatter{data: map[string]string{}, body: raw}

	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return fm
	}

	rest := normalized[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return fm
	}

	for _, line := range strings.Split(rest[:end], "\n") {
		colon := strings.Index(line, ":")
		if colon <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])
		if key != "" {
			fm.data[key] = value
		}
	}

	fm.body = rest[end+len("\n---\n"):]
	return fm
}
