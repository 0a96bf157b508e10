package ingestion

import (
	"strings"
)

const frontMatterDelimiter = "---"

// Value is a front-matter value: a plain string, or a list when the raw
// value was written as [a, b, c].
type Value struct {
	Text   string
	List   []string
	IsList bool
}

// FrontMatter holds the key/value block at the top of a document.
type FrontMatter struct {
	Fields map[string]Value
}

func (f FrontMatter) String(key string) string {
	v, ok := f.Fields[key]
	if !ok || v.IsList {
		return ""
	}
	return v.Text
}

// Strings returns a list value, or a one-element list for a non-empty scalar.
func (f FrontMatter) Strings(key string) []string {
	v, ok := f.Fields[key]
	if !ok {
		return nil
	}
	if v.IsList {
		return v.List
	}
	if v.Text == "" {
		return nil
	}
	return []string{v.Text}
}

func (f FrontMatter) Title() string       { return f.String("title") }
func (f FrontMatter) Description() string { return f.String("description") }
func (f FrontMatter) Category() string    { return f.String("category") }
func (f FrontMatter) Date() string        { return f.String("date") }
func (f FrontMatter) Tags() []string      { return f.Strings("tags") }

// ParseFrontMatter splits raw into its metadata block and body. Text without
// an opening and closing "---" line comes back unchanged with empty metadata.
// Malformed lines are skipped; parsing never fails.
func ParseFrontMatter(raw string) (FrontMatter, string) {
	empty := FrontMatter{Fields: map[string]Value{}}

	first, rest, found := strings.Cut(raw, "\n")
	if !found || strings.TrimSuffix(first, "\r") != frontMatterDelimiter {
		return empty, raw
	}

	var block []string
	remaining := rest
	for {
		line, tail, more := strings.Cut(remaining, "\n")
		if strings.TrimSuffix(line, "\r") == frontMatterDelimiter {
			fm := FrontMatter{Fields: parseFields(block)}
			if !more {
				return fm, ""
			}
			return fm, tail
		}
		if !more {
			return empty, raw
		}
		block = append(block, line)
		remaining = tail
	}
}

func parseFields(lines []string) map[string]Value {
	fields := make(map[string]Value, len(lines))

	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimSuffix(line, "\r"), ": ")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}

		fields[key] = parseValue(strings.TrimSpace(value))
	}

	return fields
}

func parseValue(value string) Value {
	if len(value) < 2 || !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return Value{Text: value}
	}

	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return Value{IsList: true, List: []string{}}
	}

	items := strings.Split(inner, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}
	return Value{IsList: true, List: items}
}
