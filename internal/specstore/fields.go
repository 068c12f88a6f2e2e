package specstore

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fieldLine matches "- **Field**: value" metadata lines. Leading dash and
// bold markers vary slightly between generated and hand-edited documents,
// so both are optional.
var fieldLine = regexp.MustCompile(`^\s*-?\s*\*\*([^*]+)\*\*\s*:\s*(.*)$`)

var headingLine = regexp.MustCompile(`^#\s+(.+)$`)

// parseDocument extracts title, status, identifier, and flat metadata
// fields from a markdown document. YAML front matter takes precedence over
// "- **Field**: value" lines when both are present; the markdown body is
// scanned either way so documents with partial front matter still resolve.
func parseDocument(content string) Record {
	rec := Record{Fields: map[string]string{}, RawContent: content}

	body := content
	if fm, rest, ok := splitFrontMatter(content); ok {
		var meta map[string]any
		if err := yaml.Unmarshal([]byte(fm), &meta); err == nil {
			for k, v := range meta {
				rec.Fields[canonicalFieldName(k)] = fmt.Sprintf("%v", v)
			}
		}
		body = rest
	}

	for _, line := range strings.Split(body, "\n") {
		if m := headingLine.FindStringSubmatch(line); m != nil && rec.DisplayName == "" {
			rec.DisplayName = strings.TrimSpace(m[1])
			continue
		}
		if m := fieldLine.FindStringSubmatch(line); m != nil {
			key := canonicalFieldName(m[1])
			if _, exists := rec.Fields[key]; !exists {
				rec.Fields[key] = strings.TrimSpace(m[2])
			}
		}
	}

	rec.Identifier = rec.Fields["ID"]
	rec.Status = rec.Fields["Status"]
	if name, ok := rec.Fields["Name"]; ok && rec.DisplayName == "" {
		rec.DisplayName = name
	}
	return rec
}

// splitFrontMatter separates a leading "---" YAML block from the body.
func splitFrontMatter(content string) (front, body string, ok bool) {
	if !strings.HasPrefix(content, "---\n") {
		return "", content, false
	}
	rest := content[len("---\n"):]
	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return "", content, false
	}
	front = rest[:idx]
	body = rest[idx+len("\n---"):]
	body = strings.TrimPrefix(body, "\n")
	return front, body, true
}

// canonicalFieldName title-cases a metadata key so "storyboard reference",
// "Storyboard Reference", and "storyboardReference" all land on the same
// field.
func canonicalFieldName(key string) string {
	key = strings.TrimSpace(key)
	if strings.EqualFold(key, "id") {
		return "ID"
	}
	// Split camelCase before word casing.
	var spaced strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := rune(key[i-1])
			if prev >= 'a' && prev <= 'z' {
				spaced.WriteByte(' ')
			}
		}
		spaced.WriteRune(r)
	}
	words := strings.Fields(spaced.String())
	for i, w := range words {
		if strings.EqualFold(w, "id") {
			words[i] = "ID"
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// rewriteField replaces the value of one metadata field in place. The rest
// of the document is preserved byte-for-byte. With an empty value the field
// line is dropped. A missing field is appended to the Metadata section, or
// a Metadata section is created after the title when the document has none.
func rewriteField(content, field, value string) (string, error) {
	canonical := canonicalFieldName(field)
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		m := fieldLine.FindStringSubmatch(line)
		if m == nil || canonicalFieldName(m[1]) != canonical {
			continue
		}
		if value == "" {
			lines = append(lines[:i], lines[i+1:]...)
		} else {
			lines[i] = fmt.Sprintf("- **%s**: %s", canonical, value)
		}
		return strings.Join(lines, "\n"), nil
	}

	if value == "" {
		// Clearing a field that is not present is a no-op.
		return content, nil
	}

	newLine := fmt.Sprintf("- **%s**: %s", canonical, value)

	// Insert beneath an existing Metadata heading.
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "## Metadata") {
			insert := i + 1
			lines = append(lines[:insert], append([]string{newLine}, lines[insert:]...)...)
			return strings.Join(lines, "\n"), nil
		}
	}

	// No Metadata section: create one after the title, or at the top.
	for i, line := range lines {
		if headingLine.MatchString(line) {
			block := []string{"", "## Metadata", newLine}
			insert := i + 1
			lines = append(lines[:insert], append(block, lines[insert:]...)...)
			return strings.Join(lines, "\n"), nil
		}
	}
	return "## Metadata\n" + newLine + "\n\n" + content, nil
}
