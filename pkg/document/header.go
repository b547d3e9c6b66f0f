package document

import "strings"

const (
	listItemPrefix = "- "
	pairSeparator  = ": "
)

// Header is the ordered list of lines preceding the delimiter.
type Header []string

// NewHeader splits header text into lines, dropping a trailing carriage
// return from each line.
func NewHeader(text string) Header {
	if text == "" {
		return Header{}
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	// a header ending in a newline has no real trailing line
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return Header(lines)
}

// Field returns the trimmed text after prefix on the first line that starts
// with prefix. Later matching lines are ignored.
func (h Header) Field(prefix string) (string, bool) {
	for _, line := range h {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

// FirstField tries each prefix in order and returns the value of the first
// one present in the header.
func (h Header) FirstField(prefixes ...string) (string, bool) {
	for _, prefix := range prefixes {
		if value, ok := h.Field(prefix); ok {
			return value, true
		}
	}
	return "", false
}

// List returns the items of the section introduced by marker, in order.
// Blank lines inside the section are skipped; the first other non-item line
// ends it.
func (h Header) List(marker string) []string {
	items := []string{}
	h.scanSection(marker, func(item string) {
		items = append(items, item)
	})
	return items
}

// Map returns the "key: value" items of the section introduced by marker.
// Items that do not split on ": " are dropped, and the first occurrence of a
// key wins. It returns nil when the section yields no entries.
func (h Header) Map(marker string) map[string]string {
	var entries map[string]string
	h.scanSection(marker, func(item string) {
		parts := strings.SplitN(item, pairSeparator, 2)
		if len(parts) != 2 {
			return
		}
		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if entries == nil {
			entries = make(map[string]string)
		}
		if _, exists := entries[key]; !exists {
			entries[key] = value
		}
	})
	return entries
}

type sectionState int

const (
	sectionInactive sectionState = iota
	sectionActive
)

func (h Header) scanSection(marker string, yield func(item string)) {
	state := sectionInactive

	for _, line := range h {
		trimmed := strings.TrimSpace(line)

		if trimmed == marker {
			state = sectionActive
			continue
		}

		if state == sectionInactive {
			continue
		}

		if strings.HasPrefix(line, listItemPrefix) {
			yield(strings.TrimSpace(strings.TrimPrefix(line, listItemPrefix)))
			continue
		}

		if trimmed != "" {
			return
		}
	}
}
