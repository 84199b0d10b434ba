package shortcode

import (
	"regexp"
	"strings"
)

// tagPattern matches a self-closing directive such as
// [planning_center_groups group_type="Small Group"]. A doubled bracket on
// both sides escapes it.
var tagPattern = regexp.MustCompile(`\[(\[?)([A-Za-z0-9_-]+)(\s[^\[\]]*?)?\s*/?\](\]?)`)

var attrPattern = regexp.MustCompile(`([\w-]+)\s*=\s*"([^"]*)"|([\w-]+)\s*=\s*'([^']*)'|([\w-]+)\s*=\s*([^\s'"]+)`)

// Tag is one directive occurrence in a content string.
type Tag struct {
	Name    string
	Attrs   map[string]string
	Raw     string
	Escaped bool
	// Start and End are byte offsets of Raw in the scanned content.
	Start int
	End   int

	openExtra  string
	closeExtra string
}

// Inner returns the directive without its escaping brackets.
func (t Tag) Inner() string {
	if !t.Escaped {
		return t.Raw
	}
	return t.Raw[1 : len(t.Raw)-1]
}

// Scan finds every directive-shaped token in content, in order.
func Scan(content string) []Tag {
	matches := tagPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	tags := make([]Tag, 0, len(matches))
	for _, m := range matches {
		opening := group(content, m, 1)
		closing := group(content, m, 4)
		tags = append(tags, Tag{
			Name:       strings.ToLower(group(content, m, 2)),
			Attrs:      ParseAttrs(group(content, m, 3)),
			Raw:        content[m[0]:m[1]],
			Escaped:    opening == "[" && closing == "]",
			Start:      m[0],
			End:        m[1],
			openExtra:  opening,
			closeExtra: closing,
		})
	}
	return tags
}

// ParseAttrs reads name=value pairs with double-quoted, single-quoted or bare
// values. Names are lowercased; later duplicates win.
func ParseAttrs(text string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range attrPattern.FindAllStringSubmatch(text, -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		}
	}
	return attrs
}

// Atts merges given attributes over defaults. Attributes without a default
// are dropped.
func Atts(defaults, given map[string]string) map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		if g, ok := given[k]; ok {
			out[k] = g
			continue
		}
		out[k] = v
	}
	return out
}

func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}
