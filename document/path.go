// Package document implements the addressable document value used by the
// codec: a tree of maps, lists, numbers, booleans and text, plus the
// dot/index path syntax ("header.items[3].value") used to reach into it.
package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a Path: either a map key or a list index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// Path is a parsed "a.b[2].c" address.
type Path []Segment

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if s.IsIndex {
			fmt.Fprintf(&b, "[%d]", s.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Name)
	}
	return b.String()
}

// ParsePath parses the dotted/indexed "a.b[2].c" path syntax into
// a sequence of Segments.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return nil, fmt.Errorf("document: empty path")
	}

	var path Path
	i := 0
	n := len(raw)

	for i < n {
		switch {
		case raw[i] == '.':
			i++
		case raw[i] == '[':
			j := strings.IndexByte(raw[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("document: unterminated index in %q", raw)
			}
			j += i
			idxStr := raw[i+1 : j]
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, fmt.Errorf("document: bad index %q in %q", idxStr, raw)
			}
			path = append(path, Segment{Index: idx, IsIndex: true})
			i = j + 1
		default:
			j := i
			for j < n && raw[j] != '.' && raw[j] != '[' {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("document: malformed path %q", raw)
			}
			path = append(path, Segment{Name: raw[i:j]})
			i = j
		}
	}

	return path, nil
}

// Get walks doc along path and reports whether the full path resolved.
func Get(doc any, path Path) (any, bool) {
	cur := doc
	for _, seg := range path {
		if seg.IsIndex {
			list, ok := cur.([]any)
			if !ok || seg.Index < 0 || seg.Index >= len(list) {
				return nil, false
			}
			cur = list[seg.Index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, exists := m[seg.Name]
		if !exists {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// GetString parses raw as a path and resolves it against doc.
func GetString(doc any, raw string) (any, bool, error) {
	path, err := ParsePath(raw)
	if err != nil {
		return nil, false, err
	}
	v, ok := Get(doc, path)
	return v, ok, nil
}
