// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package substitute

import (
	"encoding/json"
	"strconv"
	"strings"
)

type pathSpan struct {
	start, end int
	path       string
}

type pathIndex []pathSpan

// at returns the JSON key path of the string token covering offset, or ""
// when the offset is outside every string (or the text stopped parsing
// before reaching it).
func (p pathIndex) at(offset int) string {
	for _, s := range p {
		if offset >= s.start && offset < s.end {
			return s.path
		}
	}
	return ""
}

type frame struct {
	object    bool
	expectKey bool
	key       string
	index     int
}

// keyPaths walks text as JSON and records, for every string token, the
// byte span it occupies and its path ($.a.b[0]). Object keys map to the
// path of the member they name. Parsing stops quietly at the first syntax
// error.
func keyPaths(text string) pathIndex {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var (
		stack []*frame
		out   pathIndex
	)

	path := func() string {
		var b strings.Builder
		b.WriteString("$")
		for _, f := range stack {
			if f.object {
				b.WriteString(".")
				b.WriteString(f.key)
			} else {
				b.WriteString("[")
				b.WriteString(strconv.Itoa(f.index))
				b.WriteString("]")
			}
		}
		return b.String()
	}
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.expectKey = true
		} else {
			top.index++
		}
	}

	for {
		before := int(dec.InputOffset())
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		after := int(dec.InputOffset())

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, &frame{object: true, expectKey: true})
			case '[':
				stack = append(stack, &frame{})
			case '}', ']':
				stack = stack[:len(stack)-1]
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.object && top.expectKey {
					top.key = v
					top.expectKey = false
					out = append(out, pathSpan{start: before, end: after, path: path()})
					continue
				}
			}
			out = append(out, pathSpan{start: before, end: after, path: path()})
			valueDone()
		default:
			valueDone()
		}
	}
}
