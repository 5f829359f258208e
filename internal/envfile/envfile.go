// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package envfile parses the flat KEY=VALUE overlay that customises a
// devcontainer template.
//
// Rules:
//   - blank lines and lines starting with '#' are ignored
//   - the key is trimmed and must be a shell identifier
//   - the value is the literal remainder after the first '=' (no quote
//     removal, no escapes, no trimming)
//   - a malformed line is skipped and reported as a warning
//   - a repeated key overrides the earlier assignment
package envfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

var keyRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadError reports an overlay file that exists but cannot be used.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read overlay %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ErrInvalidEncoding is wrapped by ReadError when the file is not UTF-8.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

// Entry is a single accepted assignment.
type Entry struct {
	Key   string
	Value string
	Line  int
}

// Warning describes a skipped or overridden line.
type Warning struct {
	Line    int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s", w.Line, w.Message)
}

// Overlay is the parsed content of an overlay file.
type Overlay struct {
	Path     string
	Loaded   bool // false when the file did not exist
	Entries  []Entry
	Warnings []Warning

	index map[string]int
}

// Lookup returns the effective value for key.
func (o *Overlay) Lookup(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	i, ok := o.index[key]
	if !ok {
		return "", false
	}
	return o.Entries[i].Value, true
}

// Keys returns the distinct keys in first-seen order.
func (o *Overlay) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, 0, len(o.Entries))
	for _, e := range o.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Len returns the number of distinct keys.
func (o *Overlay) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Entries)
}

// Load reads the overlay at path. A missing file yields an empty overlay
// with Loaded=false; any other read failure or non-UTF-8 content is a
// *ReadError.
func Load(path string) (*Overlay, error) {
	// #nosec G304 -- overlay path is chosen by the operator via CLI/config
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Overlay{Path: path, index: map[string]int{}}, nil
		}
		return nil, &ReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &ReadError{Path: path, Err: ErrInvalidEncoding}
	}
	o, err := Parse(data)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	o.Path = path
	o.Loaded = true
	return o, nil
}

// Parse parses overlay content already in memory.
func Parse(data []byte) (*Overlay, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	o := &Overlay{index: map[string]int{}}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			o.Warnings = append(o.Warnings, Warning{Line: lineNo, Message: fmt.Sprintf("missing '=' in %q, line skipped", trimmed)})
			continue
		}
		key := strings.TrimSpace(line[:eq])
		if !keyRe.MatchString(key) {
			o.Warnings = append(o.Warnings, Warning{Line: lineNo, Message: fmt.Sprintf("invalid key %q, line skipped", key)})
			continue
		}
		value := line[eq+1:]

		if i, dup := o.index[key]; dup {
			o.Warnings = append(o.Warnings, Warning{
				Line:    lineNo,
				Message: fmt.Sprintf("%s overrides the value set on line %d", key, o.Entries[i].Line),
			})
			o.Entries[i].Value = value
			o.Entries[i].Line = lineNo
			continue
		}
		o.index[key] = len(o.Entries)
		o.Entries = append(o.Entries, Entry{Key: key, Value: value, Line: lineNo})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return o, nil
}
