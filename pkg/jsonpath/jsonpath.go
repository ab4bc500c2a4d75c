// Package jsonpath extracts values from JSON response bodies using a subset
// of JSONPath: $, dotted members, bracketed members and array indexes.
package jsonpath

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Extract extracts a value from a JSON body using a JSONPath expression.
// Strings are returned unquoted, null as "null", and objects and arrays as
// their raw JSON text.
func Extract(body []byte, path string) (string, error) {
	result, err := lookup(body, path)
	if err != nil {
		return "", err
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	if result.IsObject() || result.IsArray() {
		return result.Raw, nil
	}
	return result.String(), nil
}

// Exists reports whether path resolves to a value in body.
func Exists(body []byte, path string) bool {
	_, err := lookup(body, path)
	return err == nil
}

// ExtractAll applies every named expression. Values that resolve are
// returned even when others fail; the error lists failures by name.
func ExtractAll(body []byte, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var failures []string
	for _, name := range names {
		value, err := Extract(body, paths[name])
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		results[name] = value
	}

	if len(failures) > 0 {
		return results, fmt.Errorf("extraction errors: %s", strings.Join(failures, "; "))
	}
	return results, nil
}

func lookup(body []byte, path string) (gjson.Result, error) {
	if len(body) == 0 {
		return gjson.Result{}, fmt.Errorf("empty JSON body")
	}
	if path == "" {
		return gjson.Result{}, fmt.Errorf("empty JSONPath expression")
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("body is not valid JSON")
	}

	gpath, err := toGjsonPath(path)
	if err != nil {
		return gjson.Result{}, err
	}
	result := gjson.GetBytes(body, gpath)
	if !result.Exists() {
		return gjson.Result{}, fmt.Errorf("path not found: %s", path)
	}
	return result, nil
}

// toGjsonPath converts a JSONPath expression to gjson syntax:
// $.users[0]['first name'] becomes users.0.first name.
func toGjsonPath(path string) (string, error) {
	p := strings.TrimPrefix(strings.TrimSpace(path), "$")
	if p == "" {
		return "@this", nil
	}

	var segments []string
	for len(p) > 0 {
		switch p[0] {
		case '.':
			p = p[1:]
			end := strings.IndexAny(p, ".[")
			if end < 0 {
				end = len(p)
			}
			if end == 0 {
				return "", fmt.Errorf("invalid JSONPath %q: empty member name", path)
			}
			segments = append(segments, escape(p[:end]))
			p = p[end:]
		case '[':
			end := strings.IndexByte(p, ']')
			if end < 0 {
				return "", fmt.Errorf("invalid JSONPath %q: unclosed bracket", path)
			}
			inner := p[1:end]
			if len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0] {
				inner = inner[1 : len(inner)-1]
			}
			if inner == "" {
				return "", fmt.Errorf("invalid JSONPath %q: empty index", path)
			}
			segments = append(segments, escape(inner))
			p = p[end+1:]
		default:
			// Bare leading member, as in "users.0".
			end := strings.IndexAny(p, ".[")
			if end < 0 {
				end = len(p)
			}
			segments = append(segments, escape(p[:end]))
			p = p[end:]
		}
	}
	return strings.Join(segments, "."), nil
}

// escape protects gjson metacharacters inside a single member name.
func escape(member string) string {
	var b strings.Builder
	for _, r := range member {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
