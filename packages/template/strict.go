package template

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/flosch/pongo2/v6"
)

var (
	commentPattern = regexp.MustCompile(`(?s)\{#.*?#\}`)
	tokenPattern   = regexp.MustCompile(`(?s)\{\{-?(.*?)-?\}\}|\{%-?(.*?)-?%\}`)
	pathPattern    = regexp.MustCompile(`^([A-Za-z_]\w*)((?:\.\w+)*)\s*(\()?`)
	defaultPattern = regexp.MustCompile(`\|\s*default(?:_if_none)?\b`)
	forPattern     = regexp.MustCompile(`^for\s+(.+?)\s+in\s`)
	assignPattern  = regexp.MustCompile(`(\w+)\s*=`)
	asPattern      = regexp.MustCompile(`\bas\s+(\w+)`)
)

var keywords = map[string]bool{
	"not": true, "true": true, "false": true, "True": true, "False": true,
	"none": true, "None": true, "nil": true, "forloop": true,
}

// checkUndefined reports the first {{ }} expression whose variable path does
// not resolve in ctx. Expressions inside if blocks or verbatim blocks, or
// using the default filter, are left to the engine.
func checkUndefined(source string, ctx pongo2.Context) error {
	source = commentPattern.ReplaceAllString(source, "")
	bound := make(map[string]bool)
	ifDepth := 0
	verbatim := false

	for _, m := range tokenPattern.FindAllStringSubmatch(source, -1) {
		if m[2] != "" || strings.HasPrefix(m[0], "{%") {
			tag := strings.TrimSpace(m[2])
			name := tag
			if i := strings.IndexAny(tag, " \t\n"); i >= 0 {
				name = tag[:i]
			}
			switch {
			case name == "verbatim":
				verbatim = true
			case name == "endverbatim":
				verbatim = false
			case strings.HasPrefix(name, "endif"):
				if ifDepth > 0 {
					ifDepth--
				}
			case strings.HasPrefix(name, "if"):
				ifDepth++
			case name == "for":
				if fm := forPattern.FindStringSubmatch(tag); fm != nil {
					for _, v := range strings.Split(fm[1], ",") {
						bound[strings.TrimSpace(v)] = true
					}
				}
			case name == "set" || name == "with":
				for _, am := range assignPattern.FindAllStringSubmatch(tag, -1) {
					bound[am[1]] = true
				}
				for _, am := range asPattern.FindAllStringSubmatch(tag, -1) {
					bound[am[1]] = true
				}
			}
			continue
		}
		if verbatim || ifDepth > 0 {
			continue
		}
		expr := strings.TrimSpace(m[1])
		if defaultPattern.MatchString(expr) {
			continue
		}
		pm := pathPattern.FindStringSubmatch(expr)
		if pm == nil {
			continue
		}
		root := pm[1]
		if keywords[root] || bound[root] {
			continue
		}
		var rest []string
		if pm[2] != "" {
			rest = strings.Split(strings.TrimPrefix(pm[2], "."), ".")
		}
		if pm[3] != "" && len(rest) > 0 {
			// a call: the last segment is the method name
			rest = rest[:len(rest)-1]
		}
		if !resolves(ctx, root, rest) {
			return fmt.Errorf("undefined variable %q", strings.Join(append([]string{root}, rest...), "."))
		}
	}
	return nil
}

func resolves(ctx pongo2.Context, root string, path []string) bool {
	cur, ok := ctx[root]
	if !ok {
		return false
	}
	for _, seg := range path {
		switch c := cur.(type) {
		case object:
			cur = map[string]any(c)
		case list:
			cur = []any(c)
		}
		switch c := cur.(type) {
		case map[string]any:
			if cur, ok = c[seg]; !ok {
				return false
			}
		case map[string]string:
			var s string
			if s, ok = c[seg]; !ok {
				return false
			}
			cur = s
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil {
				return true
			}
			if i < 0 || i >= len(c) {
				return false
			}
			cur = c[i]
		case nil:
			return false
		default:
			return true
		}
	}
	return true
}

