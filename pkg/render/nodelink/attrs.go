package nodelink

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

type attr struct {
	key, value string
}

// attrList is an ordered attribute list. Setting an existing key replaces
// its value in place so the output order stays stable.
type attrList []attr

func (l attrList) set(key, value string) attrList {
	for i := range l {
		if l[i].key == key {
			out := slices.Clone(l)
			out[i].value = value
			return out
		}
	}
	return append(slices.Clip(l), attr{key, value})
}

// merge applies overrides in key order. An empty value removes the key.
func (l attrList) merge(overrides map[string]string) attrList {
	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		v := overrides[k]
		if v == "" {
			l = l.without(k)
			continue
		}
		l = l.set(k, v)
	}
	return l
}

func (l attrList) without(key string) attrList {
	return slices.DeleteFunc(slices.Clone(l), func(a attr) bool { return a.key == key })
}

func (l attrList) String() string {
	parts := make([]string, len(l))
	for i, a := range l {
		parts[i] = a.key + "=" + quote(a.value)
	}
	return strings.Join(parts, ", ")
}

// quote renders s as a DOT double-quoted string. Backslashes pass through
// untouched so label escapes such as \l keep working, except for a run
// that ends the string or precedes a quote: that run is doubled so it
// cannot escape the quote after it.
func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '\\':
			j := i
			for j < len(s) && s[j] == '\\' {
				j++
			}
			run := s[i:j]
			if j == len(s) || s[j] == '"' {
				run += run
			}
			b.WriteString(run)
			i = j
			continue
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
		default:
			b.WriteRune(r)
		}
		i += size
	}
	b.WriteByte('"')
	return b.String()
}

const defaultFont = "Sans-Serif"

var (
	graphDefaults = attrList{
		{"pad", "2.0"},
		{"splines", "ortho"},
		{"nodesep", "0.60"},
		{"ranksep", "0.75"},
		{"fontname", defaultFont},
		{"fontsize", "15"},
		{"fontcolor", "#2D3436"},
	}

	nodeDefaults = attrList{
		{"shape", "box"},
		{"style", "rounded"},
		{"fixedsize", "true"},
		{"width", "1.4"},
		{"height", "1.4"},
		{"labelloc", "b"},
		{"imagescale", "true"},
		{"fontname", defaultFont},
		{"fontsize", "13"},
		{"fontcolor", "#2D3436"},
	}

	edgeDefaults = attrList{
		{"color", "#7B8894"},
	}

	leafDefaults = attrList{
		{"shape", "none"},
		{"height", "1.9"},
	}

	clusterDefaults = attrList{
		{"shape", "box"},
		{"style", "rounded"},
		{"labeljust", "l"},
		{"pencolor", "#AEB6BE"},
		{"fontname", defaultFont},
		{"fontsize", "12"},
	}

	// Cluster backgrounds cycle with nesting depth.
	clusterColors = []string{"#E5F5FD", "#EBF3E7", "#ECE8F6", "#FDF7E3"}
)
