package inline

import (
	"strings"

	"github.com/beevik/etree"
)

// scopeIDs prefixes every id attribute under root and rewrites the
// references that point at them: "#id" hrefs and url(#id) in attribute
// values and <style> text. References to ids outside root are left alone.
func scopeIDs(root *etree.Element, prefix string) {
	ids := make(map[string]string)
	eachElement(root, func(el *etree.Element) {
		for i, a := range el.Attr {
			if a.Space == "" && a.Key == "id" && a.Value != "" {
				ids[a.Value] = prefix + a.Value
				el.Attr[i].Value = prefix + a.Value
			}
		}
	})
	if len(ids) == 0 {
		return
	}

	eachElement(root, func(el *etree.Element) {
		for i, a := range el.Attr {
			switch {
			case isHref(a) && strings.HasPrefix(a.Value, "#"):
				if id, ok := ids[a.Value[1:]]; ok {
					el.Attr[i].Value = "#" + id
				}
			case strings.Contains(a.Value, "url("):
				el.Attr[i].Value = rewriteURLs(a.Value, ids)
			}
		}
		if el.Tag != "style" {
			return
		}
		for _, tok := range el.Child {
			if cd, ok := tok.(*etree.CharData); ok {
				cd.SetData(rewriteURLs(cd.Data, ids))
			}
		}
	})
}

func eachElement(el *etree.Element, fn func(*etree.Element)) {
	fn(el)
	for _, c := range el.ChildElements() {
		eachElement(c, fn)
	}
}

// rewriteURLs replaces url(#id), url('#id') and url("#id") references
// whose id is a key of ids.
func rewriteURLs(s string, ids map[string]string) string {
	var b strings.Builder
	for {
		i := strings.Index(s, "url(")
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		i += len("url(")
		b.WriteString(s[:i])
		s = s[i:]

		j := 0
		for j < len(s) && (s[j] == ' ' || s[j] == '\'' || s[j] == '"') {
			j++
		}
		if j >= len(s) || s[j] != '#' {
			continue
		}
		end := strings.IndexAny(s[j+1:], ")'\" ")
		if end < 0 {
			continue
		}
		id, ok := ids[s[j+1:j+1+end]]
		if !ok {
			continue
		}
		b.WriteString(s[:j+1])
		b.WriteString(id)
		s = s[j+1+end:]
	}
}
