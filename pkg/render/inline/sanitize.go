package inline

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/beevik/etree"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Sanitize repairs markup so that a strict XML parser accepts it. The
// result always starts with an XML declaration.
func Sanitize(doc []byte) ([]byte, error) {
	d, err := sanitize(doc)
	if err != nil {
		return nil, err
	}
	out, err := d.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "serialize SVG")
	}
	return out, nil
}

func sanitize(doc []byte) (*etree.Document, error) {
	d := newDocument(true)
	if err := d.ReadFromBytes(escapeStray(doc)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "parse SVG")
	}
	if d.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidSVG, "document has no root element")
	}

	cleanElement(d.Root())
	setDeclaration(d)
	return d, nil
}

func newDocument(permissive bool) *etree.Document {
	d := etree.NewDocument()
	d.ReadSettings.CharsetReader = passthroughCharset
	d.ReadSettings.PreserveCData = true
	d.WriteSettings.CanonicalText = true
	d.WriteSettings.CanonicalAttrVal = true
	if permissive {
		d.ReadSettings.Permissive = true
		d.ReadSettings.Entity = xml.HTMLEntity
	}
	return d
}

// passthroughCharset accepts any declared encoding. Input has already been
// reduced to valid UTF-8 by escapeStray.
func passthroughCharset(_ string, input io.Reader) (io.Reader, error) {
	return input, nil
}

func setDeclaration(d *etree.Document) {
	for i := len(d.Child) - 1; i >= 0; i-- {
		if pi, ok := d.Child[i].(*etree.ProcInst); ok && pi.Target == "xml" {
			d.RemoveChildAt(i)
		}
	}
	d.InsertChildAt(0, etree.NewProcInst("xml", `version="1.0" encoding="UTF-8"`))
}

// cleanElement strips characters XML cannot represent from attribute values
// and text. Asset references only get '&' normalization on top.
func cleanElement(el *etree.Element) {
	for i := range el.Attr {
		a := &el.Attr[i]
		a.Value = stripInvalid(a.Value)
		if isHref(*a) {
			a.Value = collapseAmp(a.Value)
		}
	}
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			cleanElement(t)
		case *etree.CharData:
			t.Data = stripInvalid(t.Data)
		case *etree.Comment:
			t.Data = stripInvalid(t.Data)
		}
	}
}

func isHref(a etree.Attr) bool {
	return a.Key == "href" && (a.Space == "" || a.Space == "xlink")
}

func collapseAmp(s string) string {
	for strings.Contains(s, "&amp;") {
		s = strings.ReplaceAll(s, "&amp;", "&")
	}
	return s
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}

func stripInvalid(s string) string {
	clean := true
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && !validAt(s, i)) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && !validAt(s, i)) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// validAt reports whether a RuneError at s[i] was literally encoded rather
// than produced by a bad byte.
func validAt(s string, i int) bool {
	_, size := utf8.DecodeRuneInString(s[i:])
	return size > 1
}

var entityRe = regexp.MustCompile(`^&(?:[A-Za-z_:][A-Za-z0-9._:-]*|#[0-9]+|#[xX][0-9A-Fa-f]+);`)

type scanState int

const (
	inText scanState = iota
	inTag
	inQuote
	inComment
	inCDATA
	inProcInst
	inDirective
)

// escapeStray is the byte-level repair pass. Outside comments, CDATA,
// processing instructions and directives it escapes '&' that does not
// start an entity reference and '<' that cannot start markup (always, when
// inside a quoted attribute value). Everywhere it drops bytes that are not
// valid UTF-8 or not legal XML characters.
func escapeStray(doc []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(doc) + len(doc)/16)

	state := inText
	var quote byte
	depth := 0 // '[' nesting inside a directive

	for i := 0; i < len(doc); {
		r, size := utf8.DecodeRune(doc[i:])
		if (r == utf8.RuneError && size <= 1) || !isXMLChar(r) {
			i += max(size, 1)
			continue
		}
		rest := doc[i:]

		switch state {
		case inText, inQuote:
			switch {
			case r == '&':
				if entityRe.Match(rest[:min(len(rest), 64)]) {
					out.WriteByte('&')
				} else {
					out.WriteString("&amp;")
				}
				i++
				continue
			case r == '<' && state == inQuote:
				out.WriteString("&lt;")
				i++
				continue
			case r == '<':
				next := markupAt(rest)
				if next == inText {
					out.WriteString("&lt;")
					i++
					continue
				}
				state = next
			case state == inQuote && r == rune(quote):
				state = inTag
			}
		case inTag:
			switch r {
			case '"', '\'':
				state, quote = inQuote, byte(r)
			case '>':
				state = inText
			}
		case inComment:
			if bytes.HasPrefix(rest, []byte("-->")) {
				out.WriteString("-->")
				i += 3
				state = inText
				continue
			}
		case inCDATA:
			if bytes.HasPrefix(rest, []byte("]]>")) {
				out.WriteString("]]>")
				i += 3
				state = inText
				continue
			}
		case inProcInst:
			if bytes.HasPrefix(rest, []byte("?>")) {
				out.WriteString("?>")
				i += 2
				state = inText
				continue
			}
		case inDirective:
			switch r {
			case '[':
				depth++
			case ']':
				depth--
			case '>':
				if depth <= 0 {
					depth = 0
					state = inText
				}
			}
		}

		out.Write(doc[i : i+size])
		i += size
	}
	return out.Bytes()
}

// markupAt classifies the construct starting at a '<'. It returns inText
// when the '<' cannot start markup, including label text such as "a<b c"
// that only looks like the start of a tag.
func markupAt(rest []byte) scanState {
	switch {
	case bytes.HasPrefix(rest, []byte("<!--")):
		return inComment
	case bytes.HasPrefix(rest, []byte("<![CDATA[")):
		return inCDATA
	case bytes.HasPrefix(rest, []byte("<!")):
		return inDirective
	case bytes.HasPrefix(rest, []byte("<?")):
		return inProcInst
	}
	if isTag(rest) {
		return inTag
	}
	return inText
}

// isTag reports whether rest starts with a complete start, end or
// empty-element tag. Attributes may be quoted, unquoted or valueless, as
// the permissive parser accepts all three.
func isTag(rest []byte) bool {
	i := 1
	if i < len(rest) && rest[i] == '/' {
		i++
		n := nameLen(rest[i:])
		if n == 0 {
			return false
		}
		i = skipSpace(rest, i+n)
		return i < len(rest) && rest[i] == '>'
	}

	n := nameLen(rest[min(i, len(rest)):])
	if n == 0 {
		return false
	}
	i += n
	for {
		j := skipSpace(rest, i)
		switch {
		case j >= len(rest):
			return false
		case rest[j] == '>':
			return true
		case rest[j] == '/':
			return j+1 < len(rest) && rest[j+1] == '>'
		case j == i:
			return false // attribute not separated by whitespace
		}

		n := nameLen(rest[j:])
		if n == 0 {
			return false
		}
		i = j + n
		k := skipSpace(rest, i)
		if k >= len(rest) || rest[k] != '=' {
			continue // valueless attribute
		}
		k = skipSpace(rest, k+1)
		if k >= len(rest) {
			return false
		}
		if q := rest[k]; q == '"' || q == '\'' {
			end := bytes.IndexByte(rest[k+1:], q)
			if end < 0 {
				return false
			}
			i = k + 1 + end + 1
			continue
		}
		for k < len(rest) && !isSpace(rest[k]) && rest[k] != '>' && rest[k] != '<' {
			k++
		}
		i = k
	}
}

func nameLen(b []byte) int {
	n := 0
	for n < len(b) {
		c := b[n]
		start := c == '_' || c == ':' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		if !start && (n == 0 || !(c == '-' || c == '.' || (c >= '0' && c <= '9'))) {
			break
		}
		n++
	}
	return n
}

func skipSpace(b []byte, i int) int {
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
