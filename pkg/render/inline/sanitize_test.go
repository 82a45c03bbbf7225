package inline

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	doc := "<svg xmlns=\"http://www.w3.org/2000/svg\">" +
		"<text>R&D < 5 &nbsp;ok\x01</text>" +
		"<text>&lt;kept&gt; &#65; &copy;</text>" +
		"<a href=\"x?a=1&amp;amp;b=2\" title=\"a<b & c\"/>" +
		"<!-- a < b & c -->" +
		"<style><![CDATA[ a > b && c < d ]]></style>" +
		"</svg>"

	out, err := Sanitize([]byte(doc))
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	s := string(out)
	wellFormed(t, out)

	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		"R&amp;D &lt; 5 \u00a0ok</text>",
		"&lt;kept&gt; A \u00a9",
		`href="x?a=1&amp;b=2"`,
		`title="a&lt;b &amp; c"`,
		"a > b && c < d",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("Sanitize() output missing %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "\x01") {
		t.Error("control character survived")
	}
}

func TestSanitize_LabelWithLessThan(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg"><text>if a<b then</text></svg>`
	out, err := Sanitize([]byte(doc))
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	wellFormed(t, out)
	if !strings.Contains(string(out), "if a&lt;b then") {
		t.Errorf("Sanitize() = %s, want escaped label text", out)
	}
}

func TestSanitize_ReplacesDeclaration(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?><svg/>`
	out, err := Sanitize([]byte(doc))
	if err != nil {
		t.Fatalf("Sanitize() error = %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?><svg/>`
	if string(out) != want {
		t.Errorf("Sanitize() = %s, want %s", out, want)
	}
}

func TestEscapeStray(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<a>x & y</a>", "<a>x &amp; y</a>"},
		{"<a>&amp; &#10; &#x1F; &nbsp;</a>", "<a>&amp; &#10; &#x1F; &nbsp;</a>"},
		{"<a>1 < 2</a>", "<a>1 &lt; 2</a>"},
		{"<a>1 <2</a>", "<a>1 &lt;2</a>"},
		{`<a t="1<2">`, `<a t="1&lt;2">`},
		{`<a t='&'>`, `<a t='&amp;'>`},
		{"<!-- & < -->", "<!-- & < -->"},
		{"<![CDATA[ & < ]]>", "<![CDATA[ & < ]]>"},
		{"<?pi & < ?>", "<?pi & < ?>"},
		{"<!DOCTYPE x [<!ENTITY e \"&\">]><x/>", "<!DOCTYPE x [<!ENTITY e \"&\">]><x/>"},
		{"<a>\xff\x00b</a>", "<a>b</a>"},
		{"<é/>", "<é/>"},
		{"<text>if a<b then</text>", "<text>if a&lt;b then</text>"},
		{"<text>x <y</text>", "<text>x &lt;y</text>"},
		{"<text>a<b>c</b></text>", "<text>a<b>c</b></text>"},
		{`<rect x=1 hidden/>`, `<rect x=1 hidden/>`},
		{"<a>1 </b c></a>", "<a>1 &lt;/b c></a>"},
	}
	for _, tt := range tests {
		if got := string(escapeStray([]byte(tt.in))); got != tt.want {
			t.Errorf("escapeStray(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLength(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"100", 100, true},
		{"100px", 100, true},
		{" 62.5pt ", 62.5, true},
		{"-3", -3, true},
		{"50%", 0, false},
		{"", 0, false},
		{"auto", 0, false},
	}
	for _, tt := range tests {
		got, ok := length(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("length(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
