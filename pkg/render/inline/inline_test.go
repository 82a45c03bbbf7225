package inline

import (
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/orchestree/orchestree/pkg/errors"
)

const laidOut = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<!DOCTYPE svg PUBLIC "-//W3C//DTD SVG 1.1//EN"
 "http://www.w3.org/Graphics/SVG/1.1/DTD/svg11.dtd">
<svg width="300pt" height="200pt" viewBox="0.00 0.00 300.00 200.00" xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">
<g id="graph0" class="graph">
<g id="node1" class="node">
<title>n1</title>
<image xlink:href="{{ICON}}" width="100px" height="100px" preserveAspectRatio="xMinYMin meet" x="10" y="20"/>
<text x="60" y="140">API</text>
</g>
</g>
</svg>
`

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func wellFormed(t *testing.T, doc []byte) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(string(doc)))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v\n%s", err, doc)
		}
	}
}

func TestInline_Scales(t *testing.T) {
	dir := t.TempDir()
	icon := writeAsset(t, dir, "s3.svg",
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 25 50" width="999" height="999"><path d="M0 0h25v50z"/></svg>`)

	out, report, err := Inline([]byte(strings.Replace(laidOut, "{{ICON}}", icon, 1)))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}

	s := string(out)
	if !strings.Contains(s, `<g transform="translate(10,20) scale(4,2)"><path d="M0 0h25v50z"/></g>`) {
		t.Errorf("missing inlined group:\n%s", s)
	}
	if strings.Contains(s, "<image") {
		t.Errorf("placeholder not replaced:\n%s", s)
	}
	if !strings.HasPrefix(s, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("missing XML declaration:\n%.80s", s)
	}
	if !strings.Contains(s, `<text x="60" y="140">API</text>`) {
		t.Errorf("surrounding markup lost:\n%s", s)
	}
	wellFormed(t, out)

	want := &Report{Images: 1, Inlined: 1}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
}

func TestInline_SizeFromAttributes(t *testing.T) {
	dir := t.TempDir()
	icon := writeAsset(t, dir, "a.svg",
		`<svg xmlns="http://www.w3.org/2000/svg" width="50px" height="25px"><circle r="3"/></svg>`)

	out, _, err := Inline([]byte(strings.Replace(laidOut, "{{ICON}}", icon, 1)))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if !strings.Contains(string(out), `transform="translate(10,20) scale(2,4)"`) {
		t.Errorf("unexpected transform:\n%s", out)
	}
}

func TestInline_SkipsUnusableAssets(t *testing.T) {
	dir := t.TempDir()
	good := writeAsset(t, dir, "good.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect/></svg>`)
	sizeless := writeAsset(t, dir, "sizeless.svg", `<svg xmlns="http://www.w3.org/2000/svg" width="100%"><rect/></svg>`)
	broken := writeAsset(t, dir, "broken.svg", `just text, no markup`)
	missing := filepath.Join(dir, "missing.svg")

	doc := `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink">` +
		`<image xlink:href="` + good + `" width="20" height="20"/>` +
		`<image xlink:href="` + sizeless + `" width="20" height="20"/>` +
		`<image xlink:href="` + broken + `" width="20" height="20"/>` +
		`<image xlink:href="` + missing + `" width="20" height="20"/>` +
		`<image href="" width="20" height="20"/>` +
		`</svg>`

	out, report, err := Inline([]byte(doc))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}

	want := &Report{
		Images:  4,
		Inlined: 1,
		Skipped: []Skip{
			{Href: sizeless, Reason: ReasonUndeterminable},
			{Href: broken, Reason: ReasonUnreadable},
			{Href: missing, Reason: ReasonMissing},
		},
	}
	if diff := cmp.Diff(want, report); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Count(string(out), "<image"); got != 4 {
		t.Errorf("remaining placeholders = %d, want 4", got)
	}
	if !strings.Contains(string(out), `scale(2,2)`) {
		t.Errorf("good asset not inlined:\n%s", out)
	}
}

func TestInline_NoPlaceholders(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="1" height="2"/><text>a &amp; b</text></svg>`

	out, report, err := Inline([]byte(doc))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>` + doc
	if string(out) != want {
		t.Errorf("Inline() =\n%s\nwant\n%s", out, want)
	}
	if report.Images != 0 || report.Inlined != 0 {
		t.Errorf("Report = %+v, want empty", report)
	}
}

func TestInline_CopiesNamespaceDeclarations(t *testing.T) {
	dir := t.TempDir()
	icon := writeAsset(t, dir, "ns.svg",
		`<svg xmlns="http://www.w3.org/2000/svg" xmlns:sketch="http://www.bohemiancoding.com/sketch/ns" viewBox="0 0 10 10"><g sketch:type="MSPage"/></svg>`)

	doc := `<svg xmlns="http://www.w3.org/2000/svg"><image href="` + icon + `" width="10" height="10"/></svg>`
	out, _, err := Inline([]byte(doc))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if !strings.Contains(string(out), `xmlns:sketch="http://www.bohemiancoding.com/sketch/ns"`) {
		t.Errorf("namespace declaration not carried:\n%s", out)
	}
	wellFormed(t, out)
}

func TestInline_RelativeHrefWithBaseDir(t *testing.T) {
	dir := t.TempDir()
	writeAsset(t, dir, "rel.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 4 4"><rect/></svg>`)

	doc := `<svg xmlns="http://www.w3.org/2000/svg"><image href="rel.svg" width="8" height="8"/></svg>`
	_, report, err := Inline([]byte(doc), WithBaseDir(dir))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if report.Inlined != 1 {
		t.Errorf("Inlined = %d, want 1 (skipped %v)", report.Inlined, report.Skipped)
	}
}

func TestInline_SameAssetTwice(t *testing.T) {
	dir := t.TempDir()
	icon := writeAsset(t, dir, "x.svg", `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1 1"><rect/></svg>`)

	doc := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<image href="` + icon + `" x="1" width="1" height="1"/>` +
		`<image href="` + icon + `" x="2" width="2" height="2"/>` +
		`</svg>`
	out, report, err := Inline([]byte(doc))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if report.Inlined != 2 {
		t.Fatalf("Inlined = %d, want 2", report.Inlined)
	}
	for _, want := range []string{
		`<g transform="translate(1,0) scale(1,1)"><rect/></g>`,
		`<g transform="translate(2,0) scale(2,2)"><rect/></g>`,
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("missing %s in:\n%s", want, out)
		}
	}
}

func TestInline_IgnoresImagesWithoutReference(t *testing.T) {
	doc := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<image width="5" height="5"/><image href="  " width="5" height="5"/>` +
		`</svg>`
	out, report, err := Inline([]byte(doc))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	if diff := cmp.Diff(&Report{}, report); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Count(string(out), "<image"); got != 2 {
		t.Errorf("remaining images = %d, want 2", got)
	}
}

func TestInline_ScopesIDsPerPlacement(t *testing.T) {
	dir := t.TempDir()
	icon := writeAsset(t, dir, "grad.svg", `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 1 1">`+
		`<defs><linearGradient id="g"/><clipPath id="c"><rect/></clipPath></defs>`+
		`<style>.a{fill:url(#g)}</style>`+
		`<rect fill="url(#g)" clip-path="url('#c')" stroke="url(#elsewhere)"/><use xlink:href="#c"/>`+
		`</svg>`)

	doc := `<svg xmlns="http://www.w3.org/2000/svg">` +
		`<image href="` + icon + `" width="1" height="1"/>` +
		`<image href="` + icon + `" width="1" height="1"/>` +
		`</svg>`
	out, _, err := Inline([]byte(doc))
	if err != nil {
		t.Fatalf("Inline() error = %v", err)
	}
	s := string(out)
	wellFormed(t, out)

	for _, want := range []string{
		`id="icon1-g"`, `id="icon1-c"`, `id="icon2-g"`, `id="icon2-c"`,
		`fill="url(#icon1-g)"`, `clip-path="url('#icon2-c')"`,
		`.a{fill:url(#icon2-g)}`, `xlink:href="#icon1-c"`,
		`stroke="url(#elsewhere)"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %s:\n%s", want, s)
		}
	}
	if strings.Contains(s, `id="g"`) {
		t.Errorf("unscoped id left in output:\n%s", s)
	}
}

func TestRewriteURLs(t *testing.T) {
	ids := map[string]string{"a": "p-a"}
	tests := []struct {
		in, want string
	}{
		{"url(#a)", "url(#p-a)"},
		{`url("#a") url(#b)`, `url("#p-a") url(#b)`},
		{"url(x.svg#a)", "url(x.svg#a)"},
		{"url(#a", "url(#a"},
		{"none", "none"},
	}
	for _, tt := range tests {
		if got := rewriteURLs(tt.in, ids); got != tt.want {
			t.Errorf("rewriteURLs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInline_InvalidDocument(t *testing.T) {
	for _, doc := range []string{"", "plain text", "<!-- only a comment -->"} {
		_, _, err := Inline([]byte(doc))
		if !errors.Is(err, errors.ErrCodeInvalidSVG) {
			t.Errorf("Inline(%q) error = %v, want INVALID_SVG", doc, err)
		}
	}
}
