package inline

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/charmbracelet/log"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Reasons a placeholder is left in place.
const (
	ReasonMissing        = "missing"        // no such file
	ReasonUnreadable     = "unreadable"     // file cannot be read or parsed
	ReasonUndeterminable = "undeterminable" // asset has no usable size
)

// Skip records a placeholder that was not inlined.
type Skip struct {
	Href   string `json:"href"`
	Reason string `json:"reason"`
}

// Report summarizes an [Inline] run.
type Report struct {
	Images  int    `json:"images"`  // <image> elements with a reference
	Inlined int    `json:"inlined"` // replaced by asset markup
	Skipped []Skip `json:"skipped,omitempty"`
}

// Option configures [Inline].
type Option func(*options)

type options struct {
	logger  *log.Logger
	baseDir string
}

// WithLogger sets the logger for skipped-asset warnings.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBaseDir resolves relative asset references against dir instead of
// the working directory.
func WithBaseDir(dir string) Option {
	return func(o *options) { o.baseDir = dir }
}

// Inline replaces every <image> placeholder in doc with the markup of the
// asset it references. The output always carries an XML declaration.
// Documents without placeholders come back sanitized but otherwise
// unchanged.
func Inline(doc []byte, opts ...Option) ([]byte, *Report, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(io.Discard)
	}

	clean, err := Sanitize(doc)
	if err != nil {
		return nil, nil, err
	}

	d := newDocument(false)
	if err := d.ReadFromBytes(clean); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "parse sanitized SVG")
	}
	root := d.Root()
	if root == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidSVG, "document has no root element")
	}

	in := &inliner{opts: o, assets: make(map[string]*asset), report: &Report{}}
	for _, img := range placeholders(root) {
		in.replace(img)
	}

	setDeclaration(d)
	out, err := d.WriteToBytes()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidSVG, err, "serialize SVG")
	}
	return out, in.report, nil
}

// placeholders collects <image> elements that reference an asset, before
// any are replaced. Images without a reference are left as they are.
func placeholders(root *etree.Element) []*etree.Element {
	var out []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		if el.Tag == "image" {
			if href(el) != "" {
				out = append(out, el)
			}
			return
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(root)
	return out
}

func href(el *etree.Element) string {
	for _, a := range el.Attr {
		if isHref(a) {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

type asset struct {
	data   []byte // sanitized markup
	width  float64
	height float64
	reason string // non-empty when the asset cannot be used
}

type inliner struct {
	opts   options
	assets map[string]*asset // by resolved path
	report *Report
}

func (in *inliner) skip(ref, reason string) {
	in.report.Skipped = append(in.report.Skipped, Skip{Href: ref, Reason: reason})
}

func (in *inliner) replace(img *etree.Element) {
	in.report.Images++

	ref := href(img)
	a := in.load(in.resolve(ref))
	if a.reason != "" {
		in.skip(ref, a.reason)
		return
	}

	// Each placeholder gets a fresh copy of the asset tree with its own ids.
	d := newDocument(false)
	if err := d.ReadFromBytes(a.data); err != nil || d.Root() == nil {
		in.skip(ref, ReasonUnreadable)
		return
	}
	src := d.Root()
	scopeIDs(src, fmt.Sprintf("icon%d-", in.report.Inlined+1))

	x, y := numberAttr(img, "x"), numberAttr(img, "y")
	w, h := numberAttr(img, "width"), numberAttr(img, "height")
	sx, sy := 1.0, 1.0
	if a.width != 0 {
		sx = w / a.width
	}
	if a.height != 0 {
		sy = h / a.height
	}

	g := etree.NewElement("g")
	g.CreateAttr("transform", fmt.Sprintf("translate(%s,%s) scale(%s,%s)",
		formatNumber(x), formatNumber(y), formatNumber(sx), formatNumber(sy)))
	for _, attr := range src.Attr {
		if attr.Space == "xmlns" {
			g.CreateAttr(attr.FullKey(), attr.Value)
		}
	}
	for _, tok := range slices.Clone(src.Child) {
		g.AddChild(tok)
	}

	parent := img.Parent()
	if parent == nil {
		in.skip(ref, ReasonUnreadable)
		return
	}
	idx := img.Index()
	parent.RemoveChildAt(idx)
	parent.InsertChildAt(idx, g)
	in.report.Inlined++
}

// resolve maps an asset reference to a file path.
func (in *inliner) resolve(ref string) string {
	if strings.HasPrefix(ref, "file://") {
		if u, err := url.Parse(ref); err == nil {
			ref = u.Path
		}
	}
	p := filepath.FromSlash(ref)
	if !filepath.IsAbs(p) && in.opts.baseDir != "" {
		p = filepath.Join(in.opts.baseDir, p)
	}
	return p
}

func (in *inliner) load(path string) *asset {
	if a, ok := in.assets[path]; ok {
		return a
	}
	a := in.read(path)
	in.assets[path] = a
	return a
}

func (in *inliner) read(path string) *asset {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &asset{reason: ReasonMissing}
		}
		in.opts.logger.Warn("cannot read icon", "path", path, "err", err)
		return &asset{reason: ReasonUnreadable}
	}

	d, err := sanitize(data)
	if err != nil {
		in.opts.logger.Warn("cannot parse icon", "path", path, "err", err)
		return &asset{reason: ReasonUnreadable}
	}
	w, h, ok := intrinsicSize(d.Root())
	if !ok {
		in.opts.logger.Warn("icon has no usable size", "path", path)
		return &asset{reason: ReasonUndeterminable}
	}

	clean, err := d.WriteToBytes()
	if err != nil {
		return &asset{reason: ReasonUnreadable}
	}
	return &asset{data: clean, width: w, height: h}
}
