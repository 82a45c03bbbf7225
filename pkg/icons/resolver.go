package icons

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/orchestree/orchestree/pkg/diagram"
	"github.com/orchestree/orchestree/pkg/errors"
)

// Config locates the descriptor and the fallback asset.
type Config struct {
	Descriptor string // Path to the rule descriptor
	Fallback   string // Asset used when no rule matches
	BaseDir    string // Root for rule targets; defaults to the descriptor's directory
}

// Resolver resolves icon identifiers. It is immutable after construction
// and safe for concurrent use.
type Resolver struct {
	rules    []Rule
	fallback string
	baseDir  string
	digest   string
}

// NewResolver loads the descriptor and checks that both it and the fallback
// asset exist before compiling every pattern.
func NewResolver(cfg Config) (*Resolver, error) {
	if cfg.Descriptor == "" {
		return nil, errors.New(errors.ErrCodeDescriptorAbsent, "no icon descriptor configured")
	}
	if cfg.Fallback == "" {
		return nil, errors.New(errors.ErrCodeDescriptorAbsent, "no fallback icon configured")
	}
	if _, err := os.Stat(cfg.Descriptor); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDescriptorAbsent, err, "icon descriptor %s not found", cfg.Descriptor)
	}
	if _, err := os.Stat(cfg.Fallback); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDescriptorAbsent, err, "fallback icon %s not found", cfg.Fallback)
	}

	rules, err := LoadDescriptor(cfg.Descriptor)
	if err != nil {
		return nil, err
	}

	base := cfg.BaseDir
	if base == "" {
		base = filepath.Dir(cfg.Descriptor)
	}
	return NewResolverFromRules(rules, cfg.Fallback, base)
}

// NewResolverFromRules builds a resolver from in-memory rules. Unlike
// [NewResolver] it does not check that the fallback exists.
func NewResolverFromRules(rules []Rule, fallback, baseDir string) (*Resolver, error) {
	compiled := make([]Rule, len(rules))
	copy(compiled, rules)
	for i := range compiled {
		if err := compiled[i].compile(); err != nil {
			return nil, err
		}
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "icon base directory %s", baseDir)
	}
	absFallback, err := filepath.Abs(fallback)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "fallback icon %s", fallback)
	}

	r := &Resolver{rules: compiled, fallback: absFallback, baseDir: absBase}
	r.digest = r.computeDigest()
	return r, nil
}

// Resolve returns the absolute asset path for an identifier. The first rule
// whose pattern occurs anywhere in the identifier wins; with no match the
// fallback is returned. The result is never empty.
func (r *Resolver) Resolve(identifier string) string {
	if rule, ok := r.Match(identifier); ok {
		return r.target(rule)
	}
	return r.fallback
}

// Match returns the first rule whose pattern occurs in the identifier.
func (r *Resolver) Match(identifier string) (Rule, bool) {
	for _, rule := range r.rules {
		if rule.re.MatchString(identifier) {
			return rule, true
		}
	}
	return Rule{}, false
}

// Apply resolves the icon of every leaf in d and returns how many leaves
// fell back to the fallback asset.
func (r *Resolver) Apply(d *diagram.Diagram) int {
	fallbacks := 0
	for _, leaf := range d.Leaves() {
		rule, ok := r.Match(leaf.Icon)
		if !ok {
			leaf.IconPath = r.fallback
			fallbacks++
			continue
		}
		leaf.IconPath = r.target(rule)
	}
	return fallbacks
}

func (r *Resolver) target(rule Rule) string {
	p := filepath.FromSlash(strings.ReplaceAll(rule.Target, `\`, "/"))
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(r.baseDir, p)
}

// Rules returns the rules in resolution order.
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// Fallback returns the absolute fallback asset path.
func (r *Resolver) Fallback() string { return r.fallback }

// BaseDir returns the absolute directory rule targets are joined to.
func (r *Resolver) BaseDir() string { return r.baseDir }

// Target returns the absolute asset path a rule points to.
func (r *Resolver) Target(rule Rule) string { return r.target(rule) }

// Digest identifies the resolver's configuration. Two resolvers with the
// same rules, base directory and fallback share a digest.
func (r *Resolver) Digest() string { return r.digest }

func (r *Resolver) computeDigest() string {
	h := sha256.New()
	for _, rule := range r.rules {
		h.Write([]byte(rule.Pattern))
		h.Write([]byte{0})
		h.Write([]byte(rule.Target))
		h.Write([]byte{0})
	}
	h.Write([]byte(r.baseDir))
	h.Write([]byte{0})
	h.Write([]byte(r.fallback))
	return hex.EncodeToString(h.Sum(nil))
}
