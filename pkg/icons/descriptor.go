package icons

import (
	"bytes"
	"encoding/json"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/orchestree/orchestree/pkg/errors"
)

// Rule is one descriptor entry.
type Rule struct {
	Pattern string `json:"pattern"`
	Target  string `json:"target"`

	re *regexp.Regexp
}

// LoadDescriptor reads the rules from a descriptor file.
func LoadDescriptor(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeDescriptorAbsent, "icon descriptor %s not found", path)
		}
		return nil, errors.Wrap(errors.ErrCodeDescriptorAbsent, err, "read icon descriptor %s", path)
	}
	return ParseDescriptor(data)
}

// ParseDescriptor decodes descriptor text into rules, keeping the order in
// which the patterns were written. JSON objects are streamed token by token;
// anything else is read as a YAML mapping.
func ParseDescriptor(data []byte) ([]Rule, error) {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return parseJSONDescriptor(trimmed)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidIconRule, err, "parse icon descriptor")
	}
	if doc.Kind == 0 {
		return nil, nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidIconRule, "icon descriptor must be an object of pattern: path entries")
	}

	rules := make([]Rule, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, errors.New(errors.ErrCodeInvalidIconRule,
				"line %d: icon path for %q must be a string", v.Line, k.Value)
		}
		rules = append(rules, Rule{Pattern: k.Value, Target: v.Value})
	}
	return rules, nil
}

func parseJSONDescriptor(data []byte) ([]Rule, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidIconRule, err, "parse icon descriptor")
	}

	var rules []Rule
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidIconRule, err, "parse icon descriptor")
		}
		pattern, _ := tok.(string)

		var target string
		if err := dec.Decode(&target); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidIconRule, err, "icon path for %q must be a string", pattern)
		}
		rules = append(rules, Rule{Pattern: pattern, Target: target})
	}
	if _, err := dec.Token(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidIconRule, err, "parse icon descriptor")
	}
	return rules, nil
}

func (r *Rule) compile() error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidIconRule, err, "icon pattern %q", r.Pattern)
	}
	if err := errors.ValidatePath(r.Target); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidIconRule, err, "icon pattern %q", r.Pattern)
	}
	r.re = re
	return nil
}
