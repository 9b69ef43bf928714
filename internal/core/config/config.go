// Package config loads and validates the rule configuration file. The file
// format is deliberately loose (a field may be a string, a list or a mapping),
// so decoding works on yaml.Node values and normalizes everything into the
// canonical RuleItem shape before any rule is evaluated.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Error is a fatal configuration problem. Rule names it where possible so the
// message points at the offending entry.
type Error struct {
	Rule   string
	Detail string
}

func (e *Error) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Detail)
	}
	return fmt.Sprintf("invalid configuration for %q: %s", e.Rule, e.Detail)
}

func errf(rule, format string, args ...any) error {
	return &Error{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

// CommentType discriminates how a comment rule's content materializes.
type CommentType string

const (
	CommentAdd    CommentType = "add"    // post a new comment
	CommentUpdate CommentType = "update" // edit the triggering comment or the issue body
)

// URLMode selects how a comment rule's url_list is interpreted.
type URLMode string

const (
	URLAllowOnly URLMode = "allow_only"
	URLDeny      URLMode = "deny"
)

// URLPattern is one url_list entry: a regex against the whole link, or
// against a single URL component when Field is set.
type URLPattern struct {
	Field   string // "", "hostname", "host", "path", "scheme", "query" or "fragment"
	Pattern string
}

var urlFields = map[string]bool{
	"hostname": true,
	"host":     true,
	"path":     true,
	"scheme":   true,
	"query":    true,
	"fragment": true,
}

// RuleItem is one validated rule. Content is never undefined after parse: it
// defaults to Name, and an explicit null collapses to the empty string (a
// rule that tracks state without emitting anything).
type RuleItem struct {
	Name              string
	Content           string
	Regexes           []string
	AuthorAssociation []string
	SkipIf            []string
	RemoveIf          []string
	Mode              Mode

	// Comment rules only.
	Type    CommentType
	URLMode URLMode
	URLList []URLPattern
}

// RuleConfig is the parsed configuration file.
type RuleConfig struct {
	Labels   []RuleItem
	Comments []RuleItem
}

type ruleKind int

const (
	labelRule ruleKind = iota
	commentRule
)

// Load parses and validates raw configuration bytes. fallbackMode is applied
// to any rule without its own mode when the file carries no default-mode.
func Load(data []byte, fallbackMode Mode) (*RuleConfig, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errf("", "failed to parse YAML: %v", err)
	}
	if len(doc.Content) == 0 {
		return &RuleConfig{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errf("", "top level must be a mapping")
	}

	defaultMode := fallbackMode
	var labelNodes, commentNodes []*yaml.Node

	for i := 0; i < len(root.Content)-1; i += 2 {
		key := normalizeKey(root.Content[i].Value)
		value := root.Content[i+1]

		switch key {
		case "labels":
			nodes, err := sequenceItems("labels", value)
			if err != nil {
				return nil, err
			}
			labelNodes = nodes
		case "comments":
			nodes, err := sequenceItems("comments", value)
			if err != nil {
				return nil, err
			}
			commentNodes = nodes
		case "default_mode":
			mode, err := resolveMode("default-mode", value)
			if err != nil {
				return nil, err
			}
			defaultMode = mode
		default:
			return nil, errf("", "unknown top-level field %q", root.Content[i].Value)
		}
	}

	cfg := &RuleConfig{}
	for _, node := range labelNodes {
		item, err := parseRule(node, labelRule, defaultMode)
		if err != nil {
			return nil, err
		}
		cfg.Labels = append(cfg.Labels, item)
	}
	for _, node := range commentNodes {
		item, err := parseRule(node, commentRule, defaultMode)
		if err != nil {
			return nil, err
		}
		cfg.Comments = append(cfg.Comments, item)
	}

	return cfg, nil
}

func sequenceItems(field string, node *yaml.Node) ([]*yaml.Node, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errf("", "%s must be a list", field)
	}
	return node.Content, nil
}

// parseRule validates one rule record. Unknown fields are a hard error, as is
// a missing or empty name; until the name is known the record is reported as
// "some item".
func parseRule(node *yaml.Node, kind ruleKind, defaultMode Mode) (RuleItem, error) {
	item := RuleItem{Mode: defaultMode}
	if kind == commentRule {
		item.Type = CommentAdd
	}

	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return item, errf("some item", "rule must be a mapping")
	}

	ruleName := "some item"
	contentSet := false

	// First pass: find the name so later errors can reference it.
	for i := 0; i < len(node.Content)-1; i += 2 {
		if normalizeKey(node.Content[i].Value) == "name" {
			v := node.Content[i+1]
			if v.Kind != yaml.ScalarNode || v.Tag == "!!null" || v.Value == "" {
				return item, errf("some item", "name must be a non-empty string")
			}
			item.Name = v.Value
			ruleName = v.Value
		}
	}
	if item.Name == "" {
		return item, errf("some item", "missing required field name")
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		key := normalizeKey(node.Content[i].Value)
		value := node.Content[i+1]

		switch key {
		case "name":
			// handled above

		case "content":
			contentSet = true
			if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
				item.Content = ""
				break
			}
			if value.Kind != yaml.ScalarNode {
				return item, errf(ruleName, "content must be a string or null")
			}
			item.Content = value.Value

		case "regexes":
			list, err := stringOrList(ruleName, "regexes", value)
			if err != nil {
				return item, err
			}
			item.Regexes = list

		case "author_association":
			list, err := stringOrList(ruleName, "author_association", value)
			if err != nil {
				return item, err
			}
			item.AuthorAssociation = list

		case "skip_if":
			list, err := stringOrList(ruleName, "skip-if", value)
			if err != nil {
				return item, err
			}
			item.SkipIf = list

		case "remove_if":
			list, err := stringOrList(ruleName, "remove-if", value)
			if err != nil {
				return item, err
			}
			item.RemoveIf = list

		case "mode":
			mode, err := resolveMode(ruleName, value)
			if err != nil {
				return item, err
			}
			item.Mode = mode

		case "type":
			if kind != commentRule {
				return item, errf(ruleName, "unknown field %q", node.Content[i].Value)
			}
			switch CommentType(value.Value) {
			case CommentAdd, CommentUpdate:
				item.Type = CommentType(value.Value)
			default:
				return item, errf(ruleName, "type must be %q or %q", CommentAdd, CommentUpdate)
			}

		case "url_mode":
			if kind != commentRule {
				return item, errf(ruleName, "unknown field %q", node.Content[i].Value)
			}
			switch URLMode(value.Value) {
			case URLAllowOnly, URLDeny:
				item.URLMode = URLMode(value.Value)
			default:
				return item, errf(ruleName, "url_mode must be %q or %q", URLAllowOnly, URLDeny)
			}

		case "url_list":
			if kind != commentRule {
				return item, errf(ruleName, "unknown field %q", node.Content[i].Value)
			}
			list, err := urlPatternList(ruleName, value)
			if err != nil {
				return item, err
			}
			item.URLList = list

		default:
			return item, errf(ruleName, "unknown field %q", node.Content[i].Value)
		}
	}

	if !contentSet {
		item.Content = item.Name
	}

	return item, nil
}

// stringOrList coerces a bare string into a one-element list.
func stringOrList(rule, field string, node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
				return nil, errf(rule, "%s entries must be strings", field)
			}
			out = append(out, item.Value)
		}
		return out, nil
	}
	return nil, errf(rule, "%s must be a string or a list of strings", field)
}

// urlPatternList parses url_list entries: plain strings, or one-key mappings
// scoping the pattern to a URL component.
func urlPatternList(rule string, node *yaml.Node) ([]URLPattern, error) {
	if node.Kind == yaml.ScalarNode && node.Tag != "!!null" {
		return []URLPattern{{Pattern: node.Value}}, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, errf(rule, "url_list must be a string or a list")
	}

	out := make([]URLPattern, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, URLPattern{Pattern: item.Value})
		case yaml.MappingNode:
			if len(item.Content) != 2 {
				return nil, errf(rule, "url_list mapping entries must have exactly one key")
			}
			field := normalizeKey(item.Content[0].Value)
			if !urlFields[field] {
				return nil, errf(rule, "unknown url_list field %q", item.Content[0].Value)
			}
			if item.Content[1].Kind != yaml.ScalarNode {
				return nil, errf(rule, "url_list field %q must map to a string pattern", field)
			}
			out = append(out, URLPattern{Field: field, Pattern: item.Content[1].Value})
		default:
			return nil, errf(rule, "url_list entries must be strings or single-key mappings")
		}
	}
	return out, nil
}

// normalizeKey folds the documented hyphenated spellings (skip-if,
// default-mode, ...) onto the underscore forms used internally.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// ParseSyncLabels interprets the sync-labels input: "" or "0" disables label
// syncing, "1" enables it, anything else is a configuration error.
func ParseSyncLabels(value string) (bool, error) {
	switch value {
	case "", "0":
		return false, nil
	case "1":
		return true, nil
	}
	return false, errf("", "sync-labels must be 0 or 1, got %q", value)
}
