package engine

import (
	"context"
	"log"
	"strings"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/config"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
)

// Analyzer evaluates rule lists against one event's content. It carries no
// state between calls; the per-pass accumulators live inside each Analyze
// call, so repeated analysis of the same inputs yields identical results.
type Analyzer struct {
	Content           string
	AuthorAssociation string
	Event             event.Type

	// Links is consulted only by comment rules carrying a url_mode. It may
	// be nil when no such rules exist.
	Links *LinkExtractor
}

// CommentActions is the outcome of a comment pass, split by rule type.
type CommentActions struct {
	Add    []string // bodies for new comments
	Update []string // bodies replacing the triggering comment or issue body
}

// AnalyzeLabels runs the label rules in declaration order and returns the
// label names to add and to remove.
func (a *Analyzer) AnalyzeLabels(rules []config.RuleItem) (add, remove []string, err error) {
	added := make(map[string]bool)

	for i := range rules {
		rule := &rules[i]
		needAdd := rule.Mode.Allows(a.Event, config.DirectionAdd)
		needRemove := rule.Mode.Allows(a.Event, config.DirectionRemove)
		if !needAdd && !needRemove {
			log.Printf("[engine] rule %q is inert for event %q", rule.Name, a.Event)
			continue
		}

		// skip-if wins over everything, including remove-if.
		if anyAdded(added, rule.SkipIf) {
			log.Printf("[engine] rule %q skipped via skip-if", rule.Name)
			continue
		}
		if anyAdded(added, rule.RemoveIf) {
			remove = appendUnique(remove, rule.Content)
			continue
		}

		ok, err := a.ruleSatisfied(context.Background(), rule)
		if err != nil {
			return nil, nil, err
		}

		if ok && needAdd {
			added[rule.Name] = true
			add = appendUnique(add, rule.Content)
		} else if !ok && needRemove {
			remove = appendUnique(remove, rule.Content)
		}
	}

	// A content value decided both ways resolves to removal.
	add = subtract(add, remove)
	return add, remove, nil
}

// AnalyzeComments runs the comment rules in declaration order. Content
// removed by remove-if or a failed match cancels a pending add or update of
// the same value during final reconciliation; comments themselves are never
// deleted.
func (a *Analyzer) AnalyzeComments(ctx context.Context, rules []config.RuleItem) (CommentActions, error) {
	added := make(map[string]bool)
	var actions CommentActions
	var remove []string

	for i := range rules {
		rule := &rules[i]
		needAdd := rule.Mode.Allows(a.Event, config.DirectionAdd)
		needRemove := rule.Mode.Allows(a.Event, config.DirectionRemove)
		if !needAdd && !needRemove {
			log.Printf("[engine] rule %q is inert for event %q", rule.Name, a.Event)
			continue
		}

		if anyAdded(added, rule.SkipIf) {
			log.Printf("[engine] rule %q skipped via skip-if", rule.Name)
			continue
		}
		if anyAdded(added, rule.RemoveIf) {
			remove = appendUnique(remove, a.instantiate(rule.Content))
			continue
		}

		ok, err := a.ruleSatisfied(ctx, rule)
		if err != nil {
			return CommentActions{}, err
		}

		if ok && needAdd {
			added[rule.Name] = true
			body := a.instantiate(rule.Content)
			if rule.Type == config.CommentUpdate {
				actions.Update = appendUnique(actions.Update, body)
			} else {
				actions.Add = appendUnique(actions.Add, body)
			}
		} else if !ok && needRemove {
			remove = appendUnique(remove, a.instantiate(rule.Content))
		}
	}

	actions.Add = subtract(actions.Add, remove)
	actions.Update = subtract(actions.Update, remove)
	return actions, nil
}

// ruleSatisfied evaluates the rule's match condition: the author
// classification and content patterns conjunctively, plus the URL test when
// the rule carries a url_mode.
func (a *Analyzer) ruleSatisfied(ctx context.Context, rule *config.RuleItem) (bool, error) {
	ok, err := Match(a.AuthorAssociation, rule.AuthorAssociation)
	if err != nil || !ok {
		return false, err
	}
	ok, err = Match(a.Content, rule.Regexes)
	if err != nil || !ok {
		return false, err
	}

	if rule.URLMode != "" {
		if a.Links == nil {
			return false, nil
		}
		links, err := a.Links.Links(ctx, a.Content)
		if err != nil {
			return false, err
		}
		if len(links) == 0 {
			return false, nil
		}
		return linkHits(links, rule.URLMode, rule.URLList)
	}

	return true, nil
}

// instantiate substitutes the ${body} placeholder with the evaluated content.
func (a *Analyzer) instantiate(template string) string {
	return strings.ReplaceAll(template, "${body}", a.Content)
}

func anyAdded(added map[string]bool, names []string) bool {
	for _, name := range names {
		if added[name] {
			return true
		}
	}
	return false
}

// appendUnique appends content unless it is empty or already present. Empty
// content is the sentinel for rules that track state without emitting.
func appendUnique(list []string, content string) []string {
	if content == "" {
		return list
	}
	for _, existing := range list {
		if existing == content {
			return list
		}
	}
	return append(list, content)
}

// subtract drops every entry of remove from list, preserving order.
func subtract(list, remove []string) []string {
	if len(list) == 0 || len(remove) == 0 {
		return list
	}
	out := list[:0]
	for _, v := range list {
		found := false
		for _, r := range remove {
			if v == r {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
