package engine

import (
	"context"
	"reflect"
	"testing"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/config"
	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
)

func addMode() config.Mode {
	return config.Mode{Add: config.ModeSet{All: true}}
}

func addRemoveMode() config.Mode {
	return config.Mode{Add: config.ModeSet{All: true}, Remove: config.ModeSet{All: true}}
}

func labelAnalyzer(content string) *Analyzer {
	return &Analyzer{Content: content, Event: event.Issues}
}

func TestAnalyzeLabelsSimpleAdd(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "bug", Content: "bug", Regexes: []string{"[Bb]ug"}, Mode: addMode()},
	}

	add, remove, err := labelAnalyzer("There is a Bug").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add, []string{"bug"}) {
		t.Errorf("Expected add [bug], got %v", add)
	}
	if len(remove) != 0 {
		t.Errorf("Expected no removals, got %v", remove)
	}
}

func TestAnalyzeLabelsRemoveOnMiss(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "bug", Content: "bug", Regexes: []string{"[Bb]ug"}, Mode: addRemoveMode()},
	}

	add, remove, err := labelAnalyzer("nothing relevant").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if len(add) != 0 {
		t.Errorf("Expected no additions, got %v", add)
	}
	if !reflect.DeepEqual(remove, []string{"bug"}) {
		t.Errorf("Expected remove [bug], got %v", remove)
	}
}

func TestAnalyzeLabelsSkipIfSuppressesEntirely(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "A", Content: "A", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "B", Content: "B", Regexes: []string{".*"}, SkipIf: []string{"A"}, Mode: addRemoveMode()},
	}

	add, remove, err := labelAnalyzer("foo").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add, []string{"A"}) {
		t.Errorf("Expected add [A], got %v", add)
	}
	if len(remove) != 0 {
		t.Errorf("Expected skipped rule to contribute nothing, got remove=%v", remove)
	}
}

func TestAnalyzeLabelsSkipIfInactiveWhenDependencyMissed(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "A", Content: "A", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "B", Content: "B", Regexes: []string{".*"}, SkipIf: []string{"A"}, Mode: addMode()},
	}

	add, _, err := labelAnalyzer("bar").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add, []string{"B"}) {
		t.Errorf("Expected add [B] when A did not fire, got %v", add)
	}
}

func TestAnalyzeLabelsRemoveIfForcesRemoval(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "A", Content: "A", Regexes: []string{"foo"}, Mode: addMode()},
		// B's own patterns would match; remove-if still wins.
		{Name: "B", Content: "b", Regexes: []string{".*"}, RemoveIf: []string{"A"}, Mode: addMode()},
	}

	add, remove, err := labelAnalyzer("foo").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add, []string{"A"}) {
		t.Errorf("Expected add [A], got %v", add)
	}
	if !reflect.DeepEqual(remove, []string{"b"}) {
		t.Errorf("Expected remove [b], got %v", remove)
	}
}

func TestAnalyzeSkipIfBeatsRemoveIf(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "A", Content: "A", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "B", Content: "b", SkipIf: []string{"A"}, RemoveIf: []string{"A"}, Mode: addRemoveMode()},
	}

	_, remove, err := labelAnalyzer("foo").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if len(remove) != 0 {
		t.Errorf("Expected skip-if to suppress the force-remove, got %v", remove)
	}
}

func TestAnalyzeLabelsReconciliationRemoveWins(t *testing.T) {
	// Two rules share the content "dup": the first adds it, the second
	// misses and pushes it into the remove set. Removal wins at the end.
	rules := []config.RuleItem{
		{Name: "first", Content: "dup", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "second", Content: "dup", Regexes: []string{"absent"}, Mode: addRemoveMode()},
	}

	add, remove, err := labelAnalyzer("foo").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if len(add) != 0 {
		t.Errorf("Expected reconciliation to drop the add, got %v", add)
	}
	if !reflect.DeepEqual(remove, []string{"dup"}) {
		t.Errorf("Expected remove [dup], got %v", remove)
	}
}

func TestAnalyzeLabelsDedupByContent(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "one", Content: "same", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "two", Content: "same", Regexes: []string{"foo"}, Mode: addMode()},
	}

	add, _, err := labelAnalyzer("foo").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add, []string{"same"}) {
		t.Errorf("Expected a single 'same' entry, got %v", add)
	}
}

func TestAnalyzeLabelsEmptyContentTracksWithoutEmitting(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "silent", Content: "", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "loud", Content: "loud", SkipIf: []string{"silent"}, Mode: addMode()},
	}

	add, remove, err := labelAnalyzer("foo").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if len(add) != 0 || len(remove) != 0 {
		t.Errorf("Expected no visible actions, got add=%v remove=%v", add, remove)
	}
}

func TestAnalyzeLabelsInertModeSkipsRule(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "bug", Content: "bug", Regexes: []string{".*"},
			Mode: config.Mode{Add: config.ModeSet{Events: map[event.Type]bool{event.Push: true}}}},
	}

	add, remove, err := labelAnalyzer("anything").AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if len(add) != 0 || len(remove) != 0 {
		t.Errorf("Expected inert rule to contribute nothing, got add=%v remove=%v", add, remove)
	}
}

func TestAnalyzeLabelsAuthorAssociation(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "insider", Content: "insider", AuthorAssociation: []string{"COLLABORATOR|MEMBER"}, Mode: addMode()},
	}

	a := &Analyzer{Content: "x", AuthorAssociation: "COLLABORATOR", Event: event.Issues}
	add, _, err := a.AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add, []string{"insider"}) {
		t.Errorf("Expected add [insider], got %v", add)
	}

	a = &Analyzer{Content: "x", AuthorAssociation: "NONE", Event: event.Issues}
	add, _, err = a.AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("AnalyzeLabels failed: %v", err)
	}
	if len(add) != 0 {
		t.Errorf("Expected no add for NONE author, got %v", add)
	}
}

func TestAnalyzeLabelsIdempotent(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "A", Content: "A", Regexes: []string{"foo"}, Mode: addMode()},
		{Name: "B", Content: "B", SkipIf: []string{"A"}, Mode: addRemoveMode()},
		{Name: "C", Content: "C", Regexes: []string{"bar"}, Mode: addRemoveMode()},
	}

	a := labelAnalyzer("foo")
	add1, remove1, err := a.AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("first AnalyzeLabels failed: %v", err)
	}
	add2, remove2, err := a.AnalyzeLabels(rules)
	if err != nil {
		t.Fatalf("second AnalyzeLabels failed: %v", err)
	}
	if !reflect.DeepEqual(add1, add2) || !reflect.DeepEqual(remove1, remove2) {
		t.Errorf("Expected identical results: (%v,%v) vs (%v,%v)", add1, remove1, add2, remove2)
	}
}

func TestAnalyzeLabelsInvalidPatternPropagates(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "broken", Content: "broken", Regexes: []string{"("}, Mode: addMode()},
	}
	if _, _, err := labelAnalyzer("text").AnalyzeLabels(rules); err == nil {
		t.Error("Expected pattern compile failure to propagate")
	}
}

func TestAnalyzeCommentsPlaceholderAndTypes(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "echo", Content: "got: ${body}", Regexes: []string{"hello"}, Mode: addMode(), Type: config.CommentAdd},
		{Name: "rewrite", Content: "normalized", Regexes: []string{"hello"}, Mode: addMode(), Type: config.CommentUpdate},
	}

	a := &Analyzer{Content: "hello there", Event: event.IssueComment}
	actions, err := a.AnalyzeComments(context.Background(), rules)
	if err != nil {
		t.Fatalf("AnalyzeComments failed: %v", err)
	}
	if !reflect.DeepEqual(actions.Add, []string{"got: hello there"}) {
		t.Errorf("Expected substituted add body, got %v", actions.Add)
	}
	if !reflect.DeepEqual(actions.Update, []string{"normalized"}) {
		t.Errorf("Expected update body, got %v", actions.Update)
	}
}

func TestAnalyzeCommentsSkipIfAcrossTypes(t *testing.T) {
	rules := []config.RuleItem{
		{Name: "first", Content: "first", Regexes: []string{"x"}, Mode: addMode(), Type: config.CommentAdd},
		{Name: "second", Content: "second", SkipIf: []string{"first"}, Mode: addMode(), Type: config.CommentAdd},
	}

	a := &Analyzer{Content: "x", Event: event.Issues}
	actions, err := a.AnalyzeComments(context.Background(), rules)
	if err != nil {
		t.Fatalf("AnalyzeComments failed: %v", err)
	}
	if !reflect.DeepEqual(actions.Add, []string{"first"}) {
		t.Errorf("Expected only the first comment, got %v", actions.Add)
	}
}
