package config

import (
	"gopkg.in/yaml.v3"

	"github.com/MaaAssistantArknights/issue-checker/internal/core/event"
)

// Direction names one half of a rule's mode: whether its add branch or its
// remove branch may fire.
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionRemove Direction = "remove"
)

// ModeSet is the canonical form of one direction: either every event type
// (All) or an explicit set of event types.
type ModeSet struct {
	All    bool
	Events map[event.Type]bool
}

// Enabled reports whether the direction is active for the given event type.
func (s ModeSet) Enabled(e event.Type) bool {
	return s.All || s.Events[e]
}

func (s *ModeSet) addEvent(e event.Type) {
	if s.Events == nil {
		s.Events = make(map[event.Type]bool)
	}
	s.Events[e] = true
}

// Mode gates a rule's participation per event type and direction.
type Mode struct {
	Add    ModeSet
	Remove ModeSet
}

// Allows reports whether the given direction is enabled for the event type.
func (m Mode) Allows(e event.Type, d Direction) bool {
	if d == DirectionAdd {
		return m.Add.Enabled(e)
	}
	return m.Remove.Enabled(e)
}

// DefaultMode returns the mode applied to rules without one when the
// configuration file itself carries no default-mode: add everywhere, plus
// remove everywhere when label syncing is on.
func DefaultMode(syncLabels bool) Mode {
	m := Mode{Add: ModeSet{All: true}}
	if syncLabels {
		m.Remove = ModeSet{All: true}
	}
	return m
}

func parseEventType(rule, token string) (event.Type, error) {
	t := event.Type(token)
	if !event.KnownTypes[t] {
		return "", errf(rule, "unknown event type %q in mode", token)
	}
	return t, nil
}

func (s *ModeSet) enable(rule string, node *yaml.Node) error {
	switch {
	case node.Kind == yaml.ScalarNode && node.Tag == "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return errf(rule, "invalid mode value: %v", err)
		}
		if b {
			s.All = true
		}
	case node.Kind == yaml.ScalarNode:
		t, err := parseEventType(rule, node.Value)
		if err != nil {
			return err
		}
		s.addEvent(t)
	case node.Kind == yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return errf(rule, "mode event list must contain strings")
			}
			t, err := parseEventType(rule, item.Value)
			if err != nil {
				return err
			}
			s.addEvent(t)
		}
	default:
		return errf(rule, "invalid mode direction value")
	}
	return nil
}

// resolveMode normalizes the accepted mode shapes into a Mode:
//   - true: both directions for every event type
//   - "issues": both directions for that event type
//   - ["issues", "push"]: both directions for each listed type
//   - {add: ..., remove: ...}: per-direction, value true or event list
//   - {issues: null, push: add}: per-event-type, value null meaning both
//     directions, or "add"/"remove" (scalar or list) naming directions
func resolveMode(rule string, node *yaml.Node) (Mode, error) {
	var m Mode

	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!bool" {
			var b bool
			if err := node.Decode(&b); err != nil {
				return m, errf(rule, "invalid mode value: %v", err)
			}
			if b {
				m.Add.All = true
				m.Remove.All = true
			}
			return m, nil
		}
		t, err := parseEventType(rule, node.Value)
		if err != nil {
			return m, err
		}
		m.Add.addEvent(t)
		m.Remove.addEvent(t)
		return m, nil

	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return m, errf(rule, "mode list must contain event type strings")
			}
			t, err := parseEventType(rule, item.Value)
			if err != nil {
				return m, err
			}
			m.Add.addEvent(t)
			m.Remove.addEvent(t)
		}
		return m, nil

	case yaml.MappingNode:
		for i := 0; i < len(node.Content)-1; i += 2 {
			key := normalizeKey(node.Content[i].Value)
			value := node.Content[i+1]

			switch key {
			case "add":
				if err := m.Add.enable(rule, value); err != nil {
					return m, err
				}
			case "remove":
				if err := m.Remove.enable(rule, value); err != nil {
					return m, err
				}
			default:
				t, err := parseEventType(rule, key)
				if err != nil {
					return m, err
				}
				if err := m.enableDirections(rule, t, value); err != nil {
					return m, err
				}
			}
		}
		return m, nil
	}

	return m, errf(rule, "invalid mode value")
}

// enableDirections handles an event-type key inside a mode mapping. A null
// value enables both directions for the event; otherwise the value names the
// direction(s) to enable.
func (m *Mode) enableDirections(rule string, t event.Type, node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		m.Add.addEvent(t)
		m.Remove.addEvent(t)
		return nil
	}

	enableOne := func(token string) error {
		switch Direction(token) {
		case DirectionAdd:
			m.Add.addEvent(t)
		case DirectionRemove:
			m.Remove.addEvent(t)
		default:
			return errf(rule, "unknown mode direction %q for event %q", token, t)
		}
		return nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		return enableOne(node.Value)
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return errf(rule, "mode direction list for event %q must contain strings", t)
			}
			if err := enableOne(item.Value); err != nil {
				return err
			}
		}
		return nil
	}
	return errf(rule, "invalid mode value for event %q", t)
}
