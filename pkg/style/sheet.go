// Package style records CSS rules and keyframe animations in call order.
//
// Rules for the same selector merge: later declarations overwrite earlier
// ones with the same property while keeping their original position.
// Keyframes merge the same way, stage by stage.
package style

import (
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vango-dev/webdsl/internal/errors"
)

// ErrTypeMismatch matches errors for declarations that are not a mapping.
var ErrTypeMismatch = errors.ErrTypeMismatch

// Declaration is a single property: value pair.
type Declaration struct {
	Property string
	Value    string
}

// Rule is a selector with its declarations.
type Rule struct {
	Selector     string
	Declarations []Declaration
}

// Stage is one keyframe stage such as "from", "50%" or "to".
type Stage struct {
	Label        string
	Declarations []Declaration
}

// Animation is a named @keyframes block.
type Animation struct {
	Name   string
	Stages []Stage
}

type decls = orderedmap.OrderedMap[string, string]

// Sheet is an ordered style recorder. The zero value is not usable; call New.
type Sheet struct {
	rules  *orderedmap.OrderedMap[string, *decls]
	frames *orderedmap.OrderedMap[string, *orderedmap.OrderedMap[string, *decls]]
}

// New returns an empty Sheet.
func New() *Sheet {
	s := &Sheet{}
	s.Reset()
	return s
}

// Reset discards all recorded rules and keyframes.
func (s *Sheet) Reset() {
	s.rules = orderedmap.New[string, *decls]()
	s.frames = orderedmap.New[string, *orderedmap.OrderedMap[string, *decls]]()
}

// Rule merges declarations into selector's rule. d must be a mapping: Pairs,
// []Declaration, an ordered map or any map keyed by strings. Plain maps apply
// their keys in sorted order. Values are converted to their string form.
func (s *Sheet) Rule(selector string, d any) error {
	if selector == "" {
		return errors.Newf("E102", "empty selector")
	}
	list, err := Declarations(d)
	if err != nil {
		return annotate(err, "rule %q", selector)
	}
	s.mergeRule(selector, list)
	return nil
}

func (s *Sheet) mergeRule(selector string, list []Declaration) {
	target, ok := s.rules.Get(selector)
	if !ok {
		target = orderedmap.New[string, string]()
		s.rules.Set(selector, target)
	}
	for _, d := range list {
		target.Set(d.Property, d.Value)
	}
}

// Keyframes merges stages into the named animation. stages maps stage labels
// to declaration mappings (see Rule). Plain maps are applied in stage order:
// from, then percentages ascending, then to.
func (s *Sheet) Keyframes(name string, stages any) error {
	if name == "" {
		return errors.Newf("E102", "empty keyframes name")
	}
	list, err := Stages(stages)
	if err != nil {
		return annotate(err, "keyframes %q", name)
	}
	s.mergeAnimation(name, list)
	return nil
}

func (s *Sheet) mergeAnimation(name string, stages []Stage) {
	anim, ok := s.frames.Get(name)
	if !ok {
		anim = orderedmap.New[string, *decls]()
		s.frames.Set(name, anim)
	}
	for _, st := range stages {
		target, ok := anim.Get(st.Label)
		if !ok {
			target = orderedmap.New[string, string]()
			anim.Set(st.Label, target)
		}
		for _, d := range st.Declarations {
			target.Set(d.Property, d.Value)
		}
	}
}

// Merge applies every rule and animation of other to s, in other's order.
func (s *Sheet) Merge(other *Sheet) {
	if other == nil {
		return
	}
	for _, r := range other.Rules() {
		s.mergeRule(r.Selector, r.Declarations)
	}
	for _, a := range other.Animations() {
		s.mergeAnimation(a.Name, a.Stages)
	}
}

// Rules returns a snapshot of the recorded rules in first-seen order.
func (s *Sheet) Rules() []Rule {
	out := make([]Rule, 0, s.rules.Len())
	for p := s.rules.Oldest(); p != nil; p = p.Next() {
		out = append(out, Rule{Selector: p.Key, Declarations: snapshot(p.Value)})
	}
	return out
}

// Animations returns a snapshot of the recorded animations in first-seen order.
func (s *Sheet) Animations() []Animation {
	out := make([]Animation, 0, s.frames.Len())
	for p := s.frames.Oldest(); p != nil; p = p.Next() {
		a := Animation{Name: p.Key}
		for st := p.Value.Oldest(); st != nil; st = st.Next() {
			a.Stages = append(a.Stages, Stage{Label: st.Key, Declarations: snapshot(st.Value)})
		}
		out = append(out, a)
	}
	return out
}

// Len returns the number of rules plus the number of animations.
func (s *Sheet) Len() int {
	return s.rules.Len() + s.frames.Len()
}

// Empty reports whether nothing has been recorded.
func (s *Sheet) Empty() bool {
	return s.Len() == 0
}

func snapshot(m *decls) []Declaration {
	out := make([]Declaration, 0, m.Len())
	for p := m.Oldest(); p != nil; p = p.Next() {
		out = append(out, Declaration{Property: p.Key, Value: p.Value})
	}
	return out
}

func annotate(err error, format string, args ...any) error {
	if e, ok := err.(*errors.Error); ok {
		prefix := fmt.Sprintf(format, args...)
		if e.Detail != "" {
			e.Detail = prefix + ": " + e.Detail
		} else {
			e.Detail = prefix
		}
	}
	return err
}
