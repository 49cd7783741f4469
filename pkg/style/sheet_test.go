package style

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type property string

func TestRuleMergeOverwritesInPlace(t *testing.T) {
	s := New()
	if err := s.Rule("h1", Pairs{"color", "red", "font-size", "2em"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Rule("h1", Pairs{"color", "blue", "margin", 0}); err != nil {
		t.Fatal(err)
	}

	want := []Rule{{
		Selector: "h1",
		Declarations: []Declaration{
			{"color", "blue"},
			{"font-size", "2em"},
			{"margin", "0"},
		},
	}}
	if diff := cmp.Diff(want, s.Rules()); diff != "" {
		t.Errorf("Rules() mismatch (-want +got):\n%s", diff)
	}
}

func TestRuleSelectorOrder(t *testing.T) {
	s := New()
	_ = s.Rule("body", map[string]string{"margin": "0"})
	_ = s.Rule(".container", map[string]string{"padding": "1em"})
	_ = s.Rule("body", map[string]string{"padding": "0"})

	rules := s.Rules()
	if len(rules) != 2 || rules[0].Selector != "body" || rules[1].Selector != ".container" {
		t.Fatalf("Rules() = %+v", rules)
	}
	if len(rules[0].Declarations) != 2 {
		t.Errorf("body declarations = %+v", rules[0].Declarations)
	}
}

func TestRuleAcceptedMappings(t *testing.T) {
	om := orderedmap.New[string, string]()
	om.Set("z-index", "2")
	om.Set("color", "red")

	omAny := orderedmap.New[string, any]()
	omAny.Set("opacity", 0.5)

	tests := []struct {
		name  string
		decls any
		want  []Declaration
	}{
		{
			name:  "map sorted",
			decls: map[string]any{"width": 10, "color": "red", "bold": true},
			want:  []Declaration{{"bold", "true"}, {"color", "red"}, {"width", "10"}},
		},
		{
			name:  "ordered map keeps insertion order",
			decls: om,
			want:  []Declaration{{"z-index", "2"}, {"color", "red"}},
		},
		{
			name:  "ordered map of any",
			decls: omAny,
			want:  []Declaration{{"opacity", "0.5"}},
		},
		{
			name:  "declaration list",
			decls: []Declaration{{"a", "1"}},
			want:  []Declaration{{"a", "1"}},
		},
		{
			name:  "whole floats",
			decls: Pairs{"line-height", 2.0},
			want:  []Declaration{{"line-height", "2"}},
		},
		{
			name:  "map of int",
			decls: map[string]int{"z-index": 10, "order": 2},
			want:  []Declaration{{"order", "2"}, {"z-index", "10"}},
		},
		{
			name:  "named string key type",
			decls: map[property]string{"color": "red"},
			want:  []Declaration{{"color", "red"}},
		},
		{
			name:  "small and unsigned ints",
			decls: map[string]any{"opacity": int8(1), "flex": uint64(3)},
			want:  []Declaration{{"flex", "3"}, {"opacity", "1"}},
		},
		{
			name:  "composite value uses default format",
			decls: map[string]any{"color": []int{1}},
			want:  []Declaration{{"color", "[1]"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.Rule("x", tt.decls); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, s.Rules()[0].Declarations); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRuleTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		decls any
	}{
		{"string", "color: red"},
		{"nil", nil},
		{"slice", []string{"color", "red"}},
		{"odd pairs", Pairs{"color"}},
		{"non-string key", Pairs{1, "red"}},
		{"int keyed map", map[int]string{1: "red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Rule("h1", tt.decls)
			if !errors.Is(err, ErrTypeMismatch) {
				t.Fatalf("err = %v, want ErrTypeMismatch", err)
			}
			if !s.Empty() {
				t.Error("failed rule must not be recorded")
			}
		})
	}
}

func TestKeyframesMergeByStage(t *testing.T) {
	s := New()
	if err := s.Keyframes("fade", Pairs{
		"from", Pairs{"opacity", 0},
		"to", Pairs{"opacity", 1},
	}); err != nil {
		t.Fatal(err)
	}
	if err := s.Keyframes("fade", Pairs{
		"to", Pairs{"opacity", 0.9, "color", "red"},
		"50%", Pairs{"opacity", 0.5},
	}); err != nil {
		t.Fatal(err)
	}

	want := []Animation{{
		Name: "fade",
		Stages: []Stage{
			{Label: "from", Declarations: []Declaration{{"opacity", "0"}}},
			{Label: "to", Declarations: []Declaration{{"opacity", "0.9"}, {"color", "red"}}},
			{Label: "50%", Declarations: []Declaration{{"opacity", "0.5"}}},
		},
	}}
	if diff := cmp.Diff(want, s.Animations()); diff != "" {
		t.Errorf("Animations() mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyframesMapStageOrder(t *testing.T) {
	s := New()
	err := s.Keyframes("pulse", map[string]map[string]string{
		"to":   {"opacity": "1"},
		"100%": {"color": "red"},
		"from": {"opacity": "0"},
		"25%":  {"opacity": "0.25"},
		"5%":   {"opacity": "0.05"},
	})
	if err != nil {
		t.Fatal(err)
	}

	var labels []string
	for _, st := range s.Animations()[0].Stages {
		labels = append(labels, st.Label)
	}
	want := []string{"from", "5%", "25%", "100%", "to"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("stage order mismatch (-want +got):\n%s", diff)
	}
}

func TestKeyframesTypeMismatch(t *testing.T) {
	s := New()
	if err := s.Keyframes("x", "from {}"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("err = %v", err)
	}
	if err := s.Keyframes("x", Pairs{"from", "opacity: 0"}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("stage err = %v", err)
	}
	if err := s.Keyframes("x", map[string]int{"from": 0}); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("scalar stage err = %v", err)
	}
	if !s.Empty() {
		t.Error("failed keyframes must not be recorded")
	}
}

func TestKeyframesAcceptedMappings(t *testing.T) {
	tests := []struct {
		name   string
		stages any
		want   []Stage
	}{
		{
			name: "nested any maps",
			stages: map[string]map[string]any{
				"to":   {"opacity": 1},
				"from": {"opacity": 0},
			},
			want: []Stage{
				{Label: "from", Declarations: []Declaration{{"opacity", "0"}}},
				{Label: "to", Declarations: []Declaration{{"opacity", "1"}}},
			},
		},
		{
			name: "stage values of int maps",
			stages: map[string]any{
				"50%": map[string]int{"z-index": 2},
				"0%":  map[string]int{"z-index": 1},
			},
			want: []Stage{
				{Label: "0%", Declarations: []Declaration{{"z-index", "1"}}},
				{Label: "50%", Declarations: []Declaration{{"z-index", "2"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			if err := s.Keyframes("k", tt.stages); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, s.Animations()[0].Stages); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResetAndMerge(t *testing.T) {
	a := New()
	_ = a.Rule("h1", Pairs{"color", "red"})
	_ = a.Keyframes("spin", Pairs{"to", Pairs{"transform", "rotate(360deg)"}})

	b := New()
	_ = b.Rule("p", Pairs{"margin", 0})
	_ = b.Rule("h1", Pairs{"color", "blue"})

	a.Merge(b)
	rules := a.Rules()
	if len(rules) != 2 || rules[0].Declarations[0].Value != "blue" || rules[1].Selector != "p" {
		t.Fatalf("merged rules = %+v", rules)
	}
	if a.Len() != 3 {
		t.Errorf("Len() = %d, want 3", a.Len())
	}

	a.Reset()
	if !a.Empty() || len(a.Animations()) != 0 {
		t.Error("Reset left state behind")
	}
}

func TestStagePosition(t *testing.T) {
	tests := []struct {
		label string
		want  float64
		ok    bool
	}{
		{"from", 0, true},
		{"TO", 100, true},
		{"12.5%", 12.5, true},
		{"0%, 100%", 0, true},
		{"middle", 0, false},
	}
	for _, tt := range tests {
		got, ok := StagePosition(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("StagePosition(%q) = %v, %v; want %v, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}
