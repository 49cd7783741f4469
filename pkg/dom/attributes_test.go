package dom

import (
	"errors"
	"testing"
)

func attrKeys(attrs []Attr) []string {
	keys := make([]string, len(attrs))
	for i, a := range attrs {
		keys[i] = a.Key
	}
	return keys
}

func TestNormalizeRenamesReservedKeys(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"class_", "class"},
		{"for_", "for"},
		{"type_", "type"},
		{"className", "class"},
		{"htmlFor", "for"},
		{"id", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			attrs, _, err := Normalize([]Attr{A(tt.in, "v")}, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(attrs) != 1 || attrs[0].Key != tt.want {
				t.Errorf("Normalize(%q) = %v, want key %q", tt.in, attrs, tt.want)
			}
		})
	}
}

func TestNormalizeKeepsPositionAndOverwritesInPlace(t *testing.T) {
	attrs, _, err := Normalize([]Attr{
		A("id", "a"),
		A("class_", "first"),
		A("title", "t"),
		A("className", "second"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	keys := attrKeys(attrs)
	want := []string{"id", "class", "title"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys = %v, want %v", keys, want)
		}
	}
	if attrs[1].Value != "second" {
		t.Errorf("class = %v, want second", attrs[1].Value)
	}
}

func TestNormalizePartitionsEvents(t *testing.T) {
	cb := Func("go", "def go(ev): pass")
	var registered []Callback

	attrs, events, err := Normalize([]Attr{
		A("onClick", cb),
		A("onload", "brython()"),
		A("id", "btn"),
	}, func(c Callback) error {
		registered = append(registered, c)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(events) != 1 || events[0].Event != "onclick" || events[0].Callback != cb {
		t.Fatalf("events = %+v", events)
	}
	// Event key with a plain value stays structural.
	if keys := attrKeys(attrs); len(keys) != 2 || keys[0] != "onload" || keys[1] != "id" {
		t.Fatalf("attrs = %v", attrs)
	}
	if len(registered) != 1 || registered[0] != cb {
		t.Errorf("registered = %v", registered)
	}
}

func TestNormalizePropagatesRegistrationError(t *testing.T) {
	stop := errors.New("stop")
	_, _, err := Normalize([]Attr{A("onclick", Func("f", "x"))}, func(Callback) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v", err)
	}
}

type mapCallback map[string]string

func (mapCallback) Name() string { return "m" }

func TestNormalizeRejectsNonComparableCallback(t *testing.T) {
	_, _, err := Normalize([]Attr{A("onclick", mapCallback{})}, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestIsEvent(t *testing.T) {
	for _, key := range []string{"onclick", "ONSUBMIT", "onMouseLeave", "onload"} {
		if !IsEvent(key) {
			t.Errorf("IsEvent(%q) = false", key)
		}
	}
	for _, key := range []string{"onhover", "click", "data-onclick"} {
		if IsEvent(key) {
			t.Errorf("IsEvent(%q) = true", key)
		}
	}
}

func TestAttrsSorted(t *testing.T) {
	keys := attrKeys(Attrs{"b": 1, "a": 2, "c": 3}.List())
	if keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("keys = %v", keys)
	}
}

type opaqueCallback struct{ name string }

func (o opaqueCallback) Name() string { return o.name }

func TestResolveSource(t *testing.T) {
	src, err := ResolveSource(Func("f", "def f(ev): pass"))
	if err != nil || src != "def f(ev): pass" {
		t.Fatalf("ResolveSource = %q, %v", src, err)
	}

	if _, err := ResolveSource(opaqueCallback{"g"}); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("err = %v, want ErrSourceUnavailable", err)
	}
	if _, err := ResolveSource(Func("h", "  ")); !errors.Is(err, ErrSourceUnavailable) {
		t.Errorf("empty source err = %v, want ErrSourceUnavailable", err)
	}
}
