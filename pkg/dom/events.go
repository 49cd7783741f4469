package dom

import (
	"strings"

	"github.com/vango-dev/webdsl/internal/errors"
)

// eventNames is the set of attribute keys that bind callbacks.
var eventNames = map[string]bool{
	"onclick":      true,
	"onsubmit":     true,
	"oninput":      true,
	"onchange":     true,
	"onmouseover":  true,
	"onload":       true,
	"ondblclick":   true,
	"onkeydown":    true,
	"onkeyup":      true,
	"onfocus":      true,
	"onblur":       true,
	"onmouseout":   true,
	"onmouseenter": true,
	"onmouseleave": true,
}

// IsEvent reports whether key names a recognized event attribute.
// The comparison is case-insensitive.
func IsEvent(key string) bool {
	return eventNames[strings.ToLower(key)]
}

// Callback is an event handler bound to an element. Name is the identifier
// the rendered markup invokes, as in onclick="name()".
type Callback interface {
	Name() string
}

// Sourcer is a Callback that can report its own source text.
type Sourcer interface {
	Callback
	Source() (string, error)
}

// SourceResolver recovers the verbatim source text of a callback.
type SourceResolver func(Callback) (string, error)

// ResolveSource is the default SourceResolver. It asks callbacks that
// implement Sourcer for their source and fails for everything else.
func ResolveSource(cb Callback) (string, error) {
	if s, ok := cb.(Sourcer); ok {
		src, err := s.Source()
		if err != nil {
			return "", errors.FromError(err, "E103").WithDetailf("callback %q", cb.Name())
		}
		if strings.TrimSpace(src) == "" {
			return "", errors.Newf("E103", "callback %q has empty source", cb.Name())
		}
		return src, nil
	}
	return "", errors.Newf("E103", "callback %q (%T) does not expose its source", cb.Name(), cb)
}

// funcCallback is a callback authored with its source alongside.
type funcCallback struct {
	name   string
	source string
}

func (f *funcCallback) Name() string { return f.name }

func (f *funcCallback) Source() (string, error) { return f.source, nil }

// Func returns a callback named name whose client-side source is source.
// Each call returns a distinct callback, so binding the same value to
// several elements emits its source once.
//
//	greet := dom.Func("greet", "def greet(ev):\n    alert('hi')")
//	b.Create("button", "Hi", dom.A("onclick", greet))
func Func(name, source string) Callback {
	return &funcCallback{name: name, source: source}
}
