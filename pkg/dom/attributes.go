package dom

import (
	"reflect"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vango-dev/webdsl/internal/errors"
)

// renames maps reserved-word spellings to their markup attribute names.
var renames = map[string]string{
	"class_":    "class",
	"for_":      "for",
	"type_":     "type",
	"className": "class",
	"htmlFor":   "for",
}

// Normalize renames reserved keys and splits attrs into structural attributes
// and event bindings, both in first-seen key order. A repeated key overwrites
// the earlier value in place. reg is called once per binding, in order.
func Normalize(attrs []Attr, reg func(Callback) error) ([]Attr, []EventBinding, error) {
	values := orderedmap.New[string, any](len(attrs))
	for _, a := range attrs {
		if a.IsEmpty() {
			continue
		}
		key := a.Key
		if to, ok := renames[key]; ok {
			key = to
		}
		if err := checkValue(key, a.Value); err != nil {
			return nil, nil, err
		}
		if IsEvent(key) {
			if _, ok := a.Value.(Callback); ok {
				key = strings.ToLower(key)
			}
		}
		values.Set(key, a.Value)
	}

	var (
		out    = make([]Attr, 0, values.Len())
		events []EventBinding
	)
	for pair := values.Oldest(); pair != nil; pair = pair.Next() {
		cb, isCallback := pair.Value.(Callback)
		if isCallback && IsEvent(pair.Key) {
			events = append(events, EventBinding{Event: pair.Key, Callback: cb})
			if reg != nil {
				if err := reg(cb); err != nil {
					return nil, nil, err
				}
			}
			continue
		}
		out = append(out, Attr{Key: pair.Key, Value: pair.Value})
	}
	return out, events, nil
}

func checkValue(key string, v any) error {
	if v == nil {
		return nil
	}
	if cb, ok := v.(Callback); ok {
		if !IsEvent(key) {
			return errors.Newf("E102", "callback %q bound to %q, which is not an event attribute", cb.Name(), key)
		}
		if !reflect.TypeOf(cb).Comparable() {
			return errors.Newf("E102", "callback %q for %q has non-comparable type %T", cb.Name(), key, cb)
		}
		return nil
	}
	if reflect.TypeOf(v).Kind() == reflect.Func {
		return errors.Newf("E102", "%q: plain func values cannot be bound, wrap the handler with dom.Func", key).
			WithSuggestion("Use dom.Func(name, source) so the handler source can be emitted into the page.")
	}
	return nil
}

// Identity attributes

// ID sets the id attribute.
func ID(id string) Attr { return A("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return A("class", strings.Join(classes, " ")) }

// StyleAttr sets the inline style attribute.
func StyleAttr(style string) Attr { return A("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return A("data-"+key, value) }

// Links and forms

// Href sets the href attribute.
func Href(url string) Attr { return A("href", url) }

// Src sets the src attribute.
func Src(url string) Attr { return A("src", url) }

// Type sets the type attribute.
func Type(t string) Attr { return A("type", t) }

// Name sets the name attribute.
func Name(name string) Attr { return A("name", name) }

// Placeholder sets the placeholder attribute.
func Placeholder(text string) Attr { return A("placeholder", text) }

// Boolean attributes

// Disabled sets the disabled attribute.
func Disabled(v bool) Attr { return A("disabled", v) }

// Required sets the required attribute.
func Required(v bool) Attr { return A("required", v) }

// Checked sets the checked attribute.
func Checked(v bool) Attr { return A("checked", v) }

// Events

// OnClick binds a click handler.
func OnClick(cb Callback) Attr { return A("onclick", cb) }

// OnSubmit binds a submit handler.
func OnSubmit(cb Callback) Attr { return A("onsubmit", cb) }

// OnInput binds an input handler.
func OnInput(cb Callback) Attr { return A("oninput", cb) }

// OnChange binds a change handler.
func OnChange(cb Callback) Attr { return A("onchange", cb) }

// OnLoad binds a load handler.
func OnLoad(cb Callback) Attr { return A("onload", cb) }
