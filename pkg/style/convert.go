package style

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vango-dev/webdsl/internal/errors"
)

// Pairs is an ordered mapping written as a flat key, value list:
//
//	style.Pairs{"color", "red", "font-size", "2em"}
type Pairs []any

// Declarations converts a declaration mapping to an ordered list.
func Declarations(v any) ([]Declaration, error) {
	switch m := v.(type) {
	case Pairs:
		return pairsToDecls(m)
	case []Declaration:
		return append([]Declaration(nil), m...), nil
	case map[string]string:
		out := make([]Declaration, 0, len(m))
		for _, k := range sortedKeys(m) {
			out = append(out, Declaration{Property: k, Value: m[k]})
		}
		return out, nil
	case map[string]any:
		out := make([]Declaration, 0, len(m))
		for _, k := range sortedKeys(m) {
			out = append(out, Declaration{Property: k, Value: coerce(m[k])})
		}
		return out, nil
	case *orderedmap.OrderedMap[string, string]:
		if m == nil {
			return nil, errors.Newf("E101", "nil ordered map")
		}
		out := make([]Declaration, 0, m.Len())
		for p := m.Oldest(); p != nil; p = p.Next() {
			out = append(out, Declaration{Property: p.Key, Value: p.Value})
		}
		return out, nil
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, errors.Newf("E101", "nil ordered map")
		}
		out := make([]Declaration, 0, m.Len())
		for p := m.Oldest(); p != nil; p = p.Next() {
			out = append(out, Declaration{Property: p.Key, Value: coerce(p.Value)})
		}
		return out, nil
	default:
		if m, ok := stringMap(v); ok {
			return Declarations(m)
		}
		return nil, errors.Newf("E101", "got %T", v)
	}
}

// stringMap copies any map keyed by a string kind into a map[string]any.
func stringMap(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func pairsToDecls(p Pairs) ([]Declaration, error) {
	if len(p)%2 != 0 {
		return nil, errors.Newf("E101", "Pairs has odd length %d", len(p))
	}
	out := make([]Declaration, 0, len(p)/2)
	for i := 0; i < len(p); i += 2 {
		k, ok := p[i].(string)
		if !ok {
			return nil, errors.Newf("E101", "Pairs key %d is %T, want string", i/2, p[i])
		}
		out = append(out, Declaration{Property: k, Value: coerce(p[i+1])})
	}
	return out, nil
}

// coerce converts a declaration value to its CSS text. Whole floats print
// without a fraction; anything else uses its default format.
func coerce(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Stages converts a keyframe stage mapping to an ordered list.
func Stages(v any) ([]Stage, error) {
	type entry struct {
		label string
		value any
	}
	var entries []entry

	switch m := v.(type) {
	case Pairs:
		if len(m)%2 != 0 {
			return nil, errors.Newf("E101", "Pairs has odd length %d", len(m))
		}
		for i := 0; i < len(m); i += 2 {
			label, ok := m[i].(string)
			if !ok {
				return nil, errors.Newf("E101", "stage label %d is %T, want string", i/2, m[i])
			}
			entries = append(entries, entry{label, m[i+1]})
		}
	case []Stage:
		return append([]Stage(nil), m...), nil
	case map[string]any:
		for _, k := range stageOrder(m) {
			entries = append(entries, entry{k, m[k]})
		}
	case map[string]map[string]string:
		for _, k := range stageOrder(m) {
			entries = append(entries, entry{k, m[k]})
		}
	case map[string]Pairs:
		for _, k := range stageOrder(m) {
			entries = append(entries, entry{k, m[k]})
		}
	case *orderedmap.OrderedMap[string, any]:
		if m == nil {
			return nil, errors.Newf("E101", "nil ordered map")
		}
		for p := m.Oldest(); p != nil; p = p.Next() {
			entries = append(entries, entry{p.Key, p.Value})
		}
	default:
		sm, ok := stringMap(v)
		if !ok {
			return nil, errors.Newf("E101", "stages: got %T", v)
		}
		for _, k := range stageOrder(sm) {
			entries = append(entries, entry{k, sm[k]})
		}
	}

	out := make([]Stage, 0, len(entries))
	for _, e := range entries {
		list, err := Declarations(e.value)
		if err != nil {
			return nil, annotate(err, "stage %q", e.label)
		}
		out = append(out, Stage{Label: e.label, Declarations: list})
	}
	return out, nil
}

// StagePosition returns the percentage a stage label stands for. "from" is 0
// and "to" is 100. For selector lists the first entry counts. ok is false for
// labels that are not positions.
func StagePosition(label string) (float64, bool) {
	first := strings.TrimSpace(strings.SplitN(label, ",", 2)[0])
	switch strings.ToLower(first) {
	case "from":
		return 0, true
	case "to":
		return 100, true
	}
	if !strings.HasSuffix(first, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(first, "%"), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func stageOrder[V any](m map[string]V) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool {
		pi, oki := StagePosition(keys[i])
		pj, okj := StagePosition(keys[j])
		switch {
		case oki && okj:
			return pi < pj
		case oki != okj:
			return oki
		default:
			return false
		}
	})
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
