// Package merge folds per-page extraction results into one document value.
package merge

import (
	"strings"

	"docsight/internal/jsonval"
)

// Cutsets for joining prose fragments across a page boundary: the first
// fragment loses trailing sentence punctuation and whitespace, the second
// loses leading whitespace.
const (
	trailingCutset = ".,!? \t\r\n"
	leadingCutset  = " \t\r\n"
)

// Merge combines two JSON values into one. It is order-sensitive and
// recursive, dispatching on the runtime kinds of the two operands:
//
//   - object x object: key-wise recursive merge; existing keys keep their
//     position, new keys are appended in first-seen order
//   - array x array: concatenation, duplicates preserved
//   - string x string: prose join (see joinFragments)
//   - anything else: incoming replaces existing
//
// Neither input is mutated; shared subtrees are never written through.
func Merge(existing, incoming jsonval.Value) jsonval.Value {
	switch {
	case existing.Kind == jsonval.Object && incoming.Kind == jsonval.Object:
		merged := jsonval.Value{
			Kind: jsonval.Object,
			Obj:  append([]jsonval.Member(nil), existing.Obj...),
		}
		for _, m := range incoming.Obj {
			if cur, ok := merged.Get(m.Key); ok {
				merged.Set(m.Key, Merge(cur, m.Value))
			} else {
				merged.Set(m.Key, m.Value)
			}
		}
		return merged

	case existing.Kind == jsonval.Array && incoming.Kind == jsonval.Array:
		out := make([]jsonval.Value, 0, len(existing.Arr)+len(incoming.Arr))
		out = append(out, existing.Arr...)
		out = append(out, incoming.Arr...)
		return jsonval.Value{Kind: jsonval.Array, Arr: out}

	case existing.Kind == jsonval.String && incoming.Kind == jsonval.String:
		return jsonval.NewString(joinFragments(existing.Str, incoming.Str))

	default:
		// Type mismatch or scalar: last writer wins.
		return incoming
	}
}

// Fold reduces the per-page values of one document left-to-right, seeded
// with an empty object. Callers with a single-page document should use its
// value directly instead of folding.
func Fold(pages []jsonval.Value) jsonval.Value {
	acc := jsonval.NewObject()
	for _, p := range pages {
		acc = Merge(acc, p)
	}
	return acc
}

func joinFragments(a, b string) string {
	return strings.TrimRight(a, trailingCutset) + " " + strings.TrimLeft(b, leadingCutset)
}
