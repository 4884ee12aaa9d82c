package docstore

import (
	"encoding/json"
	"reflect"
)

// Merge applies incoming onto stored the way a set-with-merge does: keys in
// incoming replace stored keys, keys absent from incoming are kept.
//
// When no field changes and the incoming updatedAt is not newer than the
// stored one, stored is returned as-is and changed is false, so repeating
// the same write never moves the document. Otherwise updatedAt becomes the
// largest of now, the incoming value and the stored value. createdAt is
// never rewritten once present.
func Merge(stored, incoming Document, now int64) (Document, bool) {
	if stored == nil {
		out := incoming.Clone()
		out[FieldUpdatedAt] = max(now, incoming.UpdatedAt())
		if out.Millis(FieldCreatedAt, 0) == 0 {
			out[FieldCreatedAt] = out[FieldUpdatedAt]
		}
		return out, true
	}

	out := stored.Clone()
	changed := false
	for k, v := range incoming {
		if k == FieldUpdatedAt || k == FieldCreatedAt && stored.Millis(FieldCreatedAt, 0) > 0 {
			continue
		}
		if old, ok := stored[k]; ok && sameValue(old, v) {
			continue
		}
		out[k] = v
		changed = true
	}
	if !changed && incoming.UpdatedAt() <= stored.UpdatedAt() {
		return stored, false
	}

	out[FieldUpdatedAt] = max(now, incoming.UpdatedAt(), stored.UpdatedAt())
	return out, true
}

// sameValue compares decoded field values, treating numbers of different Go
// types as equal when they hold the same value.
func sameValue(a, b any) bool {
	if na, ok := number(a); ok {
		if nb, ok := number(b); ok {
			return na == nb
		}
	}
	return reflect.DeepEqual(a, b)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
