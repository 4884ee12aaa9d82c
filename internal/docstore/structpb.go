package docstore

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct converts a document to its wire form. Integer fields become
// float64 on the wire, which is exact for epoch milliseconds.
func ToStruct(d Document) (*structpb.Struct, error) {
	norm := make(map[string]any, len(d))
	for k, v := range d {
		switch n := v.(type) {
		case int64:
			norm[k] = float64(n)
		case int32:
			norm[k] = float64(n)
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			norm[k] = f
		default:
			norm[k] = v
		}
	}
	s, err := structpb.NewStruct(norm)
	if err != nil {
		return nil, fmt.Errorf("document to struct: %w", err)
	}
	return s, nil
}

// FromStruct is the inverse of ToStruct. A nil struct yields an empty document.
func FromStruct(s *structpb.Struct) Document {
	if s == nil {
		return Document{}
	}
	return Document(s.AsMap())
}
