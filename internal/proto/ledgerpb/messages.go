package ledgerpb

import (
	"encoding/base64"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Message keys.
//
//	Register          {username, salt, verifier}           -> {id}
//	GetSalt           {username}                           -> {salt}
//	Login             {username, verifier}                 -> {accessToken, refreshToken}
//	RefreshToken      {refreshToken}                       -> {accessToken, refreshToken}
//	GetDocument       {owner, collection, id}              -> document
//	SetMergeDocument  {owner, collection, id, fields}      -> {path, updatedAt, changed}
//	ScanCollection    {owner, collection}                  -> {documents: [document...]}
//
// Byte fields (salt, verifier) travel base64 encoded.
const (
	KeyID           = "id"
	KeyUsername     = "username"
	KeySalt         = "salt"
	KeyVerifier     = "verifier"
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyOwner        = "owner"
	KeyCollection   = "collection"
	KeyFields       = "fields"
	KeyPath         = "path"
	KeyUpdatedAt    = "updatedAt"
	KeyChanged      = "changed"
	KeyDocuments    = "documents"
)

// NewMessage builds a Struct from plain Go values. []byte values are base64
// encoded and *structpb.Struct values are nested as is.
func NewMessage(fields map[string]any) (*structpb.Struct, error) {
	out := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
	for k, v := range fields {
		var (
			val *structpb.Value
			err error
		)
		switch x := v.(type) {
		case []byte:
			val = structpb.NewStringValue(base64.StdEncoding.EncodeToString(x))
		case *structpb.Struct:
			val = structpb.NewStructValue(x)
		case []*structpb.Struct:
			list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(x))}
			for _, s := range x {
				list.Values = append(list.Values, structpb.NewStructValue(s))
			}
			val = structpb.NewListValue(list)
		case int64:
			val = structpb.NewNumberValue(float64(x))
		default:
			val, err = structpb.NewValue(v)
		}
		if err != nil {
			return nil, fmt.Errorf("message field %s: %w", k, err)
		}
		out.Fields[k] = val
	}
	return out, nil
}

// String returns a string field or "".
func String(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// Int64 returns a numeric field truncated to int64.
func Int64(s *structpb.Struct, key string) int64 {
	return int64(s.GetFields()[key].GetNumberValue())
}

// Bool returns a boolean field or false.
func Bool(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

// Bytes decodes a base64 field.
func Bytes(s *structpb.Struct, key string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(String(s, key))
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", key, err)
	}
	return b, nil
}

// Struct returns a nested struct field or nil.
func Struct(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

// Structs returns the struct elements of a list field, skipping anything else.
func Structs(s *structpb.Struct, key string) []*structpb.Struct {
	var out []*structpb.Struct
	for _, v := range s.GetFields()[key].GetListValue().GetValues() {
		if st := v.GetStructValue(); st != nil {
			out = append(out, st)
		}
	}
	return out
}
