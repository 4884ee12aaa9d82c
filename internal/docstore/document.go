// Package docstore is the remote side of sync: owner-partitioned
// collections of field-map documents addressed as owner/collection/id.
package docstore

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Well-known field names present on every synced document.
const (
	FieldID        = "id"
	FieldDeleted   = "deleted"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is a field map as stored remotely. Values are whatever a JSON
// decoder or structpb produces, so accessors never assume a concrete type.
type Document map[string]any

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// String returns the field as a string or def if absent or not textual.
func (d Document) String(key, def string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return def
}

// Bool returns the field as a bool. Numbers are true when non-zero and
// strings are parsed with strconv.ParseBool.
func (d Document) Bool(key string, def bool) bool {
	switch v := d[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int64:
		return v != 0
	case int:
		return v != 0
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

// Int64 returns the field as an integer or def when it cannot be read as one.
func (d Document) Int64(key string, def int64) int64 {
	switch v := d[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return def
		}
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return int64(f)
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

// Millis reads an epoch-millisecond timestamp. Zero and negative values are
// treated as missing.
func (d Document) Millis(key string, def int64) int64 {
	if n := d.Int64(key, 0); n > 0 {
		return n
	}
	return def
}

// ID is shorthand for String(FieldID, "").
func (d Document) ID() string {
	return d.String(FieldID, "")
}

// UpdatedAt is shorthand for Millis(FieldUpdatedAt, 0).
func (d Document) UpdatedAt() int64 {
	return d.Millis(FieldUpdatedAt, 0)
}
