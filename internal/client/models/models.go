// Package models defines the ledger entities kept in the local store and
// synchronized with the remote document store.
//
// Every entity carries a client-generated id, a tombstone flag and two
// epoch-millisecond timestamps. CreatedAt is set once; UpdatedAt decides
// which side wins when local and remote disagree.
package models

import "time"

// Kind names a synchronizable entity type.
type Kind string

const (
	KindTypes    Kind = "types"
	KindContacts Kind = "contacts"
	KindRecords  Kind = "records"
	KindUsers    Kind = "users"
)

// AllKinds lists every kind in push order: categories and contacts before
// the records that reference them.
var AllKinds = []Kind{KindUsers, KindTypes, KindContacts, KindRecords}

// ParseKind accepts a kind name as typed by a user.
func ParseKind(s string) (Kind, bool) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Syncable is implemented by every entity the sync engine moves.
type Syncable interface {
	GetID() string
	Deleted() bool
	GetCreatedAt() int64
	GetUpdatedAt() int64
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
