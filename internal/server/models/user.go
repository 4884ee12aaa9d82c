// Package models holds the server's persisted account types. Synced ledger
// data is not modelled here; it is stored as docstore documents.
package models

import "time"

// User is a registered account. The verifier is derived client-side from the
// password and salt; the server never sees the password.
type User struct {
	ID        string
	UserName  string
	Salt      []byte
	Verifier  []byte
	CreatedAt time.Time
}
