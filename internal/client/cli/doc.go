// Package cli provides the interactive ledger command-line client.
//
// It wires configuration, the local database, the remote client, the sync
// engine and an interactive REPL. The ledger is always usable offline; when
// a session exists and the server answers, a background scheduler keeps the
// local store and the account's remote documents in sync.
//
// Key features:
//   - Register / Login / Logout (local data moves onto the account at login)
//   - Contacts and lend/borrow records, completion, soft delete, balance
//   - Manual sync, push and pull next to the periodic schedule
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
