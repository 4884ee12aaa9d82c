// Package client talks to the ledger server.
//
// GRPCClient covers the account calls (Register, GetSalt, Login, Ping) and
// implements docstore.Store over the Ledger service, so the sync engine can
// use the remote partition exactly like an in-process store.
//
// An interceptor attaches the access token from a TokenStore to every call.
// When the server answers Unauthenticated with "token expired" the client
// rotates the tokens once and retries the call. Concurrent callers share a
// single refresh.
//
// gRPC status codes are mapped to sentinel errors (ErrUnavailable,
// ErrUnauthorized, common.ErrorNotFound) that callers match with errors.Is.
package client
