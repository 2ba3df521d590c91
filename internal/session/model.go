// Package session implements the session layer of Tally. Every request is
// identified by a server-side session row, referenced by an opaque bearer
// token carried in a cookie. Sessions start anonymous with a generated
// display name; a successful login mutates the row in place (the session id
// is stable across the anonymous-to-authenticated transition).
//
// This is the core of the service -- nearly every handler resolves the
// caller's session before doing anything else.
package session

import (
	"time"
)

// Session represents one session row. It is both the domain model and the
// JSON shape returned by the session_info endpoint (the raw resolved row;
// the hash is the caller's own token, so returning it leaks nothing).
type Session struct {
	ID        int64     `json:"id"`
	Hash      string    `json:"hash"`
	IsAuth    bool      `json:"is_auth"`
	UserID    *int64    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
