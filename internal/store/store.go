// Package store holds the credential store: a small key/value abstraction shared by
// the session, the notification feed and the REST client.
package store

import "context"

const (
	KeyAccessToken       = "access_token"
	KeyRefreshToken      = "refresh_token"
	KeyMessageList       = "list_message"
	KeyApplicationStatus = "status_application"
)

// KeyValueStore is safe for concurrent use. Writes are last-writer-wins.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
