// Package presence is the shared directory of who currently holds a live
// real-time connection, and on which socket. The authoritative copy lives in
// a process-external key-value store so that every gateway process behind the
// load balancer sees the same view; process memory is never authoritative.
package presence

import (
	"context"

	"fintrack/domain"
)

// Directory maps user identities to their current connection descriptor.
//
// Register is an unconditional upsert: a reconnecting user overwrites the
// previous entry (last-connection-wins, single session per user). Remove
// matches by connection id, not user id, so a stale disconnect cannot evict
// the entry of a newer reconnection.
type Directory interface {
	Register(ctx context.Context, entry domain.PresenceEntry) error
	Lookup(ctx context.Context, userID string) (domain.PresenceEntry, bool, error)
	Remove(ctx context.Context, connID string) (bool, error)
	ListAll(ctx context.Context) ([]domain.PresenceEntry, error)
}
