package presence

import (
	"context"
	"errors"
	"time"

	"housie/internal/domain"
)

var (
	ErrNoUserIDs      = errors.New("user_ids is required")
	ErrTooManyUserIDs = errors.New("too many user_ids")
)

// Store keeps liveness. A user counts as online only while their last
// heartbeat is younger than the store's TTL.
type Store interface {
	// MarkOnline refreshes the heartbeat and reports whether the user was
	// offline, or expired, before the call.
	MarkOnline(ctx context.Context, userID int64, now time.Time) (bool, error)
	MarkOffline(ctx context.Context, userID int64, now time.Time) error
	Snapshot(ctx context.Context, userIDs []int64, now time.Time) (map[int64]domain.UserPresence, error)
	// SweepStale flips users whose heartbeat expired to offline and returns them.
	SweepStale(ctx context.Context, now time.Time) ([]int64, error)
}

// ConnectionCounter is implemented by stores shared between instances. Each
// instance attaches once per user with open sockets; the user stays online
// until the last attachment is released.
type ConnectionCounter interface {
	Attach(ctx context.Context, userID int64) (int64, error)
	Detach(ctx context.Context, userID int64) (int64, error)
}

func offline(userID int64, lastSeen time.Time) domain.UserPresence {
	return domain.UserPresence{UserID: userID, IsOnline: false, LastSeen: lastSeen}
}
