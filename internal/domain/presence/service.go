package presence

import (
	"context"
	"log"
	"time"

	"housie/internal/domain"
	"housie/internal/metrics"
	"housie/internal/realtime"
)

const maxSnapshotIDs = 200

// Service implements realtime.PresenceTracker and the presence endpoints.
type Service struct {
	store     Store
	publisher realtime.Publisher
	now       func() time.Time
}

func NewService(store Store, publisher realtime.Publisher) *Service {
	return &Service{store: store, publisher: publisher, now: func() time.Time { return time.Now().UTC() }}
}

// Connect attaches the user when the store is shared between instances, then
// marks them online.
func (s *Service) Connect(ctx context.Context, userID int64) error {
	if c, ok := s.store.(ConnectionCounter); ok {
		if _, err := c.Attach(ctx, userID); err != nil {
			return err
		}
	}
	return s.markOnline(ctx, userID)
}

// Heartbeat refreshes liveness. A user the sweeper flipped offline is
// broadcast online again.
func (s *Service) Heartbeat(ctx context.Context, userID int64) error {
	return s.markOnline(ctx, userID)
}

func (s *Service) markOnline(ctx context.Context, userID int64) error {
	now := s.now()
	cameOnline, err := s.store.MarkOnline(ctx, userID, now)
	if err != nil {
		return err
	}
	if cameOnline {
		s.publish(ctx, domain.UserPresence{UserID: userID, IsOnline: true, LastSeen: now})
	}
	return nil
}

// Disconnect releases this instance's hold on the user. The user stays
// online while another instance still has sockets for them.
func (s *Service) Disconnect(ctx context.Context, userID int64) error {
	if c, ok := s.store.(ConnectionCounter); ok {
		remaining, err := c.Detach(ctx, userID)
		if err != nil {
			return err
		}
		if remaining > 0 {
			return nil
		}
	}
	return s.Offline(ctx, userID)
}

// Offline marks the user offline whatever connections remain open.
func (s *Service) Offline(ctx context.Context, userID int64) error {
	now := s.now()
	if err := s.store.MarkOffline(ctx, userID, now); err != nil {
		return err
	}
	s.publish(ctx, offline(userID, now))
	return nil
}

func (s *Service) GetPresence(ctx context.Context, userIDs []int64) (map[int64]domain.UserPresence, error) {
	if len(userIDs) == 0 {
		return nil, ErrNoUserIDs
	}
	if len(userIDs) > maxSnapshotIDs {
		return nil, ErrTooManyUserIDs
	}
	return s.store.Snapshot(ctx, userIDs, s.now())
}

// IsUserOnline is a lookup on a snapshot; unknown users are offline.
func IsUserOnline(snapshot map[int64]domain.UserPresence, userID int64) bool {
	p, ok := snapshot[userID]
	return ok && p.IsOnline
}

// Sweep flips expired users offline and broadcasts each transition.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	now := s.now()
	ids, err := s.store.SweepStale(ctx, now)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.publish(ctx, offline(id, now))
	}
	metrics.PresenceSwept.Add(float64(len(ids)))
	return len(ids), nil
}

// RunSweeper sweeps every interval until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("presence: sweep failed err=%v", err)
				continue
			}
			if n > 0 {
				log.Printf("presence: swept stale users count=%d", n)
			}
		}
	}
}

func (s *Service) publish(ctx context.Context, p domain.UserPresence) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableUserPresence, realtime.EventUpdate, p)); err != nil {
		log.Printf("presence: publish failed user_id=%d err=%v", p.UserID, err)
	}
}
