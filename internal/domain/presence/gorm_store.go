package presence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housie/internal/domain"
)

// GormStore keeps presence in the user_presence table. Rows marked online
// whose last_seen is older than ttl read as offline until the sweeper
// rewrites them.
type GormStore struct {
	db  *gorm.DB
	ttl time.Duration
}

func NewGormStore(db *gorm.DB, ttl time.Duration) *GormStore {
	return &GormStore{db: db, ttl: ttl}
}

func (s *GormStore) MarkOnline(ctx context.Context, userID int64, now time.Time) (bool, error) {
	var cameOnline bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.UserPresence
		err := tx.Where("user_id = ?", userID).Take(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			cameOnline = true
		case err != nil:
			return err
		default:
			cameOnline = !cur.IsOnline || now.Sub(cur.LastSeen) > s.ttl
		}
		return upsert(tx, domain.UserPresence{UserID: userID, IsOnline: true, LastSeen: now})
	})
	if err != nil {
		return false, err
	}
	return cameOnline, nil
}

func (s *GormStore) MarkOffline(ctx context.Context, userID int64, now time.Time) error {
	return upsert(s.db.WithContext(ctx), offline(userID, now))
}

func upsert(db *gorm.DB, p domain.UserPresence) error {
	return db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_online", "last_seen"}),
		}).
		Create(&p).Error
}

func (s *GormStore) Snapshot(ctx context.Context, userIDs []int64, now time.Time) (map[int64]domain.UserPresence, error) {
	var rows []domain.UserPresence
	if err := s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[int64]domain.UserPresence, len(userIDs))
	for _, id := range userIDs {
		out[id] = offline(id, time.Time{})
	}
	for _, r := range rows {
		if r.IsOnline && now.Sub(r.LastSeen) > s.ttl {
			r.IsOnline = false
		}
		out[r.UserID] = r
	}
	return out, nil
}

func (s *GormStore) SweepStale(ctx context.Context, now time.Time) ([]int64, error) {
	cutoff := now.Add(-s.ttl)

	var ids []int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.UserPresence{}).
			Where("is_online = ? AND last_seen < ?", true, cutoff).
			Pluck("user_id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&domain.UserPresence{}).
			Where("user_id IN ? AND is_online = ?", ids, true).
			Update("is_online", false).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
