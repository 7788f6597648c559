package catalog

import (
	"context"

	"gorm.io/gorm"

	"housie/internal/domain"
)

type CleanerRepository struct {
	db *gorm.DB
}

func NewCleanerRepository(db *gorm.DB) *CleanerRepository {
	return &CleanerRepository{db: db}
}

// ListCleaners returns every cleaner with their extension row, if any.
// Search filters in memory, so this is deliberately the full set.
func (r *CleanerRepository) ListCleaners(ctx context.Context) ([]domain.Cleaner, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).
		Where("user_role = ?", domain.RoleCleaner).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []domain.Cleaner{}, nil
	}

	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	var profiles []domain.CleanerProfile
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	byUser := make(map[int64]*domain.CleanerProfile, len(profiles))
	for i := range profiles {
		byUser[profiles[i].UserID] = &profiles[i]
	}

	out := make([]domain.Cleaner, len(users))
	for i, u := range users {
		out[i] = domain.Cleaner{User: u, Profile: byUser[u.ID]}
	}
	return out, nil
}
