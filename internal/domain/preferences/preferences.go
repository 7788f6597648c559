// Package preferences stores per-user display settings: theme, color
// intensity and interface locale.
package preferences

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housie/internal/domain"
	"housie/internal/pkg/i18n"
)

var (
	ErrInvalidTheme     = errors.New("theme must be pop_art or matte")
	ErrInvalidIntensity = errors.New("intensity_theme must be soft or vivid")
	ErrInvalidLocale    = errors.New("locale must be en or fr")
)

type UpdateRequest struct {
	Theme          *domain.Theme     `json:"theme"`
	IntensityTheme *domain.Intensity `json:"intensity_theme"`
	Locale         *string           `json:"locale"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns nil, nil when the user has never saved preferences.
func (r *Repository) Get(ctx context.Context, userID int64) (*domain.UserPreferences, error) {
	var p domain.UserPreferences
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) Upsert(ctx context.Context, p *domain.UserPreferences) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"theme", "intensity_theme", "locale", "updated_at"}),
		}).
		Create(p).Error
}

type Service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get falls back to the defaults for users without a stored row.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.UserPreferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		def := domain.DefaultPreferences(userID)
		return &def, nil
	}
	return p, nil
}

// Update applies the non-nil fields over the current values.
func (s *Service) Update(ctx context.Context, userID int64, req UpdateRequest) (*domain.UserPreferences, error) {
	if req.Theme != nil && *req.Theme != domain.ThemePopArt && *req.Theme != domain.ThemeMatte {
		return nil, ErrInvalidTheme
	}
	if req.IntensityTheme != nil && *req.IntensityTheme != domain.IntensitySoft && *req.IntensityTheme != domain.IntensityVivid {
		return nil, ErrInvalidIntensity
	}
	if req.Locale != nil && !i18n.IsSupported(*req.Locale) {
		return nil, ErrInvalidLocale
	}

	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Theme != nil {
		p.Theme = *req.Theme
	}
	if req.IntensityTheme != nil {
		p.IntensityTheme = *req.IntensityTheme
	}
	if req.Locale != nil {
		p.Locale = *req.Locale
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
