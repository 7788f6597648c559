package profile

import (
	"context"
	"errors"
	"log"
	"strings"

	"housie/internal/domain"
	"housie/internal/domain/geo"
	"housie/internal/realtime"
)

// CategoryChecker reports whether a service slug exists.
type CategoryChecker interface {
	Has(slug string) bool
}

type Service struct {
	repo       *Repository
	geocoder   geo.Geocoder
	categories CategoryChecker
	publisher  realtime.Publisher
}

func NewService(repo *Repository, geocoder geo.Geocoder, categories CategoryChecker, publisher realtime.Publisher) *Service {
	return &Service{repo: repo, geocoder: geocoder, categories: categories, publisher: publisher}
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*ProfileView, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{User: user}
	switch user.Role {
	case domain.RoleCleaner:
		view.Cleaner, err = s.repo.GetCleanerProfile(ctx, userID)
	case domain.RoleCustomer:
		view.Customer, err = s.repo.GetCustomerProfile(ctx, userID)
	}
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	return view, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.repo.UpdateUser(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.repo.GetUser(ctx, userID)
}

func (s *Service) GetCleanerProfile(ctx context.Context, userID int64) (*domain.CleanerProfile, error) {
	return s.repo.GetCleanerProfile(ctx, userID)
}

func (s *Service) GetCustomerProfile(ctx context.Context, userID int64) (*domain.CustomerProfile, error) {
	return s.repo.GetCustomerProfile(ctx, userID)
}

// GetCleaner is the public view of a provider.
func (s *Service) GetCleaner(ctx context.Context, cleanerID int64) (*domain.Cleaner, error) {
	user, err := s.repo.GetUser(ctx, cleanerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrCleanerNotFound
		}
		return nil, err
	}
	if user.Role != domain.RoleCleaner {
		return nil, ErrCleanerNotFound
	}

	p, err := s.repo.GetCleanerProfile(ctx, cleanerID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	// contact details stay private until a conversation exists
	user.Email = ""
	user.PhoneNumber = ""
	return &domain.Cleaner{User: *user, Profile: p}, nil
}

// SaveCleanerProfile creates or replaces the caller's cleaner row. The
// address is geocoded unless coordinates are given; a geocoding failure
// leaves the coordinates unset and the save still succeeds.
func (s *Service) SaveCleanerProfile(ctx context.Context, userID int64, req CleanerProfileRequest) (*domain.CleanerProfile, error) {
	if err := s.requireRole(ctx, userID, domain.RoleCleaner); err != nil {
		return nil, err
	}
	if err := s.checkServices(req.Services); err != nil {
		return nil, err
	}

	lat, lng, err := s.locate(ctx, req.Latitude, req.Longitude, req.Address, req.City)
	if err != nil {
		return nil, err
	}

	_, existsErr := s.repo.GetCleanerProfile(ctx, userID)
	created := errors.Is(existsErr, ErrProfileNotFound)

	p := &domain.CleanerProfile{
		UserID:          userID,
		Bio:             strings.TrimSpace(req.Bio),
		Address:         strings.TrimSpace(req.Address),
		City:            strings.TrimSpace(req.City),
		Latitude:        lat,
		Longitude:       lng,
		ServiceRadiusKM: req.ServiceRadiusKM,
		HourlyRate:      req.HourlyRate,
		Services:        dedupe(req.Services),
		YearsExperience: req.YearsExperience,
	}
	if err := s.repo.UpsertCleanerProfile(ctx, p); err != nil {
		return nil, err
	}

	saved, err := s.repo.GetCleanerProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	event := realtime.EventUpdate
	if created {
		event = realtime.EventInsert
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableCleanerProfiles, event, saved)); err != nil {
			log.Printf("profile: publish failed user_id=%d err=%v", userID, err)
		}
	}
	return saved, nil
}

func (s *Service) SaveCustomerProfile(ctx context.Context, userID int64, req CustomerProfileRequest) (*domain.CustomerProfile, error) {
	if err := s.requireRole(ctx, userID, domain.RoleCustomer); err != nil {
		return nil, err
	}
	if err := s.checkServices(req.PreferredServices); err != nil {
		return nil, err
	}

	lat, lng, err := s.locate(ctx, req.Latitude, req.Longitude, req.Address, req.City)
	if err != nil {
		return nil, err
	}

	p := &domain.CustomerProfile{
		UserID:            userID,
		Address:           strings.TrimSpace(req.Address),
		City:              strings.TrimSpace(req.City),
		Latitude:          lat,
		Longitude:         lng,
		PreferredServices: dedupe(req.PreferredServices),
	}
	if err := s.repo.UpsertCustomerProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetCustomerProfile(ctx, userID)
}

func (s *Service) requireRole(ctx context.Context, userID int64, role domain.UserRole) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role != role {
		return ErrRoleMismatch
	}
	return nil
}

func (s *Service) checkServices(slugs []string) error {
	if s.categories == nil {
		return nil
	}
	for _, slug := range slugs {
		if !s.categories.Has(slug) {
			return ErrUnknownService
		}
	}
	return nil
}

func (s *Service) locate(ctx context.Context, lat, lng *float64, address, city string) (*float64, *float64, error) {
	if lat != nil || lng != nil {
		if lat == nil || lng == nil || !(geo.Point{Lat: *lat, Lng: *lng}).Valid() {
			return nil, nil, ErrInvalidLocation
		}
		return lat, lng, nil
	}

	var parts []string
	for _, p := range []string{address, city} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 || s.geocoder == nil {
		return nil, nil, nil
	}

	loc, err := s.geocoder.Geocode(ctx, strings.Join(parts, ", "))
	if err != nil {
		log.Printf("profile: geocode failed provider=%s err=%v", s.geocoder.Name(), err)
		return nil, nil, nil
	}
	return &loc.Lat, &loc.Lng, nil
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
