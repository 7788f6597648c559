package onboarding

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"housie/internal/domain"
	"housie/internal/domain/catalog"
	"housie/internal/domain/profile"
	"housie/internal/pkg/validator"
)

type Searcher interface {
	SearchCleaners(ctx context.Context, q catalog.SearchQuery) (*catalog.SearchResult, error)
}

type ProfileSaver interface {
	SaveCleanerProfile(ctx context.Context, userID int64, req profile.CleanerProfileRequest) (*domain.CleanerProfile, error)
}

// CompleteResult carries what the final step produced: search results for
// the find flow, the saved profile for the pro flow.
type CompleteResult struct {
	Flow    Flow                   `json:"flow"`
	Search  *catalog.SearchResult  `json:"search,omitempty"`
	Profile *domain.CleanerProfile `json:"profile,omitempty"`
}

type Service struct {
	store    Store
	searcher Searcher
	profiles ProfileSaver
	now      func() time.Time
}

func NewService(store Store, searcher Searcher, profiles ProfileSaver) *Service {
	return &Service{store: store, searcher: searcher, profiles: profiles, now: time.Now}
}

func (s *Service) Start(ctx context.Context, flow Flow) (*Session, error) {
	if !flow.Valid() {
		return nil, ErrUnknownFlow
	}

	now := s.now()
	sess := &Session{
		ID:        uuid.New().String(),
		Flow:      flow,
		Step:      StepWelcome,
		Data:      map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// GoToStep merges data into the session and moves to the next or previous
// step. Moving forward requires the current step's keys; moving back never does.
func (s *Service) GoToStep(ctx context.Context, id string, step Step, data map[string]any) (*Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	to := sess.Flow.index(step)
	if to < 0 {
		return nil, ErrUnknownStep
	}
	from := sess.Flow.index(sess.Step)
	if to-from > 1 || from-to > 1 {
		return nil, ErrStepNotAdjacent
	}

	if sess.Data == nil {
		sess.Data = map[string]any{}
	}
	maps.Copy(sess.Data, data)

	if to > from {
		if keys := missingKeys(sess.Step, sess.Data); len(keys) > 0 {
			return nil, &MissingDataError{Step: sess.Step, Keys: keys}
		}
	}

	sess.Step = step
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Skip closes the wizard. Nothing collected so far is persisted.
func (s *Service) Skip(ctx context.Context, id string) error {
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Complete runs the flow's final action and closes the session. userID is
// zero for anonymous callers, which is only allowed in the find flow.
func (s *Service) Complete(ctx context.Context, id string, userID int64) (*CompleteResult, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Step != sess.Flow.Last() {
		return nil, ErrNotFinished
	}

	result := &CompleteResult{Flow: sess.Flow}
	switch sess.Flow {
	case FlowFind:
		result.Search, err = s.searcher.SearchCleaners(ctx, searchQuery(sess.Data))
	case FlowPro:
		if userID == 0 {
			return nil, ErrAuthRequired
		}
		req := cleanerProfile(sess.Data)
		if errs := validator.Validate(req); errs != nil {
			return nil, &InvalidDataError{Fields: errs}
		}
		result.Profile, err = s.profiles.SaveCleanerProfile(ctx, userID, req)
	default:
		return nil, ErrUnknownFlow
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("close onboarding session: %w", err)
	}
	return result, nil
}

func searchQuery(data map[string]any) catalog.SearchQuery {
	q := catalog.SearchQuery{
		Category:      stringValue(data, "service"),
		Location:      stringValue(data, "location"),
		UseMyLocation: boolValue(data, "use_my_location"),
		Text:          stringValue(data, "query"),
	}
	q.Lat = floatPtr(data, "lat")
	q.Lng = floatPtr(data, "lng")
	if r := floatPtr(data, "radius_km"); r != nil && *r > 0 {
		q.RadiusKM = *r
	}
	return q
}

func cleanerProfile(data map[string]any) profile.CleanerProfileRequest {
	req := profile.CleanerProfileRequest{
		Bio:        stringValue(data, "bio"),
		Address:    stringValue(data, "address"),
		City:       stringValue(data, "city"),
		Latitude:   floatPtr(data, "lat"),
		Longitude:  floatPtr(data, "lng"),
		HourlyRate: floatPtr(data, "hourly_rate"),
		Services:   stringsValue(data, "services"),
	}
	if v := floatPtr(data, "service_radius_km"); v != nil {
		req.ServiceRadiusKM = *v
	}
	if v := floatPtr(data, "years_experience"); v != nil {
		req.YearsExperience = int(*v)
	}
	return req
}

func stringValue(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return strings.TrimSpace(s)
}

func boolValue(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

func floatPtr(data map[string]any, key string) *float64 {
	if f, ok := data[key].(float64); ok {
		return &f
	}
	return nil
}

func stringsValue(data map[string]any, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}
