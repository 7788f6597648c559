package onboarding

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"housie/internal/database/dbtest"
	"housie/internal/domain"
	"housie/internal/domain/catalog"
	"housie/internal/domain/geo"
	"housie/internal/domain/profile"
	"housie/internal/middleware"
	"housie/internal/realtime/realtimetest"
)

type fixture struct {
	db      *gorm.DB
	store   *MemoryStore
	svc     *Service
	cleaner domain.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.Open(t)

	geocoder, err := geo.NewStatic()
	require.NoError(t, err)
	taxonomy, err := catalog.LoadTaxonomy()
	require.NoError(t, err)

	profileRepo, err := profile.NewRepository(db)
	require.NoError(t, err)
	profiles := profile.NewService(profileRepo, geocoder, taxonomy, &realtimetest.Recorder{})
	search := catalog.NewService(catalog.NewCleanerRepository(db), taxonomy, geocoder, geo.Point{Lat: 45.5017, Lng: -73.5673}, 25)

	store := NewMemoryStore(time.Hour)
	return fixture{
		db:      db,
		store:   store,
		svc:     NewService(store, search, profiles),
		cleaner: dbtest.CreateUser(t, db, "Marie Tremblay", domain.RoleCleaner),
	}
}

// rowCounts snapshots every table so tests can prove nothing was written.
func rowCounts(t *testing.T, db *gorm.DB) map[string]int64 {
	t.Helper()
	out := map[string]int64{}
	for _, m := range domain.Models() {
		var n int64
		require.NoError(t, db.Model(m).Count(&n).Error)
		stmt := &gorm.Statement{DB: db}
		require.NoError(t, stmt.Parse(m))
		out[stmt.Schema.Table] = n
	}
	return out
}

func walk(t *testing.T, svc *Service, id string, steps []Step, data []map[string]any) *Session {
	t.Helper()
	var sess *Session
	var err error
	for i, step := range steps {
		sess, err = svc.GoToStep(context.Background(), id, step, data[i])
		require.NoError(t, err, "step %s", step)
	}
	return sess
}

func TestService_SkipWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := rowCounts(t, f.db)

	sess, err := f.svc.Start(ctx, FlowPro)
	require.NoError(t, err)
	walk(t, f.svc, sess.ID,
		[]Step{StepAccountCreation, StepServiceOfferings, StepPricingInput},
		[]map[string]any{nil, {"full_name": "Marie"}, {"services": []any{"plumbing"}}},
	)

	require.NoError(t, f.svc.Skip(ctx, sess.ID))

	_, err = f.svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, f.store.Len())
	assert.Equal(t, before, rowCounts(t, f.db))

	assert.ErrorIs(t, f.svc.Skip(ctx, sess.ID), ErrSessionNotFound)
}

func TestService_StepRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Start(ctx, "other")
	assert.ErrorIs(t, err, ErrUnknownFlow)

	sess, err := f.svc.Start(ctx, FlowFind)
	require.NoError(t, err)
	assert.Equal(t, StepWelcome, sess.Step)

	_, err = f.svc.GoToStep(ctx, sess.ID, StepLocationInput, nil)
	assert.ErrorIs(t, err, ErrStepNotAdjacent)

	_, err = f.svc.GoToStep(ctx, sess.ID, StepProPreview, nil)
	assert.ErrorIs(t, err, ErrUnknownStep)

	_, err = f.svc.GoToStep(ctx, sess.ID, StepServiceSelection, nil)
	require.NoError(t, err)

	_, err = f.svc.GoToStep(ctx, sess.ID, StepLocationInput, map[string]any{"service": ""})
	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, StepServiceSelection, missing.Step)
	assert.Equal(t, []string{"service"}, missing.Keys)

	got, err := f.svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, StepServiceSelection, got.Step, "failed move must not advance")

	// going back never needs data
	got, err = f.svc.GoToStep(ctx, sess.ID, StepWelcome, nil)
	require.NoError(t, err)
	assert.Equal(t, StepWelcome, got.Step)

	_, err = f.svc.Complete(ctx, sess.ID, 0)
	assert.ErrorIs(t, err, ErrNotFinished)
}

func TestService_CompleteFindFlowSearches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	profiles := f.svc.profiles.(*profile.Service)
	_, err := profiles.SaveCleanerProfile(ctx, f.cleaner.ID, profile.CleanerProfileRequest{
		City:     "Laval",
		Services: []string{"plumbing"},
	})
	require.NoError(t, err)

	sess, err := f.svc.Start(ctx, FlowFind)
	require.NoError(t, err)
	walk(t, f.svc, sess.ID,
		[]Step{StepServiceSelection, StepLocationInput, StepTimingInput, StepSearchResults},
		[]map[string]any{nil, {"service": "minor-repairs"}, {"location": "Montréal"}, {"timing": "this_week"}},
	)

	result, err := f.svc.Complete(ctx, sess.ID, 0)
	require.NoError(t, err)
	require.NotNil(t, result.Search)
	require.Len(t, result.Search.Cleaners, 1)
	assert.Equal(t, f.cleaner.ID, result.Search.Cleaners[0].User.ID)

	_, err = f.svc.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_CompleteProFlowSavesProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sess, err := f.svc.Start(ctx, FlowPro)
	require.NoError(t, err)
	walk(t, f.svc, sess.ID,
		[]Step{StepAccountCreation, StepServiceOfferings, StepPricingInput, StepServiceLocation, StepProPreview},
		[]map[string]any{
			nil,
			{"full_name": "Marie Tremblay"},
			{"services": []any{"deep-cleaning", "windows"}},
			{"hourly_rate": 38.0},
			{"city": "Québec", "bio": "Spotless or free"},
		},
	)

	_, err = f.svc.Complete(ctx, sess.ID, 0)
	assert.ErrorIs(t, err, ErrAuthRequired)

	result, err := f.svc.Complete(ctx, sess.ID, f.cleaner.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Profile)
	assert.Equal(t, "Québec", result.Profile.City)
	assert.Equal(t, []string{"deep-cleaning", "windows"}, result.Profile.Services)
	require.NotNil(t, result.Profile.HourlyRate)
	assert.Equal(t, 38.0, *result.Profile.HourlyRate)
	assert.True(t, result.Profile.HasLocation())
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(context.Background(), &Session{ID: "a", Flow: FlowFind, Step: StepWelcome}))
	_, err := store.Get(context.Background(), "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_CapsLiveSessions(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	store.maxSessions = 2
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "a", Flow: FlowFind, Step: StepWelcome}))
	require.NoError(t, store.Save(ctx, &Session{ID: "b", Flow: FlowFind, Step: StepWelcome}))
	assert.ErrorIs(t, store.Save(ctx, &Session{ID: "c", Flow: FlowFind, Step: StepWelcome}), ErrTooManySessions)

	// existing sessions still advance when the store is full
	require.NoError(t, store.Save(ctx, &Session{ID: "a", Flow: FlowFind, Step: StepServiceSelection}))

	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, &Session{ID: "c", Flow: FlowFind, Step: StepWelcome}))
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_SweepDropsExpired(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Session{ID: "old", Flow: FlowPro, Step: StepWelcome}))
	now = now.Add(45 * time.Second)
	require.NoError(t, store.Save(ctx, &Session{ID: "new", Flow: FlowPro, Step: StepWelcome}))
	assert.Equal(t, 2, store.Len())

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())
	_, err := store.Get(ctx, "new")
	assert.NoError(t, err)

	now = now.Add(time.Hour)
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- store.Run(runCtx, 5*time.Millisecond) }()
	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestRedisStore_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	sess := &Session{ID: "abc", Flow: FlowPro, Step: StepPricingInput, Data: map[string]any{"hourly_rate": 30.0}}
	require.NoError(t, store.Save(ctx, sess))
	assert.Equal(t, time.Minute, mr.TTL("onboarding:abc"))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, StepPricingInput, got.Step)
	assert.Equal(t, 30.0, got.Data["hourly_rate"])

	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHandler_Wizard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newFixture(t)

	r := gin.New()
	r.Use(middleware.Locale())
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})
	RegisterRoutes(v1, NewHandler(f.svc))

	do := func(method, path string, body any) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/onboarding", map[string]any{"flow": "find"})
	require.Equal(t, http.StatusCreated, w.Code)
	var env struct {
		Data Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	id := env.Data.ID

	w = do(http.MethodPost, "/api/v1/onboarding/"+id+"/step", map[string]any{"step": "service_selection"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodPost, "/api/v1/onboarding/"+id+"/step", map[string]any{"step": "location_input"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"service":"required"`)

	w = do(http.MethodPost, "/api/v1/onboarding/"+id+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(http.MethodPost, "/api/v1/onboarding/"+id+"/skip", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(http.MethodGet, "/api/v1/onboarding/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(http.MethodPost, "/api/v1/onboarding", map[string]any{"flow": "wander"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
