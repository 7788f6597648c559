package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"housie/internal/database/dbtest"
	"housie/internal/domain"
	"housie/internal/domain/catalog"
	"housie/internal/middleware"
	"housie/internal/realtime/realtimetest"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyBookingCreated(ctx context.Context, b *domain.Booking, customerName string) error {
	args := m.Called(ctx, b, customerName)
	return args.Error(0)
}

type failingOverrides struct{}

func (failingOverrides) GetServicePrice(context.Context, string) (*domain.ServicePrice, error) {
	return nil, errors.New("relation service_prices does not exist")
}

type fixture struct {
	db       *gorm.DB
	svc      *Service
	rec      *realtimetest.Recorder
	notifier *mockNotifier
	customer domain.User
	cleaner  domain.User
}

func newFixture(t *testing.T, notifyErr error) fixture {
	t.Helper()
	db := dbtest.Open(t)
	repo := NewBookingRepository(db)

	pricer, err := NewPricer(repo)
	require.NoError(t, err)
	taxonomy, err := catalog.LoadTaxonomy()
	require.NoError(t, err)

	notifier := &mockNotifier{}
	notifier.On("NotifyBookingCreated", mock.Anything, mock.Anything, mock.Anything).Return(notifyErr)
	rec := &realtimetest.Recorder{}

	svc := NewService(repo, pricer, taxonomy, notifier, rec)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.Local) }

	return fixture{
		db:       db,
		svc:      svc,
		rec:      rec,
		notifier: notifier,
		customer: dbtest.CreateUser(t, db, "Paul Roy", domain.RoleCustomer),
		cleaner:  dbtest.CreateUser(t, db, "Marie Tremblay", domain.RoleCleaner),
	}
}

func (f fixture) validRequest() CreateBookingRequest {
	return CreateBookingRequest{
		CleanerID:   f.cleaner.ID,
		ServiceType: "deep-cleaning",
		BookingDate: "2026-06-15",
		BookingTime: "09:30",
		Address:     "123 rue Ontario, Montréal",
		Phone:       "+1 514 555 0100",
		Notes:       "Two cats",
	}
}

func (f fixture) countBookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&domain.Booking{}).Count(&n).Error)
	return n
}

func TestService_CreateBookingInsertsOnePendingRow(t *testing.T) {
	f := newFixture(t, nil)

	b, err := f.svc.CreateBooking(context.Background(), f.customer.ID, f.validRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.countBookings(t))
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, 60+40*4.0, b.EstimatedPrice)
	assert.Equal(t, 4.0, b.EstimatedDuration)
	assert.Equal(t, []string{"bookings:INSERT"}, f.rec.Tables())
	assert.ElementsMatch(t, []int64{f.customer.ID, f.cleaner.ID}, f.rec.Changes()[0].Audience)
	f.notifier.AssertCalled(t, "NotifyBookingCreated", mock.Anything, b, "Paul Roy")
}

func TestService_CreateBookingMissingFieldInsertsNothing(t *testing.T) {
	blank := map[string]func(*CreateBookingRequest){
		"service_type": func(r *CreateBookingRequest) { r.ServiceType = "" },
		"booking_date": func(r *CreateBookingRequest) { r.BookingDate = " " },
		"booking_time": func(r *CreateBookingRequest) { r.BookingTime = "" },
		"address":      func(r *CreateBookingRequest) { r.Address = "" },
		"phone":        func(r *CreateBookingRequest) { r.Phone = "" },
		"cleaner_id":   func(r *CreateBookingRequest) { r.CleanerID = 0 },
	}
	for field, clear := range blank {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t, nil)
			req := f.validRequest()
			clear(&req)

			_, err := f.svc.CreateBooking(context.Background(), f.customer.ID, req)

			var missing *MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, field, missing.Field)
			assert.Zero(t, f.countBookings(t))
			f.notifier.AssertNotCalled(t, "NotifyBookingCreated", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateBookingReportsFirstMissingField(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.CreateBooking(context.Background(), f.customer.ID, CreateBookingRequest{BookingTime: "10:00"})

	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "service_type", missing.Field)
}

func TestService_CreateBookingRejects(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateBookingRequest)
		userID int64
		want   error
	}{
		{"bad date", func(r *CreateBookingRequest) { r.BookingDate = "15/06/2026" }, f.customer.ID, ErrInvalidDate},
		{"past date", func(r *CreateBookingRequest) { r.BookingDate = "2026-05-31" }, f.customer.ID, ErrDateInPast},
		{"bad time", func(r *CreateBookingRequest) { r.BookingTime = "9h30" }, f.customer.ID, ErrInvalidTime},
		{"bad phone", func(r *CreateBookingRequest) { r.Phone = "call me" }, f.customer.ID, ErrInvalidPhone},
		{"unknown service", func(r *CreateBookingRequest) { r.ServiceType = "astrology" }, f.customer.ID, ErrUnknownService},
		{"cleaner books", func(r *CreateBookingRequest) {}, f.cleaner.ID, ErrNotCustomer},
		{"unknown cleaner", func(r *CreateBookingRequest) { r.CleanerID = 9999 }, f.customer.ID, ErrCleanerNotFound},
		{"customer as cleaner", func(r *CreateBookingRequest) { r.CleanerID = f.customer.ID }, f.customer.ID, ErrCleanerNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.validRequest()
			tc.mutate(&req)
			_, err := f.svc.CreateBooking(ctx, tc.userID, req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Zero(t, f.countBookings(t))
}

func TestService_NotificationFailureKeepsBooking(t *testing.T) {
	f := newFixture(t, errors.New("function returned 500"))

	b, err := f.svc.CreateBooking(context.Background(), f.customer.ID, f.validRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, int64(1), f.countBookings(t))
}

func TestService_ListAndGetBookings(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	b, err := f.svc.CreateBooking(ctx, f.customer.ID, f.validRequest())
	require.NoError(t, err)

	mine, err := f.svc.ListBookings(ctx, f.customer.ID, domain.RoleCustomer)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := f.svc.ListBookings(ctx, f.cleaner.ID, "")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, b.ID, theirs[0].ID)

	got, err := f.svc.GetBooking(ctx, f.cleaner.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Two cats", got.Notes)

	stranger := dbtest.CreateUser(t, f.db, "Luc Cote", domain.RoleCustomer)
	_, err = f.svc.GetBooking(ctx, stranger.ID, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.GetBooking(ctx, f.customer.ID, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPricer_OverridesAndFallback(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	est, err := f.svc.EstimatePrice(ctx, "plumbing", 2)
	require.NoError(t, err)
	assert.Equal(t, 75+85*2.0, est.Price)
	assert.Equal(t, SourceStatic, est.Source)

	require.NoError(t, f.db.Create(&domain.ServicePrice{ServiceType: "plumbing", BasePrice: 50, HourlyRate: 100, DurationHours: 1}).Error)

	est, err = f.svc.EstimatePrice(ctx, "plumbing", 0)
	require.NoError(t, err)
	assert.Equal(t, 150.0, est.Price)
	assert.Equal(t, 1.0, est.DurationHours)
	assert.Equal(t, SourceDatabase, est.Source)

	broken, err := NewPricer(failingOverrides{})
	require.NoError(t, err)
	fallback := broken.Estimate(ctx, "plumbing", 2)
	assert.Equal(t, SourceStatic, fallback.Source)
	assert.Equal(t, 245.0, fallback.Price)

	unknown := broken.Estimate(ctx, "not-in-table", 0)
	assert.Equal(t, 40+35*2.0, unknown.Price)

	_, err = f.svc.EstimatePrice(ctx, "", 1)
	assert.ErrorIs(t, err, ErrServiceTypeNeeded)
	_, err = f.svc.EstimatePrice(ctx, "plumbing", 30)
	assert.ErrorIs(t, err, ErrInvalidHours)
}

func setupRouter(f fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(f.svc)

	r := gin.New()
	r.Use(middleware.Locale())
	v1 := r.Group("/api/v1")
	RegisterPublicRoutes(v1, h)

	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		if id, err := strconv.ParseInt(c.GetHeader("X-Test-User-ID"), 10, 64); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})
	RegisterProtectedRoutes(protected, h)
	return r
}

func doJSON(r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_Bookings(t *testing.T) {
	f := newFixture(t, nil)
	r := setupRouter(f)
	as := func(id int64) map[string]string {
		return map[string]string{"X-Test-User-ID": strconv.FormatInt(id, 10)}
	}

	req := f.validRequest()
	req.Phone = ""
	w := doJSON(r, http.MethodPost, "/api/v1/bookings", req, map[string]string{
		"X-Test-User-ID":  strconv.FormatInt(f.customer.ID, 10),
		"Accept-Language": "fr-CA",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Veuillez remplir : phone")

	w = doJSON(r, http.MethodPost, "/api/v1/bookings", f.validRequest(), as(f.customer.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"pending"`)

	w = doJSON(r, http.MethodGet, "/api/v1/bookings", nil, as(f.cleaner.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service_type":"deep-cleaning"`)

	w = doJSON(r, http.MethodGet, "/api/v1/bookings/abc", nil, as(f.cleaner.ID))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/pricing/estimate?service_type=windows&hours=3", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"estimated_price":130`)

	w = doJSON(r, http.MethodGet, "/api/v1/pricing/estimate", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
