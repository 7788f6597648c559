package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"housie/internal/database"
	"housie/internal/domain"
)

// Repository reads and writes profile rows with sqlx on the pool gorm opened.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("profile repository: %w", err)
	}
	return &Repository{db: sqlx.NewDb(sqlDB, database.DriverName(db))}, nil
}

type userRow struct {
	ID          int64           `db:"id"`
	FullName    string          `db:"full_name"`
	Email       string          `db:"email"`
	PhoneNumber sql.NullString  `db:"phone_number"`
	Role        string          `db:"user_role"`
	ServiceArea sql.NullString  `db:"service_area"`
	HourlyRate  sql.NullFloat64 `db:"hourly_rate"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:          r.ID,
		FullName:    r.FullName,
		Email:       r.Email,
		PhoneNumber: r.PhoneNumber.String,
		Role:        domain.UserRole(r.Role),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ServiceArea.Valid {
		u.ServiceArea = &r.ServiceArea.String
	}
	if r.HourlyRate.Valid {
		u.HourlyRate = &r.HourlyRate.Float64
	}
	return u
}

const userColumns = `id, full_name, email, phone_number, user_role, service_area, hourly_rate, created_at, updated_at`

func (r *Repository) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var row userRow
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

// UpdateUser applies only the non-nil fields.
func (r *Repository) UpdateUser(ctx context.Context, id int64, req UpdateProfileRequest) error {
	sets := []string{}
	args := []any{}
	if req.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, strings.TrimSpace(*req.FullName))
	}
	if req.PhoneNumber != nil {
		sets = append(sets, "phone_number = ?")
		args = append(args, strings.TrimSpace(*req.PhoneNumber))
	}
	if req.ServiceArea != nil {
		sets = append(sets, "service_area = ?")
		args = append(args, strings.TrimSpace(*req.ServiceArea))
	}
	if req.HourlyRate != nil {
		sets = append(sets, "hourly_rate = ?")
		args = append(args, *req.HourlyRate)
	}
	if len(sets) == 0 {
		return ErrNothingToUpdate
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now(), id)

	query := r.db.Rebind(`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

type cleanerRow struct {
	domain.CleanerProfile
	ServicesJSON sql.NullString `db:"services"`
}

const cleanerColumns = `user_id, bio, address, city, latitude, longitude, service_radius_km, hourly_rate, services, years_experience, created_at, updated_at`

func (r *Repository) GetCleanerProfile(ctx context.Context, userID int64) (*domain.CleanerProfile, error) {
	var row cleanerRow
	query := r.db.Rebind(`SELECT ` + cleanerColumns + ` FROM cleaner_profiles WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	p := row.CleanerProfile
	if err := decodeList(row.ServicesJSON, &p.Services); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return &p, nil
}

// UpsertCleanerProfile creates the row on first save and overwrites it after.
func (r *Repository) UpsertCleanerProfile(ctx context.Context, p *domain.CleanerProfile) error {
	services, err := encodeList(p.Services)
	if err != nil {
		return err
	}

	now := time.Now()
	query := r.db.Rebind(`
		INSERT INTO cleaner_profiles (` + cleanerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = excluded.bio,
			address = excluded.address,
			city = excluded.city,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			service_radius_km = excluded.service_radius_km,
			hourly_rate = excluded.hourly_rate,
			services = excluded.services,
			years_experience = excluded.years_experience,
			updated_at = excluded.updated_at
	`)
	_, err = r.db.ExecContext(ctx, query,
		p.UserID, p.Bio, p.Address, p.City, p.Latitude, p.Longitude, p.ServiceRadiusKM,
		p.HourlyRate, services, p.YearsExperience, now, now,
	)
	return err
}

type customerRow struct {
	domain.CustomerProfile
	PreferredJSON sql.NullString `db:"preferred_services"`
}

const customerColumns = `user_id, address, city, latitude, longitude, preferred_services, created_at, updated_at`

func (r *Repository) GetCustomerProfile(ctx context.Context, userID int64) (*domain.CustomerProfile, error) {
	var row customerRow
	query := r.db.Rebind(`SELECT ` + customerColumns + ` FROM customer_profiles WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	p := row.CustomerProfile
	if err := decodeList(row.PreferredJSON, &p.PreferredServices); err != nil {
		return nil, fmt.Errorf("decode preferred services: %w", err)
	}
	return &p, nil
}

func (r *Repository) UpsertCustomerProfile(ctx context.Context, p *domain.CustomerProfile) error {
	preferred, err := encodeList(p.PreferredServices)
	if err != nil {
		return err
	}

	now := time.Now()
	query := r.db.Rebind(`
		INSERT INTO customer_profiles (` + customerColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			address = excluded.address,
			city = excluded.city,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			preferred_services = excluded.preferred_services,
			updated_at = excluded.updated_at
	`)
	_, err = r.db.ExecContext(ctx, query,
		p.UserID, p.Address, p.City, p.Latitude, p.Longitude, preferred, now, now,
	)
	return err
}

// Lists are stored as JSON text, the same encoding gorm's json serializer uses.
func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	return string(b), err
}

func decodeList(raw sql.NullString, dst *[]string) error {
	if !raw.Valid || raw.String == "" {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal([]byte(raw.String), dst)
}
