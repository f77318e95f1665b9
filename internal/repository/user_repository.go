package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"sharespace/internal/database"
	"sharespace/internal/domain/user"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, u user.User) error
	ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error)
}

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `id, username, email, password_hash,
	COALESCE(first_name, ''), COALESCE(last_name, ''), avatar_url,
	role, city, budget, cleanliness, noise_level, sleep_schedule, smoking,
	social_level, has_pets, gender_preference, work_schedule, occupation,
	mbti_type, guest_frequency, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, u user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (
			id, username, email, password_hash, first_name, last_name, avatar_url,
			role, city, budget, cleanliness, noise_level, sleep_schedule, smoking,
			social_level, has_pets, gender_preference, work_schedule, occupation,
			mbti_type, guest_frequency
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.AvatarURL,
		u.Profile.Role, u.Profile.City, u.Profile.Budget, u.Profile.Cleanliness,
		u.Profile.NoiseLevel, u.Profile.SleepSchedule, u.Profile.Smoking,
		u.Profile.SocialLevel, u.Profile.HasPets, u.Profile.GenderPreference,
		u.Profile.WorkSchedule, u.Profile.Occupation, u.Profile.MBTIType,
		u.Profile.GuestFrequency,
	)
	return err
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *PostgresUserRepository) exists(ctx context.Context, query, arg string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return exists, nil
}

func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, u user.User) error {
	n, err := r.db.Exec(ctx,
		`UPDATE users SET
			first_name = $2, last_name = $3, email = $4, avatar_url = $5,
			city = $6, budget = $7, cleanliness = $8, noise_level = $9,
			sleep_schedule = $10, smoking = $11, social_level = $12,
			has_pets = $13, gender_preference = $14, work_schedule = $15,
			occupation = $16, mbti_type = $17, guest_frequency = $18,
			updated_at = now()
		WHERE id = $1`,
		id, u.FirstName, u.LastName, u.Email, u.AvatarURL,
		u.Profile.City, u.Profile.Budget, u.Profile.Cleanliness, u.Profile.NoiseLevel,
		u.Profile.SleepSchedule, u.Profile.Smoking, u.Profile.SocialLevel,
		u.Profile.HasPets, u.Profile.GenderPreference, u.Profile.WorkSchedule,
		u.Profile.Occupation, u.Profile.MBTIType, u.Profile.GuestFrequency,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepository) ProfilesByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]user.Profile, error) {
	out := make(map[uuid.UUID]user.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, role, city, budget, cleanliness, noise_level, sleep_schedule,
			smoking, social_level, has_pets, gender_preference, work_schedule,
			occupation, mbti_type, guest_frequency
		 FROM users WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var p user.Profile
		if err := rows.Scan(
			&id, &p.Role, &p.City, &p.Budget, &p.Cleanliness, &p.NoiseLevel,
			&p.SleepSchedule, &p.Smoking, &p.SocialLevel, &p.HasPets,
			&p.GenderPreference, &p.WorkSchedule, &p.Occupation, &p.MBTIType,
			&p.GuestFrequency,
		); err != nil {
			return nil, err
		}
		out[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type userRow interface {
	Scan(dest ...any) error
}

func scanUser(row userRow) (user.User, error) {
	var u user.User
	if err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.AvatarURL,
		&u.Profile.Role, &u.Profile.City, &u.Profile.Budget,
		&u.Profile.Cleanliness, &u.Profile.NoiseLevel, &u.Profile.SleepSchedule,
		&u.Profile.Smoking, &u.Profile.SocialLevel, &u.Profile.HasPets,
		&u.Profile.GenderPreference, &u.Profile.WorkSchedule, &u.Profile.Occupation,
		&u.Profile.MBTIType, &u.Profile.GuestFrequency,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
