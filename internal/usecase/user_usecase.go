package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"sharespace/internal/domain/user"
	"sharespace/internal/repository"
)

type ProfileUpdateInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	AvatarURL *string

	City             *string
	Budget           *int
	Cleanliness      *int
	NoiseLevel       *int
	SleepSchedule    *string
	Smoking          *string
	SocialLevel      *string
	HasPets          *bool
	GenderPreference *string
	WorkSchedule     *string
	Occupation       *string
	MBTIType         *string
	GuestFrequency   *string
}

type UserUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (user.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdateInput) (user.User, error)
}

type Users struct {
	users repository.UserRepository
}

func NewUserUsecase(users repository.UserRepository) *Users {
	return &Users{users: users}
}

func (s *Users) GetProfile(ctx context.Context, userID uuid.UUID) (user.User, error) {
	if userID == uuid.Nil {
		return user.User{}, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}
	return sanitizeUser(u), nil
}

// UpdateProfile applies a partial update: nil input fields keep their
// stored value. Role is deliberately immutable after registration.
func (s *Users) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdateInput) (user.User, error) {
	if userID == uuid.Nil {
		return user.User{}, ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return user.User{}, ErrInvalidInput
		}
		u.Email = email
	}
	if in.AvatarURL != nil {
		u.AvatarURL = in.AvatarURL
	}

	if in.City != nil {
		u.Profile.City = in.City
	}
	if in.Budget != nil {
		if *in.Budget < 0 {
			return user.User{}, ErrInvalidInput
		}
		u.Profile.Budget = in.Budget
	}
	if in.Cleanliness != nil {
		if *in.Cleanliness < 1 || *in.Cleanliness > 5 {
			return user.User{}, ErrInvalidInput
		}
		u.Profile.Cleanliness = in.Cleanliness
	}
	if in.NoiseLevel != nil {
		if *in.NoiseLevel < 1 || *in.NoiseLevel > 5 {
			return user.User{}, ErrInvalidInput
		}
		u.Profile.NoiseLevel = in.NoiseLevel
	}
	if in.SleepSchedule != nil {
		u.Profile.SleepSchedule = in.SleepSchedule
	}
	if in.Smoking != nil {
		u.Profile.Smoking = in.Smoking
	}
	if in.SocialLevel != nil {
		u.Profile.SocialLevel = in.SocialLevel
	}
	if in.HasPets != nil {
		u.Profile.HasPets = in.HasPets
	}
	if in.GenderPreference != nil {
		u.Profile.GenderPreference = in.GenderPreference
	}
	if in.WorkSchedule != nil {
		u.Profile.WorkSchedule = in.WorkSchedule
	}
	if in.Occupation != nil {
		u.Profile.Occupation = in.Occupation
	}
	if in.MBTIType != nil {
		code := strings.ToUpper(strings.TrimSpace(*in.MBTIType))
		if code != "" && len(code) != 4 {
			return user.User{}, ErrInvalidInput
		}
		u.Profile.MBTIType = &code
	}
	if in.GuestFrequency != nil {
		u.Profile.GuestFrequency = in.GuestFrequency
	}

	if err := s.users.UpdateProfile(ctx, userID, u); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return user.User{}, ErrNotFound
		}
		return user.User{}, ErrInternal
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, ErrInternal
	}
	return sanitizeUser(updated), nil
}
