package dto

import (
	"time"

	"github.com/google/uuid"

	"sharespace/internal/domain/user"
)

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	AvatarURL *string   `json:"avatar_url"`
	Role      string    `json:"role"`

	City             *string `json:"city"`
	Budget           *int    `json:"budget"`
	Cleanliness      *int    `json:"cleanliness"`
	NoiseLevel       *int    `json:"noise_level"`
	SleepSchedule    *string `json:"sleep_schedule"`
	Smoking          *string `json:"smoking"`
	SocialLevel      *string `json:"social_level"`
	HasPets          *bool   `json:"has_pets"`
	GenderPreference *string `json:"gender_preference"`
	WorkSchedule     *string `json:"work_schedule"`
	Occupation       *string `json:"occupation"`
	MBTIType         *string `json:"mbti_type"`
	GuestFrequency   *string `json:"guest_frequency"`

	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
		Role:      u.Profile.Role,

		City:             u.Profile.City,
		Budget:           u.Profile.Budget,
		Cleanliness:      u.Profile.Cleanliness,
		NoiseLevel:       u.Profile.NoiseLevel,
		SleepSchedule:    u.Profile.SleepSchedule,
		Smoking:          u.Profile.Smoking,
		SocialLevel:      u.Profile.SocialLevel,
		HasPets:          u.Profile.HasPets,
		GenderPreference: u.Profile.GenderPreference,
		WorkSchedule:     u.Profile.WorkSchedule,
		Occupation:       u.Profile.Occupation,
		MBTIType:         u.Profile.MBTIType,
		GuestFrequency:   u.Profile.GuestFrequency,

		CreatedAt: u.CreatedAt,
	}
}
