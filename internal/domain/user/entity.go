package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleSeeker = "Seeker"
	RoleLister = "Lister"
)

type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Profile Profile
}

// Profile is the fixed lifestyle attribute bundle used both for the
// profile endpoints and for compatibility feature assembly. Pointer
// fields are attributes a user may leave unset; they stay nil all the
// way into the candidate row and are zero-filled only inside the
// scoring transform.
type Profile struct {
	Role             string
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

	// Carried on the profile but never part of the trained column set.
	GuestFrequency *string
}

func (p Profile) IsSeeker() bool {
	return p.Role == RoleSeeker
}
