package seeder

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/crypto/bcrypt"

	"sharespace/internal/database"
	"sharespace/internal/domain/user"
)

// Every seeded account shares this password so manual testing stays
// simple.
const seedPassword = "password123"

var seedCities = []string{"Ahmedabad", "Mumbai", "Delhi", "Bangalore"}

type userRow struct {
	Username string
	Email    string
	Role     string

	City           string
	Budget         int
	Cleanliness    int
	NoiseLevel     int
	SleepSchedule  string
	Smoking        string
	SocialLevel    string
	HasPets        bool
	WorkSchedule   string
	Occupation     string
	MBTIType       string
	GuestFrequency string
}

type UsersSeeder struct {
	Rand *rand.Rand
}

func (UsersSeeder) Name() string { return "users" }

func (s UsersSeeder) Run(ctx context.Context, db database.DB) error {
	if err := EnsureTableColumns(ctx, db, "users",
		"id", "username", "email", "password_hash", "role",
		"city", "budget", "cleanliness", "noise_level", "sleep_schedule",
		"smoking", "social_level", "has_pets", "gender_preference",
		"work_schedule", "occupation", "mbti_type", "guest_frequency",
	); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	rng := s.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	users := make([]userRow, 0, 10)
	for i := 1; i <= 5; i++ {
		users = append(users, userRow{
			Username:       fmt.Sprintf("listeruser%d", i),
			Email:          fmt.Sprintf("lister%d@example.com", i),
			Role:           user.RoleLister,
			City:           seedCities[rng.Intn(len(seedCities))],
			Budget:         0,
			Cleanliness:    1 + rng.Intn(5),
			NoiseLevel:     1 + rng.Intn(5),
			SleepSchedule:  pick(rng, "Early Bird", "Night Owl", "Flexible"),
			Smoking:        "Non-Smoker",
			SocialLevel:    pick(rng, "Friendly but independent", "Very social / Friends"),
			HasPets:        rng.Intn(2) == 0,
			WorkSchedule:   "9-to-5",
			Occupation:     pick(rng, "Tech", "Finance", "Creative", "Healthcare"),
			MBTIType:       pick(rng, "ISTJ", "INFJ", "ENTP", "ESFP"),
			GuestFrequency: "Occasionally",
		})
	}

	users = append(users,
		userRow{
			Username: "art_seeker", Email: "seeker1@example.com", Role: user.RoleSeeker,
			City: "Mumbai", Budget: 26000, Cleanliness: 5, NoiseLevel: 3,
			SleepSchedule: "Night Owl", Smoking: "Non-Smoker",
			SocialLevel: "Very social / Friends", WorkSchedule: "Flexible",
			Occupation: "Creative", MBTIType: "INFP", GuestFrequency: "Occasionally",
		},
		userRow{
			Username: "code_seeker", Email: "seeker2@example.com", Role: user.RoleSeeker,
			City: "Bangalore", Budget: 48000, Cleanliness: 4, NoiseLevel: 2,
			SleepSchedule: "Early Bird", Smoking: "Smokes Outside",
			SocialLevel: "Friendly but independent", WorkSchedule: "9-to-5",
			Occupation: "Tech", MBTIType: "ISTJ", GuestFrequency: "Occasionally",
		},
		userRow{
			Username: "money_seeker", Email: "seeker3@example.com", Role: user.RoleSeeker,
			City: "Delhi", Budget: 33000, Cleanliness: 3, NoiseLevel: 3,
			SleepSchedule: "Flexible", Smoking: "Non-Smoker", HasPets: true,
			SocialLevel: "Friendly but independent", WorkSchedule: "9-to-5",
			Occupation: "Finance", MBTIType: "ENTJ", GuestFrequency: "Occasionally",
		},
		userRow{
			Username: "doc_seeker", Email: "seeker4@example.com", Role: user.RoleSeeker,
			City: "Ahmedabad", Budget: 22000, Cleanliness: 5, NoiseLevel: 2,
			SleepSchedule: "Early Bird", Smoking: "Non-Smoker",
			SocialLevel: "Friendly but independent", WorkSchedule: "Shift Work",
			Occupation: "Healthcare", MBTIType: "ISFJ", GuestFrequency: "Rarely",
		},
		userRow{
			Username: "grad_seeker", Email: "seeker5@example.com", Role: user.RoleSeeker,
			City: "Mumbai", Budget: 18000, Cleanliness: 3, NoiseLevel: 4,
			SleepSchedule: "Night Owl", Smoking: "Non-Smoker",
			SocialLevel: "Very social / Friends", WorkSchedule: "Flexible",
			Occupation: "Student", MBTIType: "ENTP", GuestFrequency: "Frequently",
		},
	)

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, u := range users {
		_, err := tx.Exec(
			ctx,
			`INSERT INTO users (
				id, username, email, password_hash, role,
				city, budget, cleanliness, noise_level, sleep_schedule,
				smoking, social_level, has_pets, gender_preference,
				work_schedule, occupation, mbti_type, guest_frequency
			) VALUES (
				gen_random_uuid(), $1, $2, $3, $4,
				$5, NULLIF($6, 0), $7, $8, $9,
				$10, $11, $12, 'No Preference',
				$13, $14, $15, $16
			) ON CONFLICT (username) DO NOTHING`,
			u.Username, u.Email, string(hash), u.Role,
			u.City, u.Budget, u.Cleanliness, u.NoiseLevel, u.SleepSchedule,
			u.Smoking, u.SocialLevel, u.HasPets,
			u.WorkSchedule, u.Occupation, u.MBTIType, u.GuestFrequency,
		)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}
