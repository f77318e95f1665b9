package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sharespace/internal/config"
	"sharespace/internal/database"
	"sharespace/internal/database/migration"
	dbpostgres "sharespace/internal/database/postgres"
	"sharespace/internal/delivery/http/handler"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/delivery/http/routes"
	jwtpkg "sharespace/internal/pkg/jwt"
	"sharespace/internal/repository"
	"sharespace/internal/usecase"
)

type semanticResponse struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type feedItemResponse struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	City               string    `json:"city"`
	Rent               int       `json:"rent"`
	PetsAllowed        bool      `json:"pets_allowed"`
	CompatibilityScore *int      `json:"compatibility_score"`
}

func TestIntegration_ListingFeedFilters(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db := connectTestDB(t, ctx)
	defer func() { _ = db.Close() }()

	runMigrations(t, ctx, db)

	seed := seedFeedData(t, ctx, db)
	defer cleanupFeedData(t, ctx, db, seed)

	app := newTestFiberApp(t, db)

	t.Run("search returns only the matching listing", func(t *testing.T) {
		items := callFeed(t, app, "/api/v1/listings?search=bright", "")
		if len(items) != 1 {
			t.Fatalf("search=bright: expected exactly 1 item, got %d", len(items))
		}
		if items[0].ID != seed.brightID {
			t.Fatalf("search=bright: expected listing %s, got %s", seed.brightID, items[0].ID)
		}
	})

	t.Run("filters combine with AND", func(t *testing.T) {
		items := callFeed(t, app, "/api/v1/listings?pets_allowed=true&max_rent=20000", "")
		if len(items) != 1 {
			t.Fatalf("pets+max_rent: expected exactly 1 item, got %d", len(items))
		}
		if items[0].ID != seed.brightID {
			t.Fatalf("pets+max_rent: expected listing %s, got %s", seed.brightID, items[0].ID)
		}
	})

	t.Run("malformed filter rejected", func(t *testing.T) {
		status, _ := callFeedRaw(t, app, "/api/v1/listings?min_rent=cheap", "")
		if status != fiber.StatusBadRequest {
			t.Fatalf("min_rent=cheap: expected 400, got %d", status)
		}
	})

	t.Run("my_city scopes to the seeker's city", func(t *testing.T) {
		tok := loginAndGetJWT(t, app, seed.seekerUsername)
		items := callFeed(t, app, "/api/v1/listings?show=my_city", tok)
		if len(items) != 2 {
			t.Fatalf("my_city: expected 2 items, got %d", len(items))
		}
		for _, it := range items {
			if it.City != seed.seekerCity {
				t.Fatalf("my_city: listing %s in %s leaked in", it.ID, it.City)
			}
			// No model artifact is loaded here, so no score fields.
			if it.CompatibilityScore != nil {
				t.Fatalf("my_city: unexpected compatibility_score on %s", it.ID)
			}
		}
	})
}

type feedSeed struct {
	listerID       uuid.UUID
	seekerID       uuid.UUID
	seekerUsername string
	seekerCity     string
	brightID       uuid.UUID
	listingIDs     []uuid.UUID
}

func seedFeedData(t *testing.T, ctx context.Context, db database.DB) feedSeed {
	t.Helper()

	out := feedSeed{
		seekerUsername: "feedtest_seeker",
		seekerCity:     "Ahmedabad",
	}

	out.listerID = ensureTestUser(t, ctx, db, "feedtest_lister", "Lister", nil)
	out.seekerID = ensureTestUser(t, ctx, db, out.seekerUsername, "Seeker", &out.seekerCity)

	// Reruns after a failed cleanup must not leave stale rows behind.
	if _, err := db.Exec(ctx, `DELETE FROM listings WHERE lister_id = $1`, out.listerID); err != nil {
		t.Fatalf("clear old listings: %v", err)
	}

	out.brightID = insertTestListing(t, ctx, db, out.listerID, testListing{
		title: "Bright Room near University", city: "Ahmedabad", rent: 18000, pets: true, age: 3 * time.Hour,
	})
	out.listingIDs = append(out.listingIDs, out.brightID)
	out.listingIDs = append(out.listingIDs, insertTestListing(t, ctx, db, out.listerID, testListing{
		title: "Cozy Flat by the Sea", city: "Mumbai", rent: 25000, pets: false, age: 2 * time.Hour,
	}))
	out.listingIDs = append(out.listingIDs, insertTestListing(t, ctx, db, out.listerID, testListing{
		title: "Spacious Apartment", city: "Ahmedabad", rent: 40000, pets: true, age: time.Hour,
	}))

	return out
}

func cleanupFeedData(t *testing.T, ctx context.Context, db database.DB, seed feedSeed) {
	t.Helper()

	for _, id := range seed.listingIDs {
		_, _ = db.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	}
	_, _ = db.Exec(ctx, `DELETE FROM users WHERE id = $1 OR id = $2`, seed.listerID, seed.seekerID)
}

const testPassword = "password"

func ensureTestUser(t *testing.T, ctx context.Context, db database.DB, username, role string, city *string) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("seed user %s: bcrypt: %v", username, err)
	}

	_, err = db.Exec(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, city)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, city = EXCLUDED.city`,
		uuid.New(), username, username+"@test.local", string(hash), role, city,
	)
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}

	var id uuid.UUID
	if err := db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id); err != nil {
		t.Fatalf("seed user select %s: %v", username, err)
	}
	return id
}

type testListing struct {
	title string
	city  string
	rent  int
	pets  bool
	age   time.Duration
}

func insertTestListing(t *testing.T, ctx context.Context, db database.DB, listerID uuid.UUID, l testListing) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(ctx,
		`INSERT INTO listings (id, lister_id, title, city, rent, pets_allowed, smoking_allowed, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, FALSE, TRUE, now() - make_interval(secs => $7))`,
		id, listerID, l.title, l.city, l.rent, l.pets, l.age.Seconds(),
	)
	if err != nil {
		t.Fatalf("seed listing %s: %v", l.title, err)
	}
	return id
}

func newTestFiberApp(t *testing.T, db database.DB) *fiber.App {
	t.Helper()

	jwtSvc := jwtpkg.NewHMACService("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)

	userRepo := repository.NewPostgresUserRepository(db)
	listingRepo := repository.NewPostgresListingRepository(db)

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	listingUC := usecase.NewListingUsecase(listingRepo, nil)
	feedUC := usecase.NewFeedUsecase(listingRepo, userRepo, nil, nil)

	reg := &routes.Registry{
		Auth:     handler.NewAuthHandler(authUC),
		Listings: handler.NewListingHandler(feedUC, listingUC),
		AuthMW:   middleware.NewAuthMiddleware(jwtSvc),
	}

	app := fiber.New(fiber.Config{})
	app.Use(middleware.NewErrorMiddleware().Middleware())
	reg.Register(app)
	return app
}

func loginAndGetJWT(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	b, _ := json.Marshal(map[string]string{"username": username, "password": testPassword})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("login request error: %v", err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("login decode error: %v", err)
	}
	if sr.Status != 200 {
		t.Fatalf("login: expected status=200, got %d (message=%s)", sr.Status, sr.Message)
	}

	var data struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(sr.Data, &data); err != nil {
		t.Fatalf("login data unmarshal error: %v", err)
	}
	if data.AccessToken == "" {
		t.Fatalf("login: missing access_token")
	}
	return data.AccessToken
}

func callFeed(t *testing.T, app *fiber.App, url, jwt string) []feedItemResponse {
	t.Helper()

	status, data := callFeedRaw(t, app, url, jwt)
	if status != 200 {
		t.Fatalf("%s: expected status=200, got %d", url, status)
	}

	var items []feedItemResponse
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("%s: data unmarshal error: %v", url, err)
	}
	return items
}

func callFeedRaw(t *testing.T, app *fiber.App, url, jwt string) (int, json.RawMessage) {
	t.Helper()

	req := httptest.NewRequest("GET", url, nil)
	if jwt != "" {
		req.Header.Set("Authorization", "Bearer "+jwt)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s: request error: %v", url, err)
	}
	defer resp.Body.Close()

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		t.Fatalf("%s: decode error: %v", url, err)
	}
	return sr.Status, sr.Data
}

func connectTestDB(t *testing.T, ctx context.Context) database.DB {
	t.Helper()

	host := stringsOrDefault(os.Getenv("SHARESPACE_TEST_DB_HOST"), os.Getenv("DB_HOST"))
	port := stringsOrDefault(os.Getenv("SHARESPACE_TEST_DB_PORT"), os.Getenv("DB_PORT"))
	name := stringsOrDefault(os.Getenv("SHARESPACE_TEST_DB_NAME"), os.Getenv("DB_NAME"))
	user := stringsOrDefault(os.Getenv("SHARESPACE_TEST_DB_USER"), os.Getenv("DB_USER"))
	pass := stringsOrDefault(os.Getenv("SHARESPACE_TEST_DB_PASSWORD"), os.Getenv("DB_PASSWORD"))
	ssl := stringsOrDefault(os.Getenv("SHARESPACE_TEST_DB_SSL_MODE"), os.Getenv("DB_SSL_MODE"))

	if host == "" || port == "" || name == "" || user == "" {
		t.Skip("missing test DB env vars: set SHARESPACE_TEST_DB_HOST/PORT/NAME/USER/PASSWORD (or DB_HOST/DB_PORT/DB_NAME/DB_USER/DB_PASSWORD)")
	}
	if ssl == "" {
		ssl = "disable"
	}

	db, err := dbpostgres.Connect(ctx, config.DatabaseConfig{
		DBHost:     host,
		DBPort:     port,
		DBName:     name,
		DBUser:     user,
		DBPassword: pass,
		DBSSLMode:  ssl,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return db
}

func runMigrations(t *testing.T, ctx context.Context, db database.DB) {
	t.Helper()

	r := migration.Runner{Dir: resolveMigrationsDir(t)}
	if err := r.Run(ctx, db.SQLDB()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
}

func resolveMigrationsDir(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("resolve migrations dir: runtime.Caller failed")
	}

	// this file: internal/integration/listing_feed_test.go
	// module root: ../../
	root := filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
	migDir := filepath.Join(root, "migrations")

	if st, err := os.Stat(migDir); err != nil || !st.IsDir() {
		t.Fatalf("resolve migrations dir: not found or not a dir: %s", migDir)
	}
	return migDir
}

func stringsOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
