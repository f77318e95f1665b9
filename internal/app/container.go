package app

import (
	"context"
	"errors"
	"log"
	"time"

	"sharespace/internal/config"
	"sharespace/internal/database"
	"sharespace/internal/database/migration"
	dbpostgres "sharespace/internal/database/postgres"
	"sharespace/internal/delivery/http/handler"
	"sharespace/internal/delivery/http/middleware"
	"sharespace/internal/delivery/http/routes"
	"sharespace/internal/infrastructure/cache"
	"sharespace/internal/matching"
	"sharespace/internal/pipeline"
	"sharespace/internal/pkg/jwt"
	"sharespace/internal/repository"
	"sharespace/internal/usecase"
	"sharespace/internal/ws"
)

// Container owns every long-lived dependency and the wired route
// registry. Close tears down in reverse construction order.
type Container struct {
	Config config.Config
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub
	Routes *routes.Registry

	logger *log.Logger
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := (migration.Runner{Dir: "migrations"}).Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(cfg.Redis, logger)

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	predictor := loadPredictor(cfg.Matcher, logger)

	userRepo := repository.NewPostgresUserRepository(db)
	listingRepo := repository.NewPostgresListingRepository(db)
	favoriteRepo := repository.NewPostgresFavoriteRepository(db)
	conversationRepo := repository.NewPostgresConversationRepository(db)
	messageRepo := repository.NewPostgresMessageRepository(db)

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	userUC := usecase.NewUserUsecase(userRepo)
	feedUC := usecase.NewFeedUsecase(listingRepo, userRepo, predictor, redisCache)
	listingUC := usecase.NewListingUsecase(listingRepo, redisCache)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, listingRepo)
	chatUC := usecase.NewChatUsecase(conversationRepo, messageRepo, userRepo)

	hub := ws.NewHub(logger)

	registry := &routes.Registry{
		Health:   handler.NewHealthHandler(db),
		Auth:     handler.NewAuthHandler(authUC),
		Users:    handler.NewUserHandler(userUC, favoriteUC),
		Listings: handler.NewListingHandler(feedUC, listingUC),
		Chat:     handler.NewChatHandler(chatUC),
		ChatWS:   ws.NewHandler(hub, jwtSvc, chatUC, logger),
		AuthMW:   middleware.NewAuthMiddleware(jwtSvc),
	}

	return &Container{
		Config: cfg,
		DB:     db,
		Cache:  redisCache,
		Hub:    hub,
		Routes: registry,
		logger: logger,
	}, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// loadPredictor resolves the compatibility pipeline artifact. A missing
// or invalid artifact is not fatal: the feed serves unscored results
// until one is provided.
func loadPredictor(cfg config.MatcherConfig, logger *log.Logger) matching.Predictor {
	if cfg.ArtifactPath == "" {
		logger.Printf("matcher artifact not configured | personalization disabled")
		return nil
	}

	p, err := pipeline.Load(cfg.ArtifactPath)
	if err != nil {
		if errors.Is(err, pipeline.ErrArtifactMissing) {
			logger.Printf("matcher artifact missing | path=%s personalization disabled", cfg.ArtifactPath)
		} else {
			logger.Printf("matcher artifact rejected | path=%s error=%v personalization disabled", cfg.ArtifactPath, err)
		}
		return nil
	}

	logger.Printf("matcher artifact loaded | path=%s version=%d", cfg.ArtifactPath, p.Version())
	return p
}
