package app

import (
	"fmt"
	"log"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v3"

	"sharespace/internal/config"
	"sharespace/internal/delivery/http/middleware"
)

type App struct {
	Fiber     *fiber.App
	Container *Container
}

// Bootstrap builds the fully wired application: database, migrations,
// cache, matcher artifact, websocket hub, and routes. The returned
// cleanup closes everything the container opened.
func Bootstrap(cfg config.Config, logger *log.Logger) (*App, func() error, error) {
	if logger == nil {
		logger = log.Default()
	}

	c, err := NewContainer(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	f := fiber.New(fiber.Config{
		AppName:     cfg.App.AppName,
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	registerGlobalMiddleware(f, logger)
	c.Routes.Register(f)

	go c.Hub.Run()

	app := &App{Fiber: f, Container: c}
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware().Middleware())
	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
